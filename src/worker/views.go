package worker

import (
	"context"
	"net/http"
	"time"

	"mftracker/src/clients/mfapi"
	"mftracker/src/config"
	"mftracker/src/database"
	"mftracker/src/repositories"
	"mftracker/src/scheduler"
	"mftracker/src/services"
	"mftracker/src/utils"
	handlers "mftracker/src/worker/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const (
	defaultMetadataCron     = "0 2 * * *"
	defaultActiveCron       = "0 * * * *"
	defaultFullUniverseCron = "0 3 * * *"
)

// Server is the sync worker: it owns the three cron-driven refresh tasks
// and exposes health plus on-demand sync triggers over HTTP.
type Server struct {
	Router  *chi.Mux
	Handler handlers.Handler

	syncService services.SyncServiceI
	tasks       []*scheduler.ScheduledTask
	logger      *logrus.Logger
}

func NewServer(cfg *config.Config, logger *logrus.Logger) (*Server, error) {
	db, err := database.SetupDB(cfg)
	if err != nil {
		return nil, err
	}

	client := mfapi.NewMFAPIServiceClient(
		cfg.ExternalClients.MFAPI.BaseURL,
		time.Duration(cfg.ExternalClients.MFAPI.TimeoutSeconds)*time.Second,
	)

	fundRepo := repositories.NewFundRepository(db)
	navRepo := repositories.NewNavRepository(db)
	holdingRepo := repositories.NewHoldingRepository(db)

	ingestService := services.NewIngestService(fundRepo, navRepo, client)
	syncService := services.NewSyncService(fundRepo, holdingRepo, ingestService,
		time.Duration(cfg.Sync.RecentWindowHours)*time.Hour,
		cfg.Sync.RecentLimit,
		time.Duration(cfg.Sync.StaleAfterDays)*24*time.Hour,
	)

	server := &Server{
		Router:      chi.NewRouter(),
		Handler:     *handlers.NewHandler(syncService),
		syncService: syncService,
		logger:      logger,
	}
	server.InitRoutes()

	if err := server.startScheduledTasks(cfg); err != nil {
		return nil, err
	}
	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Get("/alive", handlers.Healthcheck)
	s.Router.Route("/api/sync", func(r chi.Router) {
		r.Post("/catalog", s.Handler.TriggerCatalogSync)
		r.Post("/active", s.Handler.TriggerActiveSync)
		r.Post("/full", s.Handler.TriggerFullSync)
		r.Post("/backfill", s.Handler.TriggerBackfill)
	})
}

// startScheduledTasks wires the three sync policies to their cadences. A
// policy failure is logged and the task simply waits for its next tick;
// there is no in-cycle retry against the rate-limited source.
func (s *Server) startScheduledTasks(cfg *config.Config) error {
	ctx := utils.WithLogger(context.Background(), s.logger)

	specs := []struct {
		name     string
		cronSpec string
		fallback string
		run      func(context.Context) error
	}{
		{"metadata-sync", cfg.Sync.MetadataCron, defaultMetadataCron, s.syncService.SyncMetadata},
		{"active-nav-sync", cfg.Sync.ActiveCron, defaultActiveCron, s.syncService.SyncActiveFunds},
		{"full-nav-sync", cfg.Sync.FullUniverseCron, defaultFullUniverseCron, s.syncService.SyncFullUniverse},
	}

	for _, spec := range specs {
		cronSpec := spec.cronSpec
		if cronSpec == "" {
			cronSpec = spec.fallback
		}
		run := spec.run
		name := spec.name

		task, err := scheduler.NewScheduledTask(name, cronSpec, s.logger, func() {
			if err := run(ctx); err != nil {
				s.logger.Errorf("%s failed: %v", name, err)
			}
		})
		if err != nil {
			return err
		}
		s.tasks = append(s.tasks, task)
	}
	return nil
}

// RunBackfill runs the one-shot cold-start ingestion synchronously.
func (s *Server) RunBackfill(ctx context.Context) error {
	return s.syncService.Backfill(utils.WithLogger(ctx, s.logger))
}

// Stop cancels the scheduled tasks.
func (s *Server) Stop() {
	for _, task := range s.tasks {
		task.Cancel()
	}
}

func NewHTTPServer(server *Server, port string) *http.Server {
	httpServer := &http.Server{
		Addr:        ":" + port,
		ReadTimeout: 30 * time.Second,
		// Synchronous sync triggers can legitimately run for a while
		WriteTimeout: 30 * time.Minute,
		Handler:      server,
	}
	return httpServer
}
