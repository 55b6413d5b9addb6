package api

import (
	"net/http"
	"time"

	handlers "mftracker/src/api/handlers"
	"mftracker/src/config"
	"mftracker/src/database"
	"mftracker/src/repositories"
	"mftracker/src/services"
	redis_utils "mftracker/src/utils/redis"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router  *chi.Mux
	Handler handlers.Handler
}

func NewServer(cfg *config.Config, logger *logrus.Logger) (*Server, error) {
	db, err := database.SetupDB(cfg)
	if err != nil {
		return nil, err
	}

	// The API works without redis, it just loses the read cache.
	cache, err := redis_utils.NewRedisHandler(cfg)
	if err != nil {
		logger.Warnf("redis unavailable, fund reads are uncached: %v", err)
		cache = nil
	}

	fundRepo := repositories.NewFundRepository(db)
	navRepo := repositories.NewNavRepository(db)
	portfolioRepo := repositories.NewPortfolioRepository(db)
	holdingRepo := repositories.NewHoldingRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	txManager := repositories.NewTxManager(db)

	fundService := services.NewFundService(fundRepo, navRepo, cache)
	portfolioService := services.NewPortfolioService(portfolioRepo, holdingRepo, transactionRepo, txManager)

	server := &Server{
		Router:  chi.NewRouter(),
		Handler: *handlers.NewHandler(fundService, portfolioService),
	}
	server.InitRoutes()
	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Get("/alive", handlers.Healthcheck)

	s.Router.Route("/api/funds", func(r chi.Router) {
		r.Get("/", s.Handler.GetAllFunds)
		r.Get("/search", s.Handler.SearchFunds)
		r.Get("/featured", s.Handler.GetFeaturedFunds)
		r.Get("/{schemeCode}", s.Handler.GetFundDetails)
		r.Get("/{schemeCode}/history", s.Handler.GetFundHistory)
	})

	s.Router.Route("/api/portfolio", func(r chi.Router) {
		r.Get("/summary", s.Handler.GetPortfolioSummary)
		r.Get("/transactions", s.Handler.GetTransactions)
		r.Post("/transactions", s.Handler.CreateTransaction)
	})
}

func NewHTTPServer(server *Server, port string) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Handler:      server,
	}
	return httpServer
}
