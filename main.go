package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"mftracker/src/api"
	"mftracker/src/config"
	"mftracker/src/utils"
	"mftracker/src/worker"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./settings")
	if err != nil {
		logrus.Fatalf("Error while loading config: %v", err)
	}

	logger := utils.NewLogger(logrus.InfoLevel)

	errC, err := run(cfg, logger)
	if err != nil {
		logger.Fatalf("Couldn't run: %v", err)
	}

	if errC != nil {
		if err := <-errC; err != nil {
			logger.Errorf("Error while running: %v", err)
		}
	}
}

func run(cfg *config.Config, logger *logrus.Logger) (<-chan error, error) {
	errC := make(chan error, 1)

	port := cfg.Service.Port
	if port == "" {
		port = "8000"
	}

	var httpServer *http.Server
	if cfg.Service.Type == config.API {
		server, err := api.NewServer(cfg, logger)
		if err != nil {
			return nil, err
		}
		httpServer = api.NewHTTPServer(server, port)
	} else {
		server, err := worker.NewServer(cfg, logger)
		if err != nil {
			return nil, err
		}

		// One-shot cold-start population of the catalog, then exit.
		if hasArg("--backfill") {
			if err := server.RunBackfill(context.Background()); err != nil {
				return nil, err
			}
			server.Stop()
			return nil, nil
		}

		httpServer = worker.NewHTTPServer(server, port)
	}

	go func() {
		logger.Infof("Starting %s server on port %s", cfg.Service.Type, port)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()
	return errC, nil
}

func hasArg(name string) bool {
	for _, arg := range os.Args[1:] {
		if arg == name {
			return true
		}
	}
	return false
}
