package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andalize/proptic/common/logger"
	"github.com/andalize/proptic/internal/app"
	"github.com/andalize/proptic/internal/config"
	httpapi "github.com/andalize/proptic/internal/http"
	"github.com/andalize/proptic/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "proptic")
	if err != nil {
		log, _ = zap.NewProduction()
	}
	defer log.Sync()

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialise proptic", zap.Error(err))
	}
	defer a.Close()

	if a.DB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := a.Migrate(ctx)
		cancel()
		if err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	handler := httpapi.NewAPI(a.Services, a.Ping, log.Named("http"))
	srv := service.NewServer(cfg.HTTP.Addr, handler, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server stopped", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Warn("Graceful shutdown failed", zap.Error(err))
	}
}
