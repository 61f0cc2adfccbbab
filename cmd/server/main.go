package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"figurevault/internal/app"
	"figurevault/internal/config"
	"figurevault/internal/logging"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logger := logging.New(logging.LevelError)
		logger.Error("Failed to initialize application", logging.WithField("error", err.Error()))
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		application.Logger.Info("Shutting down...")
		cancel()
	}()

	if err := application.Run(ctx); err != nil {
		application.Logger.Error("Server error", logging.WithField("error", err.Error()))
		os.Exit(1)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		application.Logger.Error("Shutdown error", logging.WithField("error", err.Error()))
	}
}
