// Package main is the entry point of the scratch-card server.
// It loads the configuration, wires the application and serves HTTP.
// Graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sunusimusa/scratch-app/internal/app"
	"github.com/sunusimusa/scratch-app/internal/config"
)

func main() {
	setupLogging()

	log.Info("=== Server starting ===")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	if level, err := log.ParseLevel(cfg.AppLogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize application")
	}
	defer application.Close()

	if err := application.Scheduler.Start(ctx); err != nil {
		log.WithError(err).Fatal("Failed to start scheduler")
	}
	defer application.Scheduler.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           application.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"port":  cfg.Port,
			"store": cfg.StoreDriver,
			"env":   cfg.AppEnv,
		}).Info("=== Server ready ===")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received, stopping...")
	case err := <-serveErr:
		log.WithError(err).Error("HTTP server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}

	log.Info("=== Server stopped ===")
}

func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)
}
