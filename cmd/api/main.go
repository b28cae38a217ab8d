package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"visionpath/api/internal/app"
	"visionpath/api/internal/cache"
	"visionpath/api/internal/config"
	"visionpath/api/internal/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	snapshotStore, err := cache.NewSnapshotStore(cfg.RedisURL)
	if err != nil {
		logger.Fatal("local cache connection failed", zap.Error(err))
	}
	defer snapshotStore.Close()

	// An unconfigured remote is permanent offline mode, not an error.
	var service *app.Service
	if cfg.RemoteConfigured() {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("remote store connection failed", zap.Error(err))
		}
		defer db.Close()

		if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
		service = app.New(cfg, store.NewPostgresStore(db), snapshotStore, logger)
	} else {
		logger.Info("no DATABASE_URL configured, running offline")
		service = app.New(cfg, nil, snapshotStore, logger)
	}

	if err := service.LoadCache(ctx); err != nil {
		logger.Warn("local snapshot unavailable, starting empty", zap.Error(err))
	}

	syncCtx, cancelSync := context.WithCancel(ctx)
	defer cancelSync()
	go func() {
		if err := service.Reconcile(syncCtx); err != nil {
			logger.Warn("initial reconcile failed", zap.Error(err))
		}
	}()
	go service.RunResyncLoop(syncCtx)

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin, logger)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", httpServer.Handler())

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("VisionPath API listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	cancelSync()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
