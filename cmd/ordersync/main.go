package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ordersync/internal/checkpoint"
	"ordersync/internal/config"
	"ordersync/internal/database"
	"ordersync/internal/events"
	"ordersync/internal/handler"
	"ordersync/internal/metrics"
	"ordersync/internal/reconcile"
	"ordersync/internal/service"
	"ordersync/internal/worker"
)

func main() {
	os.Exit(run())
}

func run() int {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	cfg, err := config.New()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		return 2
	}

	db, err := database.NewDB(cfg.DatabaseDriver, cfg.DatabaseURI)
	if err != nil {
		slog.Error("failed to connect to DB", "error", err)
		return 1
	}
	defer database.CloseDB(context.Background(), db)

	if err := database.InitSchema(db); err != nil {
		slog.Error("failed to init DB schema", "error", err)
		return 1
	}

	// Services
	orderSvc := service.NewOrderService(db)
	runSvc := service.NewRunService(db)
	statsSvc := service.NewStatsService(db)
	authSvc := service.NewAuthService(cfg.AdminPasswordHash, cfg.JWTSecret, 24*time.Hour)
	shopify := service.NewShopifyClient(cfg.ShopURL, cfg.AccessToken, cfg.APIVersion, cfg.FetchTimeout)
	registry := metrics.NewRegistry()

	opts := reconcile.Options{
		Lookback:     cfg.Lookback,
		PageLimit:    cfg.PageLimit,
		StoreTimeout: cfg.StoreTimeout,
		Runs:         runSvc,
		Metrics:      registry,
	}

	if cfg.KafkaBrokers != "" {
		publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if err := publisher.Close(); err != nil {
				slog.Error("failed to close kafka writer", "error", err)
			}
		}()
		opts.Events = publisher
	}

	if cfg.CheckpointDir != "" {
		cp, err := checkpoint.Open(cfg.CheckpointDir)
		if err != nil {
			slog.Error("failed to open checkpoint", "error", err)
			return 1
		}
		defer func() {
			if err := cp.Close(); err != nil {
				slog.Error("failed to close checkpoint", "error", err)
			}
		}()
		opts.Checkpoint = cp
	}

	driver := reconcile.NewDriver(shopify, orderSvc, opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Once {
		status, msg := driver.Trigger(ctx, reconcile.RunOptions{})
		slog.Info("sync finished", "status", status, "message", msg)
		if status != http.StatusOK {
			return 1
		}
		return 0
	}

	router := handler.NewRouter(handler.Deps{
		JWTSecret: cfg.JWTSecret,
		Auth:      authSvc,
		Syncer:    driver,
		Runs:      runSvc,
		Orders:    orderSvc,
		Stats:     statsSvc,
		DB:        db,
		Metrics:   registry.Handler(),
	})

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	if cfg.SyncInterval > 0 {
		go worker.NewSyncWorker(driver, cfg.SyncInterval).Start(ctx)
	}

	slog.Info("starting server", "addr", cfg.RunAddress)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
	return 0
}
