package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/harvest/internal/app"
	"github.com/mamadbah2/harvest/internal/config"
	"github.com/mamadbah2/harvest/internal/metrics"
	"github.com/mamadbah2/harvest/internal/repository"
	"github.com/mamadbah2/harvest/internal/repository/filestore"
	"github.com/mamadbah2/harvest/internal/repository/mongodb"
	"github.com/mamadbah2/harvest/internal/repository/sheets"
	"github.com/mamadbah2/harvest/internal/repository/sqlite"
	"github.com/mamadbah2/harvest/internal/scheduler"
	"github.com/mamadbah2/harvest/internal/server/handlers"
	"github.com/mamadbah2/harvest/internal/server/router"
	"github.com/mamadbah2/harvest/internal/service/export"
	"github.com/mamadbah2/harvest/pkg/clients/notify"
	"github.com/mamadbah2/harvest/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := openStore(context.Background(), cfg.Storage, cfg.MongoDB)
	if err != nil {
		baseLogger.Fatal("failed to init storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close storage", zap.Error(err))
		}
	}()
	baseLogger.Info("storage ready", zap.String("driver", cfg.Storage.Driver))

	m := metrics.New()
	state := app.New(store, m, baseLogger.Named("app"), app.Options{
		AdminPassword: cfg.Bootstrap.AdminPassword,
		SeedSample:    cfg.Bootstrap.SeedSample,
	})
	if err := state.Load(context.Background()); err != nil {
		baseLogger.Fatal("failed to load state", zap.Error(err))
	}

	handler := handlers.NewHandler(state, baseLogger.Named("handlers"))
	engine := router.New(handler, m, baseLogger.Named("router"))

	var notifier notify.Client = notify.Discard{}
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookClient(cfg.Notify.WebhookURL)
		baseLogger.Info("weekly summary webhook enabled")
	} else {
		baseLogger.Warn("notify webhook missing, weekly summary will not be sent")
	}

	var sheetSink export.SheetSink
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetSink = repo
	}

	sched, err := scheduler.NewScheduler(cfg.Reporting, state, notifier, sheetSink, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(ctx context.Context, storage config.StorageConfig, mongoCfg config.MongoDBConfig) (repository.Store, error) {
	var (
		store repository.Store
		err   error
	)
	switch storage.Driver {
	case config.DriverMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		store, err = mongodb.NewRepository(connectCtx, mongoCfg.URI, mongoCfg.DBName)
	case config.DriverSQLite:
		store, err = sqlite.New(ctx, storage.SQLitePath)
	default:
		store, err = filestore.New(storage.DataDir)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
