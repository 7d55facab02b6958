package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hrdesk/backend/internal/api/handler"
	"hrdesk/backend/internal/complaint"
	"hrdesk/backend/internal/config"
	"hrdesk/backend/internal/filestore"
	"hrdesk/backend/internal/localization"
	"hrdesk/backend/internal/logger"
	"hrdesk/backend/internal/notify"
	"hrdesk/backend/internal/reminder"
	"hrdesk/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	configPath := pflag.StringP("config", "c", os.Getenv("HRDESK_CONFIG"), "path to the YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.App.LogLevel, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Fatal("service stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zapLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zapLogger.Info("starting service",
		zap.String("name", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	// 1. Postgres + Redis
	db, err := storage.OpenPostgres(cfg.Database, !cfg.IsDevelopment())
	if err != nil {
		return err
	}
	if err := storage.Migrate(db); err != nil {
		return err
	}
	rdb, err := storage.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()
	store := storage.NewStorageService(db, rdb)
	zapLogger.Info("database and redis connections established, migrations complete")

	// 2. Disks, notifications, services
	disks, err := filestore.Setup(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	localizer, err := localization.NewLocalizer(cfg.Localization.Path)
	if err != nil {
		zapLogger.Warn("falling back to bundled translations",
			zap.String("path", cfg.Localization.Path),
			zap.Error(err),
		)
		localizer = localization.Bundled()
	}
	notifier := notify.NewRedisNotifier(store, localizer, config.NotificationChannel, cfg.Localization.Language, zapLogger)

	complaints := complaint.NewService(store, notifier, disks, zapLogger,
		complaint.WithDocumentsDisk(cfg.Storage.DocumentsDisk),
	)
	reminders := reminder.NewService(store, store, notifier, zapLogger)

	// 3. Reminder worker
	worker := reminder.NewWorker(reminders, cfg.Reminder.GetPollInterval(), cfg.Reminder.BatchSize, zapLogger)
	go worker.Run(ctx)

	// 4. Router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestLogger(zapLogger))
	r.GET(cfg.HTTP.MetricsPath, gin.WrapH(promhttp.Handler()))
	handler.NewHandler(complaints, reminders, cfg.Auth, zapLogger).Register(r)

	server := &http.Server{
		Addr:           cfg.HTTP.Addr,
		Handler:        r,
		ReadTimeout:    cfg.HTTP.GetReadTimeout(),
		WriteTimeout:   cfg.HTTP.GetWriteTimeout(),
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zapLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
