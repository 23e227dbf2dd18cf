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

	"github.com/joho/godotenv"

	"github.com/campuscerts/cert-tracker/internal/common"
	"github.com/campuscerts/cert-tracker/internal/export"
	"github.com/campuscerts/cert-tracker/internal/ingest"
	"github.com/campuscerts/cert-tracker/internal/lifecycle"
	"github.com/campuscerts/cert-tracker/internal/normalize"
	"github.com/campuscerts/cert-tracker/internal/recognize/glm"
	"github.com/campuscerts/cert-tracker/internal/reconcile"
	"github.com/campuscerts/cert-tracker/internal/repository"
	"github.com/campuscerts/cert-tracker/internal/server"
)

func main() {
	logger := common.NewLogger()
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file, using process environment")
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, pool, logger)

	if err := repository.HealthCheck(ctx, db, 3*time.Second, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}
	if err := repository.Migrate(ctx, db, logger); err != nil {
		logger.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	users := repository.NewUserRepository(db, logger)
	files := repository.NewFileRepository(db, logger)
	certs := repository.NewCertificateRepository(db, logger)
	config := repository.NewConfigRepository(db, logger)
	gateway := repository.NewGateway(db, logger)

	normalizer := normalize.New(normalize.Config{
		PDFToPPM: cfg.Upload.PDFToPPM,
		DPI:      cfg.Upload.RenderDPI,
	}, logger)
	recognizer := glm.NewClient(glm.Config{
		APIKey:     cfg.Recognition.APIKey,
		BaseURL:    cfg.Recognition.BaseURL,
		Model:      cfg.Recognition.Model,
		Timeout:    cfg.Recognition.Timeout,
		MaxRetries: cfg.Recognition.MaxRetries,
	}, logger)
	reconciler := reconcile.New(logger)
	machine := lifecycle.New(gateway, reconciler, logger, nil)
	store := &ingest.Store{Root: cfg.Upload.Dir}

	ingestSvc := ingest.NewService(users, files, store, normalizer, recognizer, reconciler, machine, cfg.Recognition.Model, logger)
	exportSvc := export.NewService(certs, users, logger)

	certH := server.NewCertificateHandler(ingestSvc, machine, certs, users, logger)
	adminH := server.NewAdminHandler(config, certs, users, exportSvc, logger)

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           server.NewRouter(certH, adminH, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("stopped")
}
