package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/immigrai/checklist-delivery/internal/config"
	"github.com/immigrai/checklist-delivery/internal/dedup"
	"github.com/immigrai/checklist-delivery/internal/handlers"
	"github.com/immigrai/checklist-delivery/internal/logging"
	"github.com/immigrai/checklist-delivery/internal/mailer"
	"github.com/immigrai/checklist-delivery/internal/render"
	"github.com/immigrai/checklist-delivery/internal/repository"
	"github.com/immigrai/checklist-delivery/internal/server"
	"github.com/immigrai/checklist-delivery/internal/service"
	"github.com/immigrai/checklist-delivery/internal/signature"
	"github.com/immigrai/checklist-delivery/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("delivery"))
	logging.SetDefault(logger)

	slog.Info("Starting checklist delivery service",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("log_format", cfg.Logging.Format),
	)

	// A deploy with settings missing still serves HTTP: the webhook
	// endpoint answers 500 until configuration is complete, which beats
	// a crash loop that hides what is wrong.
	missing := cfg.Validate()
	var pipeline handlers.Pipeline
	var repo repository.Repository

	if len(missing) == 0 {
		// Run record store migrations for self-hosted deployments
		if cfg.Database.Migrate {
			slog.Info("Running database migrations")
			m, err := migrate.New("file://migrations", cfg.Database.URL)
			if err != nil {
				log.Fatalf("Failed to initialize migrations: %v", err)
			}
			if err := m.Up(); err != nil && err != migrate.ErrNoChange {
				log.Fatalf("Failed to run migrations: %v", err)
			}
			slog.Info("Database migrations completed")
		}

		// Initialize record store client
		repo, err = repository.NewPostgresRepository(context.Background(), cfg.Database.URL, cfg.Database.Table)
		if err != nil {
			log.Fatalf("Failed to connect to record store: %v", err)
		}
		defer repo.Close()

		// Initialize event dedup
		var deduper dedup.Deduper = dedup.NoOp{}
		if cfg.Redis.Enabled {
			rd, err := dedup.NewRedisDeduper(cfg.Redis.URL, cfg.Redis.DedupTTL)
			if err != nil {
				slog.Warn("Failed to initialize redis dedup, continuing without it",
					slog.String("error", err.Error()))
			} else {
				deduper = rd
				defer rd.Close()
			}
		}

		pipeline = service.New(
			signature.NewVerifier(cfg.Webhook.SigningSecret, cfg.Webhook.Tolerance),
			repo,
			render.NewRenderer(""),
			storage.NewClient(cfg.Storage.URL, cfg.Storage.Bucket, cfg.Storage.ServiceKey, cfg.Storage.Timeout),
			mailer.NewClient(cfg.Mailer.Endpoint, cfg.Mailer.APIKey, cfg.Mailer.FromName,
				cfg.Mailer.FromAddress, cfg.Mailer.Subject, cfg.Mailer.Timeout),
			deduper,
			cfg.Storage.SignTTL,
			logger,
		)
	} else {
		slog.Error("Missing required configuration, webhook processing disabled",
			slog.Any("missing", missing))
	}

	// Initialize handlers and router
	handler := handlers.NewWebhookHandler(pipeline, missing, logger)
	router := server.NewRouter(handler)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		slog.Info("Delivery service listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	slog.Info("Server stopped gracefully")
}
