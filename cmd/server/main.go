package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fr0stylo/hookbox/internal/adapters/sqlstore"
	"github.com/fr0stylo/hookbox/internal/app/ports"
	appservices "github.com/fr0stylo/hookbox/internal/app/services"
	"github.com/fr0stylo/hookbox/internal/config"
	"github.com/fr0stylo/hookbox/internal/db"
	"github.com/fr0stylo/hookbox/internal/metrics"
	"github.com/fr0stylo/hookbox/internal/observability"
	"github.com/fr0stylo/hookbox/internal/server"
	"github.com/fr0stylo/hookbox/internal/server/routes"
	"github.com/fr0stylo/hookbox/internal/signature"
)

func Run() error {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := observability.NewLogger(os.Stdout, cfg.Log.Format, cfg.Log.Level)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.SetupOpenTelemetry(ctx, log, observability.OpenTelemetryConfig{
		Enabled:           cfg.Observability.Enabled,
		OTLPEndpoint:      cfg.Observability.OTLPEndpoint,
		OTLPTraceHeaders:  cfg.Observability.OTLPTraceHeaders,
		OTLPMetricHeaders: cfg.Observability.OTLPMetricHeaders,
		ServiceName:       cfg.Observability.ServiceName,
		ServiceVer:        cfg.Observability.ServiceVer,
		SamplingRatio:     cfg.Observability.SamplingRatio,
		MetricsConsole:    cfg.Observability.MetricsConsole,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			slog.Error("Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	database, err := db.Open(db.Options{
		Driver: db.Driver(cfg.Database.Driver),
		Path:   cfg.Database.Path,
		DSN:    cfg.Database.DSN,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}()

	if cfg.Database.LogTiming {
		go logDBLatencyStats(ctx, log, database)
	}

	store := sqlstore.NewMessageStore(database)
	verifier := signature.NewVerifier(cfg.Webhook.Secret)
	if !verifier.Configured() {
		log.Warn("WEBHOOK_SECRET is not set; webhooks will be rejected and readiness will fail")
	}

	registry := metrics.New()
	if count, err := store.CountMessages(ctx); err != nil {
		log.Warn("Failed to seed stored message gauge", "error", err)
	} else {
		registry.SetStoredMessages(count)
	}

	observers := ports.IngestionObservers{registry, observability.NewIngestionMetrics()}
	ingest := appservices.NewIngestService(store, verifier, observers, log)

	srv := server.New(log, server.Options{
		ServiceName:      cfg.Observability.ServiceName,
		Requests:         registry,
		CORSAllowOrigins: cfg.Server.CORSAllowOrigins,
	})
	srv.RegisterRouter(routes.NewWebhookRoutes(ingest, routes.WebhookConfig{
		SignatureHeader: cfg.Webhook.SignatureHeader,
		MaxBodyBytes:    cfg.Webhook.MaxBodyBytes,
	}, log))
	srv.RegisterRouter(routes.NewMessageRoutes(appservices.NewMessageReadService(store)))
	srv.RegisterRouter(routes.NewHealthRoutes(appservices.NewHealthService(store, verifier)))
	srv.RegisterRouter(routes.NewMetricsRoutes(registry.Handler()))

	go reloadSecretOnHangup(ctx, log, verifier)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server",
			"port", cfg.Server.Port,
			"db_driver", database.Driver(),
			"signature_header", cfg.Webhook.SignatureHeader,
		)
		errCh <- srv.Start(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return <-errCh
}

func main() {
	if err := Run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func reloadSecretOnHangup(ctx context.Context, log *slog.Logger, verifier *signature.Verifier) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			secret, err := config.ReloadSecret()
			if err != nil {
				log.Error("Failed to reload webhook secret", "error", err)
				continue
			}
			verifier.SetSecret(secret)
			log.Info("Reloaded webhook secret", "configured", verifier.Configured())
		}
	}
}

func logDBLatencyStats(ctx context.Context, log *slog.Logger, database *db.Database) {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		stats := database.QueryLatencyStats()
		limit := 5
		if len(stats) < limit {
			limit = len(stats)
		}
		for index := 0; index < limit; index++ {
			entry := stats[index]
			log.Info("db_query_latency",
				"query", entry.Name,
				"count", entry.Count,
				"p50_ms", entry.P50.Milliseconds(),
				"p95_ms", entry.P95.Milliseconds(),
				"max_ms", entry.Max.Milliseconds(),
			)
		}
	}
}
