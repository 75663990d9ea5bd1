package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOOKBOX_ENV", "dev")
	t.Setenv("WEBHOOK_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Fatalf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Fatalf("expected 10s shutdown timeout, got %s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "data/app" {
		t.Fatalf("unexpected database defaults: %+v", cfg.Database)
	}
	if cfg.Webhook.SignatureHeader != "X-Signature" || cfg.Webhook.MaxBodyBytes != 1<<20 {
		t.Fatalf("unexpected webhook defaults: %+v", cfg.Webhook)
	}
	if cfg.Webhook.Secret != "" {
		t.Fatalf("expected empty secret, got %q", cfg.Webhook.Secret)
	}
	if cfg.Log.Level != slog.LevelInfo || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.Observability.Enabled {
		t.Fatal("expected observability disabled by default")
	}
	if !cfg.IsLocalDevelopment() {
		t.Fatal("expected dev to be local development")
	}
	if len(cfg.Server.CORSAllowOrigins) != 1 || cfg.Server.CORSAllowOrigins[0] != "*" {
		t.Fatalf("expected wildcard CORS origin by default, got %v", cfg.Server.CORSAllowOrigins)
	}
	if cfg.Addr() != ":8000" {
		t.Fatalf("unexpected addr %q", cfg.Addr())
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("HOOKBOX_PORT", "70000")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for out of range port")
	}
}

func TestLoadRequiresDSNForPostgres(t *testing.T) {
	t.Setenv("HOOKBOX_DB_DRIVER", "postgres")
	t.Setenv("HOOKBOX_DB_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for postgres without DSN")
	}

	t.Setenv("HOOKBOX_DB_DSN", "postgres://localhost/hookbox")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Database.Driver != "postgres" {
		t.Fatalf("expected postgres driver, got %q", cfg.Database.Driver)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("HOOKBOX_DB_DRIVER", "mysql")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestLoadRejectsBadLogSettings(t *testing.T) {
	t.Setenv("HOOKBOX_LOG_LEVEL", "chatty")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown log level")
	}

	t.Setenv("HOOKBOX_LOG_LEVEL", "debug")
	t.Setenv("HOOKBOX_LOG_FORMAT", "xml")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown log format")
	}

	t.Setenv("HOOKBOX_LOG_FORMAT", "text")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Log.Level != slog.LevelDebug || cfg.Log.Format != "text" {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
}

func TestLoadSecretFileWinsOverInlineSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(path, []byte("from-file\n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}
	t.Setenv("WEBHOOK_SECRET", "inline")
	t.Setenv("WEBHOOK_SECRET_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Webhook.Secret != "from-file" {
		t.Fatalf("expected secret from file, got %q", cfg.Webhook.Secret)
	}

	if err := os.WriteFile(path, []byte("rotated"), 0o600); err != nil {
		t.Fatalf("rewrite secret: %v", err)
	}
	secret, err := ReloadSecret()
	if err != nil {
		t.Fatalf("reload secret: %v", err)
	}
	if secret != "rotated" {
		t.Fatalf("expected rotated secret, got %q", secret)
	}
}

func TestLoadMissingSecretFile(t *testing.T) {
	t.Setenv("WEBHOOK_SECRET_FILE", filepath.Join(t.TempDir(), "missing"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unreadable secret file")
	}
	if _, err := LoadForTool(); err != nil {
		t.Fatalf("expected tool load to ignore secret file, got %v", err)
	}
}

func TestLoadParsesOTLPHeadersAndMetricsConsole(t *testing.T) {
	t.Setenv("HOOKBOX_ENV", "dev")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "authorization=Bearer common,x-org=abc")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_HEADERS", "x-trace=trace-only")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_HEADERS", "x-metric=metric-only")
	t.Setenv("HOOKBOX_OTEL_METRICS_CONSOLE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.Observability.Enabled {
		t.Fatal("expected observability enabled when console metrics is true")
	}
	if cfg.Observability.OTLPTraceHeaders["authorization"] != "Bearer common" {
		t.Fatalf("expected common header to be in trace headers, got %#v", cfg.Observability.OTLPTraceHeaders)
	}
	if cfg.Observability.OTLPTraceHeaders["x-trace"] != "trace-only" {
		t.Fatalf("expected trace-specific header, got %#v", cfg.Observability.OTLPTraceHeaders)
	}
	if _, ok := cfg.Observability.OTLPTraceHeaders["x-metric"]; ok {
		t.Fatalf("metric header leaked into trace headers: %#v", cfg.Observability.OTLPTraceHeaders)
	}
	if cfg.Observability.OTLPMetricHeaders["x-metric"] != "metric-only" {
		t.Fatalf("expected metric-specific header, got %#v", cfg.Observability.OTLPMetricHeaders)
	}
}

func TestLoadClampsSamplingRatio(t *testing.T) {
	t.Setenv("HOOKBOX_OTEL_SAMPLING_RATIO", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Observability.SamplingRatio != 1 {
		t.Fatalf("expected ratio clamped to 1, got %v", cfg.Observability.SamplingRatio)
	}
}

func TestLoadCORSOrigins(t *testing.T) {
	t.Setenv("HOOKBOX_CORS_ALLOW_ORIGINS", " https://a.example.com, ,https://b.example.com ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.Server.CORSAllowOrigins) != len(want) {
		t.Fatalf("unexpected origins %v", cfg.Server.CORSAllowOrigins)
	}
	for i := range want {
		if cfg.Server.CORSAllowOrigins[i] != want[i] {
			t.Fatalf("unexpected origins %v", cfg.Server.CORSAllowOrigins)
		}
	}

	t.Setenv("HOOKBOX_CORS_ALLOW_ORIGINS", "none")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.Server.CORSAllowOrigins) != 0 {
		t.Fatalf("expected CORS disabled, got %v", cfg.Server.CORSAllowOrigins)
	}
}
