package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment   string
	Server        ServerConfig
	Database      DatabaseConfig
	Webhook       WebhookConfig
	Log           LogConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Port             int
	ShutdownTimeout  time.Duration
	CORSAllowOrigins []string
}

type DatabaseConfig struct {
	Driver    string
	Path      string
	DSN       string
	LogTiming bool
}

type WebhookConfig struct {
	Secret          string
	SecretFile      string
	SignatureHeader string
	MaxBodyBytes    int64
}

type LogConfig struct {
	Level  slog.Level
	Format string
}

type ObservabilityConfig struct {
	Enabled           bool
	OTLPEndpoint      string
	OTLPTraceHeaders  map[string]string
	OTLPMetricHeaders map[string]string
	ServiceName       string
	ServiceVer        string
	SamplingRatio     float64
	MetricsConsole    bool
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	return load(true)
}

// LoadForTool loads config for CLI tools that never serve webhooks and so do
// not need the secret file to be readable.
func LoadForTool() (Config, error) {
	return load(false)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("hookbox_env", "")
	v.SetDefault("app_env", "")
	v.SetDefault("go_env", "")
	v.SetDefault("hookbox_port", 8000)
	v.SetDefault("hookbox_shutdown_timeout", "10s")
	v.SetDefault("hookbox_cors_allow_origins", "*")
	v.SetDefault("hookbox_db_driver", "sqlite")
	v.SetDefault("hookbox_db_path", "data/app")
	v.SetDefault("hookbox_db_dsn", "")
	v.SetDefault("hookbox_db_timing", false)
	v.SetDefault("webhook_secret", "")
	v.SetDefault("webhook_secret_file", "")
	v.SetDefault("hookbox_signature_header", "X-Signature")
	v.SetDefault("hookbox_max_body_bytes", 1<<20)
	v.SetDefault("hookbox_log_level", "info")
	v.SetDefault("hookbox_log_format", "json")
	v.SetDefault("hookbox_otel_enabled", false)
	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_exporter_otlp_headers", "")
	v.SetDefault("otel_exporter_otlp_traces_headers", "")
	v.SetDefault("otel_exporter_otlp_metrics_headers", "")
	v.SetDefault("otel_service_name", "hookbox")
	v.SetDefault("hookbox_version", "dev")
	v.SetDefault("otel_service_version", "")
	v.SetDefault("hookbox_otel_sampling_ratio", 1.0)
	v.SetDefault("hookbox_otel_metrics_console", false)
	return v
}

func load(requireReadableSecret bool) (Config, error) {
	v := newViper()

	env := resolveEnvironment(v)
	port := v.GetInt("hookbox_port")
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid HOOKBOX_PORT: %d", port)
	}

	shutdownTimeout := v.GetDuration("hookbox_shutdown_timeout")
	if shutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("invalid HOOKBOX_SHUTDOWN_TIMEOUT: %q", v.GetString("hookbox_shutdown_timeout"))
	}

	database := DatabaseConfig{
		Driver:    strings.ToLower(strings.TrimSpace(v.GetString("hookbox_db_driver"))),
		Path:      strings.TrimSpace(v.GetString("hookbox_db_path")),
		DSN:       strings.TrimSpace(v.GetString("hookbox_db_dsn")),
		LogTiming: v.GetBool("hookbox_db_timing"),
	}
	switch database.Driver {
	case "", "sqlite":
		database.Driver = "sqlite"
	case "postgres":
		if database.DSN == "" {
			return Config{}, fmt.Errorf("HOOKBOX_DB_DSN is required when HOOKBOX_DB_DRIVER=postgres")
		}
	default:
		return Config{}, fmt.Errorf("invalid HOOKBOX_DB_DRIVER: %q", database.Driver)
	}
	if database.Path == "" {
		database.Path = "data/app"
	}

	maxBody := v.GetInt64("hookbox_max_body_bytes")
	if maxBody <= 0 {
		return Config{}, fmt.Errorf("invalid HOOKBOX_MAX_BODY_BYTES: %d", maxBody)
	}
	header := strings.TrimSpace(v.GetString("hookbox_signature_header"))
	if header == "" {
		header = "X-Signature"
	}

	secretFile := strings.TrimSpace(v.GetString("webhook_secret_file"))
	secret, err := resolveSecret(v.GetString("webhook_secret"), secretFile)
	if err != nil && requireReadableSecret {
		return Config{}, err
	}

	level, err := parseLevel(v.GetString("hookbox_log_level"))
	if err != nil {
		return Config{}, err
	}
	format := strings.ToLower(strings.TrimSpace(v.GetString("hookbox_log_format")))
	switch format {
	case "":
		format = "json"
	case "json", "text":
	default:
		return Config{}, fmt.Errorf("invalid HOOKBOX_LOG_FORMAT: %q", format)
	}

	samplingRatio := v.GetFloat64("hookbox_otel_sampling_ratio")
	if samplingRatio < 0 {
		samplingRatio = 0
	}
	if samplingRatio > 1 {
		samplingRatio = 1
	}

	serviceName := strings.TrimSpace(v.GetString("otel_service_name"))
	if serviceName == "" {
		serviceName = "hookbox"
	}

	serviceVersion := strings.TrimSpace(v.GetString("hookbox_version"))
	if serviceVersion == "" {
		serviceVersion = strings.TrimSpace(v.GetString("otel_service_version"))
	}
	if serviceVersion == "" {
		serviceVersion = "dev"
	}

	otlpEndpoint := strings.TrimSpace(v.GetString("otel_exporter_otlp_endpoint"))
	otlpCommonHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_headers"))
	otlpTraceHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_traces_headers"))
	otlpMetricHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_metrics_headers"))
	metricsConsole := v.GetBool("hookbox_otel_metrics_console")
	otelEnabled := v.GetBool("hookbox_otel_enabled") || otlpEndpoint != "" || metricsConsole

	return Config{
		Environment: env,
		Server: ServerConfig{
			Port:             port,
			ShutdownTimeout:  shutdownTimeout,
			CORSAllowOrigins: parseCORSOrigins(v.GetString("hookbox_cors_allow_origins")),
		},
		Database: database,
		Webhook: WebhookConfig{
			Secret:          secret,
			SecretFile:      secretFile,
			SignatureHeader: header,
			MaxBodyBytes:    maxBody,
		},
		Log: LogConfig{
			Level:  level,
			Format: format,
		},
		Observability: ObservabilityConfig{
			Enabled:           otelEnabled,
			OTLPEndpoint:      otlpEndpoint,
			OTLPTraceHeaders:  mergeHeaderMaps(otlpCommonHeaders, otlpTraceHeaders),
			OTLPMetricHeaders: mergeHeaderMaps(otlpCommonHeaders, otlpMetricHeaders),
			ServiceName:       serviceName,
			ServiceVer:        serviceVersion,
			SamplingRatio:     samplingRatio,
			MetricsConsole:    metricsConsole,
		},
	}, nil
}

// ReloadSecret re-resolves the webhook secret from the environment and the
// secret file. Used on SIGHUP.
func ReloadSecret() (string, error) {
	v := newViper()
	return resolveSecret(v.GetString("webhook_secret"), strings.TrimSpace(v.GetString("webhook_secret_file")))
}

func resolveSecret(inline, file string) (string, error) {
	if file == "" {
		return strings.TrimSpace(inline), nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read WEBHOOK_SECRET_FILE: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid HOOKBOX_LOG_LEVEL: %q", raw)
	}
	return level, nil
}

// parseList splits a comma separated value, dropping blanks.
func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseCORSOrigins returns nil for "none", which disables CORS.
func parseCORSOrigins(raw string) []string {
	origins := parseList(raw)
	if len(origins) == 1 && strings.EqualFold(origins[0], "none") {
		return nil
	}
	return origins
}

func parseOTLPHeaders(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mergeHeaderMaps(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// IsLocalDevelopment reports whether the environment name is a local one.
func (c Config) IsLocalDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "", "local", "dev", "development", "test":
		return true
	default:
		return false
	}
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func resolveEnvironment(v *viper.Viper) string {
	for _, key := range []string{"hookbox_env", "app_env", "go_env"} {
		value := strings.TrimSpace(v.GetString(key))
		if value != "" {
			return strings.ToLower(value)
		}
	}
	return ""
}
