package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fr0stylo/hookbox/internal/config"
	"github.com/fr0stylo/hookbox/internal/observability"
	"github.com/fr0stylo/hookbox/internal/signature"
)

type sendConfig struct {
	URL       string `mapstructure:"url"`
	Secret    string `mapstructure:"secret"`
	Header    string `mapstructure:"header"`
	Source    string `mapstructure:"source"`
	MessageID string `mapstructure:"message-id"`
	Timestamp string `mapstructure:"timestamp"`
	Data      string `mapstructure:"data"`
	Fake      bool   `mapstructure:"fake"`
	Repeat    int    `mapstructure:"repeat"`
	Timeout   string `mapstructure:"timeout"`
}

type outgoingMessage struct {
	MessageID string          `json:"message_id"`
	Timestamp string          `json:"timestamp"`
	Source    string          `json:"source"`
	RawData   json.RawMessage `json:"raw_data"`
}

type deliveryResult struct {
	Status    int
	MessageID string `json:"message_id"`
	Duplicate bool   `json:"duplicate"`
}

func newSendCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Sign and post a webhook delivery",
		Example: `  hookctl send --url http://localhost:8000 --secret s3cret --source billing --data '{"amount":10}'
  hookctl send --config send.yaml --repeat 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSendConfig(cmd, configPath)
			if err != nil {
				return err
			}

			body, err := buildPayload(cfg, time.Now())
			if err != nil {
				return err
			}

			timeout, err := time.ParseDuration(cfg.Timeout)
			if err != nil || timeout <= 0 {
				return fmt.Errorf("invalid timeout %q", cfg.Timeout)
			}
			shutdown := startTelemetry(cmd)
			defer shutdown()
			client := observability.NewHTTPClient(timeout)

			for attempt := 0; attempt < cfg.Repeat; attempt++ {
				result, err := sendWebhook(cmd.Context(), client, cfg, body)
				if err != nil {
					return err
				}
				printDelivery(cmd.OutOrStdout(), result)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "YAML file providing any of the flags below")
	flags.String("url", "http://localhost:8000", "server base URL")
	flags.String("secret", "", "shared secret (default $WEBHOOK_SECRET)")
	flags.String("header", "X-Signature", "signature header name")
	flags.String("source", "hookctl", "message source")
	flags.String("message-id", "", "message id (random uuid when empty)")
	flags.String("timestamp", "", "event timestamp (now when empty)")
	flags.String("data", "{}", "raw_data JSON object")
	flags.Bool("fake", false, "generate raw_data with fake order details instead of --data")
	flags.Int("repeat", 1, "number of times to deliver the same body")
	flags.String("timeout", "10s", "per-request timeout")
	return cmd
}

func loadSendConfig(cmd *cobra.Command, path string) (sendConfig, error) {
	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return sendConfig{}, fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := v.BindEnv("secret", "WEBHOOK_SECRET"); err != nil {
		return sendConfig{}, fmt.Errorf("failed to bind env: %w", err)
	}
	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return sendConfig{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg sendConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return sendConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.URL = strings.TrimSpace(cfg.URL)
	cfg.Secret = strings.TrimSpace(cfg.Secret)
	cfg.Header = strings.TrimSpace(cfg.Header)
	cfg.Source = strings.TrimSpace(cfg.Source)
	cfg.MessageID = strings.TrimSpace(cfg.MessageID)
	cfg.Timestamp = strings.TrimSpace(cfg.Timestamp)

	if cfg.URL == "" || cfg.Secret == "" || cfg.Source == "" {
		return sendConfig{}, fmt.Errorf("url, secret and source are required")
	}
	if cfg.Header == "" {
		cfg.Header = "X-Signature"
	}
	if cfg.Repeat <= 0 {
		return sendConfig{}, fmt.Errorf("repeat must be positive")
	}
	return cfg, nil
}

func buildPayload(cfg sendConfig, now time.Time) ([]byte, error) {
	if cfg.Fake {
		fake, err := fakeRawData(gofakeit.New(now.UnixNano()))
		if err != nil {
			return nil, err
		}
		cfg.Data = string(fake)
	}
	data := json.RawMessage(strings.TrimSpace(cfg.Data))
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	if !json.Valid(data) || data[0] != '{' {
		return nil, fmt.Errorf("--data must be a JSON object")
	}

	msg := outgoingMessage{
		MessageID: cfg.MessageID,
		Timestamp: cfg.Timestamp,
		Source:    cfg.Source,
		RawData:   data,
	}
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}
	if msg.Timestamp == "" {
		msg.Timestamp = now.UTC().Format(time.RFC3339Nano)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return body, nil
}

func fakeRawData(faker *gofakeit.Faker) ([]byte, error) {
	return json.Marshal(map[string]any{
		"order_id": faker.UUID(),
		"customer": map[string]any{
			"name":  faker.Name(),
			"email": faker.Email(),
		},
		"amount":   faker.Price(1, 500),
		"currency": faker.CurrencyShort(),
		"items":    faker.Number(1, 9),
		"note":     faker.Sentence(6),
	})
}

func sendWebhook(ctx context.Context, client *http.Client, cfg sendConfig, body []byte) (deliveryResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(cfg.URL, "/")+"/webhook", bytes.NewReader(body))
	if err != nil {
		return deliveryResult{}, fmt.Errorf("failed to build request: %w", err)
	}
	request.Header.Set(cfg.Header, signature.Sign(cfg.Secret, body))
	request.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(request)
	if err != nil {
		return deliveryResult{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusMultipleChoices {
		return deliveryResult{}, fmt.Errorf("webhook failed with %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	result := deliveryResult{Status: resp.StatusCode}
	if err := json.Unmarshal(payload, &result); err != nil {
		return deliveryResult{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return result, nil
}

// startTelemetry exports client spans when the environment enables
// OpenTelemetry, so deliveries join the server trace.
func startTelemetry(cmd *cobra.Command) func() {
	noop := func() {}
	cfg, err := config.LoadForTool()
	if err != nil || !cfg.Observability.Enabled {
		return noop
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	shutdown, err := observability.SetupOpenTelemetry(cmd.Context(), log, observability.OpenTelemetryConfig{
		Enabled:           true,
		OTLPEndpoint:      cfg.Observability.OTLPEndpoint,
		OTLPTraceHeaders:  cfg.Observability.OTLPTraceHeaders,
		OTLPMetricHeaders: cfg.Observability.OTLPMetricHeaders,
		ServiceName:       "hookctl",
		ServiceVer:        cfg.Observability.ServiceVer,
		SamplingRatio:     cfg.Observability.SamplingRatio,
	})
	if err != nil {
		log.Warn("OpenTelemetry disabled", "error", err)
		return noop
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.Warn("Failed to flush telemetry", "error", err)
		}
	}
}
