package routes

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	customwebhook "github.com/fr0stylo/hookbox/internal/webhooks/custom"
)

// WebhookConfig tunes webhook ingestion.
type WebhookConfig struct {
	SignatureHeader string
	MaxBodyBytes    int64
}

// WebhookRoutes registers webhook endpoints.
type WebhookRoutes struct {
	custom *customwebhook.Handler
}

// NewWebhookRoutes constructs webhook routes.
func NewWebhookRoutes(ingester customwebhook.Ingester, cfg WebhookConfig, log *slog.Logger) *WebhookRoutes {
	return &WebhookRoutes{
		custom: customwebhook.NewHandler(ingester, customwebhook.Options{
			SignatureHeader: cfg.SignatureHeader,
			MaxPayloadBytes: cfg.MaxBodyBytes,
		}, log),
	}
}

// RegisterRoutes registers webhook endpoints.
func (w *WebhookRoutes) RegisterRoutes(s *echo.Echo) {
	s.POST("/webhook", w.handleWebhook)
}

func (w *WebhookRoutes) handleWebhook(c echo.Context) error {
	return w.custom.Handle(c.Response(), c.Request())
}
