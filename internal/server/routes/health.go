package routes

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	appservices "github.com/fr0stylo/hookbox/internal/app/services"
)

// ReadinessChecker reports dependency state.
type ReadinessChecker interface {
	Readiness(ctx context.Context) appservices.ReadinessReport
}

// HealthRoutes registers liveness and readiness probes.
type HealthRoutes struct {
	health ReadinessChecker
}

// NewHealthRoutes constructs health routes.
func NewHealthRoutes(health ReadinessChecker) *HealthRoutes {
	return &HealthRoutes{health: health}
}

// RegisterRoutes registers probe endpoints.
func (h *HealthRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/health/live", h.handleLive)
	s.GET("/health/ready", h.handleReady)
}

func (h *HealthRoutes) handleLive(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "alive"})
}

type notReadyResponse struct {
	Status string `json:"status"`
	appservices.ReadinessReport
}

func (h *HealthRoutes) handleReady(c echo.Context) error {
	report := h.health.Readiness(c.Request().Context())
	if !report.Ready() {
		return c.JSON(http.StatusServiceUnavailable, notReadyResponse{Status: "not ready", ReadinessReport: report})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
