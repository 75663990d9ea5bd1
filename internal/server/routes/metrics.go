package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// MetricsRoutes exposes a Prometheus scrape endpoint.
type MetricsRoutes struct {
	handler http.Handler
}

// NewMetricsRoutes constructs the scrape route.
func NewMetricsRoutes(handler http.Handler) *MetricsRoutes {
	return &MetricsRoutes{handler: handler}
}

// RegisterRoutes registers /metrics.
func (m *MetricsRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/metrics", echo.WrapHandler(m.handler))
}
