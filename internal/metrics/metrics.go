// Package metrics exposes HTTP and ingestion counters in Prometheus format.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fr0stylo/hookbox/internal/app/ports"
)

// Registry owns every collector served on /metrics.
type Registry struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	webhookResults *prometheus.CounterVec
	sourceMessages *prometheus.CounterVec
	storedMessages prometheus.Gauge
}

// New builds a registry with the process and Go runtime collectors attached.
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Registry{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		webhookResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_requests_total",
				Help: "Total number of webhook deliveries by outcome",
			},
			[]string{"result"},
		),
		sourceMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_messages_total",
				Help: "Total number of webhook messages received by source",
			},
			[]string{"source", "status"},
		),
		storedMessages: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "messages_stored",
				Help: "Number of messages stored since the last count",
			},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveRequest records one finished HTTP request. endpoint must be a route
// pattern, never a raw path.
func (r *Registry) ObserveRequest(method, endpoint string, status int, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

// ObserveIngestion implements ports.IngestionObserver.
func (r *Registry) ObserveIngestion(_ context.Context, outcome ports.IngestionOutcome, source string) {
	if source == "" {
		source = ports.UnknownSource
	}
	r.webhookResults.WithLabelValues(string(outcome)).Inc()
	r.sourceMessages.WithLabelValues(source, messageStatus(outcome)).Inc()
	if outcome == ports.OutcomeCreated {
		r.storedMessages.Inc()
	}
}

// SetStoredMessages seeds the stored message gauge, usually from a count at startup.
func (r *Registry) SetStoredMessages(n int64) {
	r.storedMessages.Set(float64(n))
}

// messageStatus folds outcomes into success, duplicate or error.
func messageStatus(outcome ports.IngestionOutcome) string {
	switch outcome {
	case ports.OutcomeCreated:
		return "success"
	case ports.OutcomeDuplicate:
		return "duplicate"
	default:
		return "error"
	}
}
