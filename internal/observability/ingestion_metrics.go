package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fr0stylo/hookbox/internal/app/ports"
)

const ingestionMeterName = "github.com/fr0stylo/hookbox/internal/observability"

// IngestionMetrics mirrors ingestion outcomes onto the global OTel meter.
type IngestionMetrics struct {
	requests metric.Int64Counter
	accepted metric.Int64Counter
	rejected metric.Int64Counter
}

// NewIngestionMetrics registers the ingestion counters on the global meter
// provider. With OTel disabled the counters are no-ops.
func NewIngestionMetrics() *IngestionMetrics {
	meter := otel.Meter(ingestionMeterName)
	requests, _ := meter.Int64Counter("hookbox.ingestion.requests")
	accepted, _ := meter.Int64Counter("hookbox.ingestion.accepted")
	rejected, _ := meter.Int64Counter("hookbox.ingestion.rejected")
	return &IngestionMetrics{
		requests: requests,
		accepted: accepted,
		rejected: rejected,
	}
}

// ObserveIngestion implements ports.IngestionObserver.
func (m *IngestionMetrics) ObserveIngestion(ctx context.Context, outcome ports.IngestionOutcome, source string) {
	if m == nil {
		return
	}
	if source == "" {
		source = ports.UnknownSource
	}
	attrs := metric.WithAttributes(
		attribute.String("outcome", string(outcome)),
		attribute.String("source", source),
	)
	m.requests.Add(ctx, 1, attrs)
	switch outcome {
	case ports.OutcomeCreated, ports.OutcomeDuplicate:
		m.accepted.Add(ctx, 1, attrs)
	default:
		m.rejected.Add(ctx, 1, metric.WithAttributes(
			attribute.String("reason", string(outcome)),
			attribute.String("source", source),
		))
	}
}
