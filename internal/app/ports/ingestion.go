package ports

import (
	"context"
)

// SignatureVerifier authenticates raw ingestion bodies.
type SignatureVerifier interface {
	Verify(body []byte, signature string) error
	Configured() bool
}

// IngestionOutcome labels how one webhook delivery ended.
type IngestionOutcome string

const (
	OutcomeCreated          IngestionOutcome = "created"
	OutcomeDuplicate        IngestionOutcome = "duplicate"
	OutcomeInvalidSignature IngestionOutcome = "invalid_signature"
	OutcomeValidationError  IngestionOutcome = "validation_error"
	OutcomeStorageError     IngestionOutcome = "storage_error"
)

// UnknownSource labels outcomes decided before the payload was decoded.
const UnknownSource = "unknown"

// IngestionObserver receives ingestion outcome events.
// Implementations own formatting and exposition.
type IngestionObserver interface {
	ObserveIngestion(ctx context.Context, outcome IngestionOutcome, source string)
}

// IngestionObservers fans one event out to several observers.
type IngestionObservers []IngestionObserver

// ObserveIngestion forwards the outcome to every non-nil observer.
func (o IngestionObservers) ObserveIngestion(ctx context.Context, outcome IngestionOutcome, source string) {
	for _, observer := range o {
		if observer != nil {
			observer.ObserveIngestion(ctx, outcome, source)
		}
	}
}
