package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fr0stylo/hookbox/internal/app/domain"
	"github.com/fr0stylo/hookbox/internal/app/ports"
)

// ErrInvalidSignature indicates a missing, malformed or mismatched signature.
var ErrInvalidSignature = errors.New("invalid signature")

// StorageError wraps a persistence failure other than a duplicate key.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IngestErrorKind classifies ingestion failures for transport-specific mapping.
type IngestErrorKind string

const (
	// IngestErrorUnknown is used when error is nil or not classified.
	IngestErrorUnknown IngestErrorKind = "unknown"
	// IngestErrorInvalidSignature indicates signature verification failure.
	IngestErrorInvalidSignature IngestErrorKind = "invalid_signature"
	// IngestErrorValidation indicates a malformed or incomplete body.
	IngestErrorValidation IngestErrorKind = "validation"
	// IngestErrorStorage indicates the store could not complete the insert.
	IngestErrorStorage IngestErrorKind = "storage"
)

// ClassifyIngestError classifies a returned ingestion error.
func ClassifyIngestError(err error) IngestErrorKind {
	var storageErr *StorageError
	switch {
	case err == nil:
		return IngestErrorUnknown
	case errors.Is(err, ErrInvalidSignature):
		return IngestErrorInvalidSignature
	case domain.IsValidation(err):
		return IngestErrorValidation
	case errors.As(err, &storageErr):
		return IngestErrorStorage
	default:
		return IngestErrorUnknown
	}
}

// IngestCommand is transport-agnostic webhook ingestion input.
type IngestCommand struct {
	Signature string
	Body      []byte
}

// IngestResult reports whether the message was newly stored.
type IngestResult struct {
	MessageID string
	Duplicate bool
}

// IngestService verifies, validates and idempotently stores webhook messages.
type IngestService struct {
	store    ports.MessageStore
	verifier ports.SignatureVerifier
	observer ports.IngestionObserver
	log      *slog.Logger
	now      func() time.Time
}

// NewIngestService constructs an ingestion service. observer may be nil.
func NewIngestService(store ports.MessageStore, verifier ports.SignatureVerifier, observer ports.IngestionObserver, log *slog.Logger) *IngestService {
	if observer == nil {
		observer = ports.IngestionObservers(nil)
	}
	if log == nil {
		log = slog.Default()
	}
	return &IngestService{
		store:    store,
		verifier: verifier,
		observer: observer,
		log:      log,
		now:      time.Now,
	}
}

// Ingest authenticates cmd.Body, decodes it and inserts the message once.
// Nothing touches the store unless the signature and body are valid.
func (s *IngestService) Ingest(ctx context.Context, cmd IngestCommand) (IngestResult, error) {
	if err := s.verifier.Verify(cmd.Body, cmd.Signature); err != nil {
		s.observer.ObserveIngestion(ctx, ports.OutcomeInvalidSignature, ports.UnknownSource)
		s.log.WarnContext(ctx, "Rejected webhook signature", "body_bytes", len(cmd.Body))
		return IngestResult{}, ErrInvalidSignature
	}

	msg, err := domain.DecodeMessage(cmd.Body)
	if err != nil {
		s.observer.ObserveIngestion(ctx, ports.OutcomeValidationError, ports.UnknownSource)
		s.log.WarnContext(ctx, "Rejected webhook payload", "error", err)
		return IngestResult{}, err
	}
	msg.CreatedAt = domain.FormatTimestamp(s.now())

	created, err := s.store.InsertMessage(ctx, msg)
	if err != nil {
		s.observer.ObserveIngestion(ctx, ports.OutcomeStorageError, msg.Source)
		s.log.ErrorContext(ctx, "Failed to store webhook message", "message_id", msg.MessageID, "error", err)
		return IngestResult{}, &StorageError{Op: "insert message", Err: err}
	}

	if created {
		s.observer.ObserveIngestion(ctx, ports.OutcomeCreated, msg.Source)
		s.log.InfoContext(ctx, "Stored webhook message", "message_id", msg.MessageID, "source", msg.Source)
	} else {
		s.observer.ObserveIngestion(ctx, ports.OutcomeDuplicate, msg.Source)
		s.log.InfoContext(ctx, "Ignored duplicate webhook message", "message_id", msg.MessageID, "source", msg.Source)
	}

	return IngestResult{MessageID: msg.MessageID, Duplicate: !created}, nil
}
