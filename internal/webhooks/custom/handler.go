package custom

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fr0stylo/hookbox/internal/app/domain"
	appservices "github.com/fr0stylo/hookbox/internal/app/services"
)

const (
	// SignatureHeader is the default HMAC signature header.
	SignatureHeader = "X-Signature"
	// DefaultMaxPayloadBytes bounds the body read before verification.
	DefaultMaxPayloadBytes = 1 << 20
)

// Ingester stores verified webhook bodies.
type Ingester interface {
	Ingest(ctx context.Context, cmd appservices.IngestCommand) (appservices.IngestResult, error)
}

// Options tunes the handler.
type Options struct {
	SignatureHeader string
	MaxPayloadBytes int64
}

// Handler captures the raw body, hands it to the ingester and renders the result.
type Handler struct {
	ingester Ingester
	header   string
	maxBytes int64
	log      *slog.Logger
}

// Response is the body returned for accepted deliveries.
type Response struct {
	Message   string `json:"message"`
	MessageID string `json:"message_id"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// NewHandler constructs a webhook handler.
func NewHandler(ingester Ingester, opts Options, log *slog.Logger) *Handler {
	header := strings.TrimSpace(opts.SignatureHeader)
	if header == "" {
		header = SignatureHeader
	}
	maxBytes := opts.MaxPayloadBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxPayloadBytes
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{ingester: ingester, header: header, maxBytes: maxBytes, log: log}
}

// Handle reads the body verbatim, verifies and stores it. The signature is
// checked against the exact bytes received; nothing is re-encoded.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBytes+1))
	if err != nil {
		return writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
	}
	if int64(len(body)) > h.maxBytes {
		return writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
	}

	result, err := h.ingester.Ingest(r.Context(), appservices.IngestCommand{
		Signature: r.Header.Get(h.header),
		Body:      body,
	})
	if err != nil {
		return h.writeError(w, r, err)
	}

	return writeJSON(w, http.StatusCreated, Response{
		Message:   "Webhook received",
		MessageID: result.MessageID,
		Duplicate: result.Duplicate,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) error {
	switch appservices.ClassifyIngestError(err) {
	case appservices.IngestErrorInvalidSignature:
		return writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid signature"})
	case appservices.IngestErrorValidation:
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			return writeJSON(w, http.StatusBadRequest, errorResponse{Error: validation.Error(), Field: validation.Field})
		}
		return writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		h.log.ErrorContext(r.Context(), "Webhook ingestion failed", "error", err)
		return writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}
