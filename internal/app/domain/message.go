package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// MaxKeyLength bounds message_id and source.
	MaxKeyLength = 255
	// TimestampLayout is the stored form of every timestamp. Fixed width keeps
	// lexical order equal to chronological order.
	TimestampLayout = "2006-01-02T15:04:05.000000Z"
)

// Message is one persisted webhook delivery.
type Message struct {
	MessageID string          `json:"message_id"`
	Timestamp string          `json:"timestamp"`
	Source    string          `json:"source"`
	RawData   json.RawMessage `json:"raw_data"`
	CreatedAt string          `json:"created_at"`
}

// ValidationError reports a violated input constraint.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

type incomingMessage struct {
	MessageID *string         `json:"message_id"`
	Timestamp *string         `json:"timestamp"`
	Source    *string         `json:"source"`
	RawData   json.RawMessage `json:"raw_data"`
}

// DecodeMessage parses an ingestion body and validates it.
// The returned message has a normalized timestamp and no CreatedAt.
func DecodeMessage(body []byte) (Message, error) {
	var in incomingMessage
	if err := json.Unmarshal(body, &in); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				return Message{}, invalid("", "body must be a JSON object")
			}
			return Message{}, invalid(field, "must be a string")
		}
		return Message{}, invalid("", "body is not valid JSON")
	}

	msg := Message{RawData: in.RawData}
	if err := requireKey("message_id", in.MessageID, &msg.MessageID); err != nil {
		return Message{}, err
	}
	if in.Timestamp == nil || strings.TrimSpace(*in.Timestamp) == "" {
		return Message{}, invalid("timestamp", "is required")
	}
	ts, err := ParseTimestamp(*in.Timestamp)
	if err != nil {
		return Message{}, invalid("timestamp", "must be an ISO 8601 timestamp")
	}
	msg.Timestamp = FormatTimestamp(ts)
	if err := requireKey("source", in.Source, &msg.Source); err != nil {
		return Message{}, err
	}

	raw := bytes.TrimSpace(in.RawData)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Message{}, invalid("raw_data", "is required")
	}
	if raw[0] != '{' {
		return Message{}, invalid("raw_data", "must be a JSON object")
	}
	msg.RawData = raw

	return msg, nil
}

func requireKey(field string, value *string, dst *string) error {
	if value == nil || strings.TrimSpace(*value) == "" {
		return invalid(field, "is required")
	}
	if len(*value) > MaxKeyLength {
		return invalid(field, fmt.Sprintf("must be at most %d characters", MaxKeyLength))
	}
	*dst = *value
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// ParseTimestamp accepts RFC 3339 / ISO 8601 date-times and plain dates.
// Values without a zone are read as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp %q", value)
}

// FormatTimestamp renders t in the stored layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func isDateOnly(value string) bool {
	_, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	return err == nil
}
