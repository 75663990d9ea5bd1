package domain

import (
	"testing"
	"time"
)

func TestDecodeMessageNormalizesTimestamp(t *testing.T) {
	t.Parallel()

	body := []byte(`{"message_id":"m1","timestamp":"2025-03-01T10:00:00+02:00","source":"billing","raw_data":{"k":[1,"two",{"three":true}]}}`)
	msg, err := DecodeMessage(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.MessageID != "m1" || msg.Source != "billing" {
		t.Fatalf("unexpected identity fields: %+v", msg)
	}
	if msg.Timestamp != "2025-03-01T08:00:00.000000Z" {
		t.Fatalf("unexpected normalized timestamp: %q", msg.Timestamp)
	}
	if string(msg.RawData) != `{"k":[1,"two",{"three":true}]}` {
		t.Fatalf("raw_data not preserved: %s", msg.RawData)
	}
	if msg.CreatedAt != "" {
		t.Fatalf("created_at must be assigned by the store path, got %q", msg.CreatedAt)
	}
}

func TestDecodeMessageKeepsRawDataBytes(t *testing.T) {
	t.Parallel()

	body := []byte(`{"message_id":"m1","timestamp":"2025-03-01","source":"a","raw_data":{ "b" : 2, "a" : 1 }}`)
	msg, err := DecodeMessage(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(msg.RawData) != `{ "b" : 2, "a" : 1 }` {
		t.Fatalf("expected raw_data bytes verbatim, got %s", msg.RawData)
	}
	if msg.Timestamp != "2025-03-01T00:00:00.000000Z" {
		t.Fatalf("unexpected date-only normalization: %q", msg.Timestamp)
	}
}

func TestDecodeMessageValidation(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		body  string
		field string
	}{
		"not json":           {body: `{`, field: ""},
		"array body":         {body: `[]`, field: ""},
		"missing message_id": {body: `{"timestamp":"2025-01-01T00:00:00Z","source":"a","raw_data":{}}`, field: "message_id"},
		"empty message_id":   {body: `{"message_id":" ","timestamp":"2025-01-01T00:00:00Z","source":"a","raw_data":{}}`, field: "message_id"},
		"numeric message_id": {body: `{"message_id":7,"timestamp":"2025-01-01T00:00:00Z","source":"a","raw_data":{}}`, field: "message_id"},
		"missing timestamp":  {body: `{"message_id":"m","source":"a","raw_data":{}}`, field: "timestamp"},
		"bad timestamp":      {body: `{"message_id":"m","timestamp":"yesterday","source":"a","raw_data":{}}`, field: "timestamp"},
		"missing source":     {body: `{"message_id":"m","timestamp":"2025-01-01T00:00:00Z","raw_data":{}}`, field: "source"},
		"missing raw_data":   {body: `{"message_id":"m","timestamp":"2025-01-01T00:00:00Z","source":"a"}`, field: "raw_data"},
		"null raw_data":      {body: `{"message_id":"m","timestamp":"2025-01-01T00:00:00Z","source":"a","raw_data":null}`, field: "raw_data"},
		"array raw_data":     {body: `{"message_id":"m","timestamp":"2025-01-01T00:00:00Z","source":"a","raw_data":[1]}`, field: "raw_data"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeMessage([]byte(tc.body))
			if err == nil {
				t.Fatal("expected validation error")
			}
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("unexpected field: got=%q want=%q (%v)", verr.Field, tc.field, err)
			}
		})
	}
}

func TestDecodeMessageAcceptsEmptyRawData(t *testing.T) {
	t.Parallel()

	msg, err := DecodeMessage([]byte(`{"message_id":"m","timestamp":"2025-01-01T00:00:00Z","source":"a","raw_data":{},"extra":1}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(msg.RawData) != "{}" {
		t.Fatalf("unexpected raw_data: %s", msg.RawData)
	}
}

func TestFormatTimestampOrdersLexically(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	earlier := FormatTimestamp(base)
	later := FormatTimestamp(base.Add(500 * time.Millisecond))
	if !(earlier < later) {
		t.Fatalf("expected %q < %q", earlier, later)
	}
}
