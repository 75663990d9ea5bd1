package signature

import (
	"errors"
	"strings"
	"testing"
)

func TestVerifyAcceptsMatchingSignature(t *testing.T) {
	t.Parallel()

	body := []byte(`{"message_id":"m1","timestamp":"2025-01-01T00:00:00Z","source":"a","raw_data":{}}`)
	v := NewVerifier("test-secret")

	if err := v.Verify(body, Sign("test-secret", body)); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
	if err := v.Verify(body, "sha256="+Sign("test-secret", body)); err != nil {
		t.Fatalf("expected prefixed signature to verify, got %v", err)
	}
	if err := v.Verify(body, strings.ToUpper(Sign("test-secret", body))); err != nil {
		t.Fatalf("expected uppercase hex to verify, got %v", err)
	}
}

func TestVerifyRejects(t *testing.T) {
	t.Parallel()

	body := []byte(`{"a":1}`)
	valid := Sign("test-secret", body)

	cases := map[string]struct {
		secret    string
		body      []byte
		signature string
	}{
		"missing signature":   {secret: "test-secret", body: body, signature: ""},
		"blank signature":     {secret: "test-secret", body: body, signature: "   "},
		"wrong secret":        {secret: "other-secret", body: body, signature: valid},
		"tampered body":       {secret: "test-secret", body: []byte(`{"a": 1}`), signature: valid},
		"not hex":             {secret: "test-secret", body: body, signature: strings.Repeat("zz", 32)},
		"short digest":        {secret: "test-secret", body: body, signature: valid[:20]},
		"long digest":         {secret: "test-secret", body: body, signature: valid + "00"},
		"prefix only":         {secret: "test-secret", body: body, signature: "sha256="},
		"empty secret":        {secret: "", body: body, signature: Sign("", body)},
		"whitespace secret":   {secret: "   ", body: body, signature: Sign("   ", body)},
		"sha1 style prefix":   {secret: "test-secret", body: body, signature: "sha1=" + valid},
		"signature of parsed": {secret: "test-secret", body: []byte("{\n  \"a\": 1\n}"), signature: valid},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := NewVerifier(tc.secret).Verify(tc.body, tc.signature)
			if !errors.Is(err, ErrInvalidSignature) {
				t.Fatalf("expected ErrInvalidSignature, got %v", err)
			}
		})
	}
}

func TestVerifyHashesEmptyBody(t *testing.T) {
	t.Parallel()

	v := NewVerifier("test-secret")
	if err := v.Verify(nil, Sign("test-secret", []byte{})); err != nil {
		t.Fatalf("expected empty body signature to verify, got %v", err)
	}
	if err := v.Verify([]byte{}, Sign("test-secret", []byte("x"))); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected mismatch for empty body, got %v", err)
	}
}

func TestSetSecretTogglesConfigured(t *testing.T) {
	t.Parallel()

	v := NewVerifier("")
	if v.Configured() {
		t.Fatal("expected empty secret to be unconfigured")
	}

	body := []byte("payload")
	v.SetSecret("rotated")
	if !v.Configured() {
		t.Fatal("expected verifier configured after SetSecret")
	}
	if err := v.Verify(body, Sign("rotated", body)); err != nil {
		t.Fatalf("expected rotated secret to verify, got %v", err)
	}

	v.SetSecret("")
	if v.Configured() {
		t.Fatal("expected verifier unconfigured after clearing secret")
	}
	if err := v.Verify(body, Sign("rotated", body)); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected fail closed after clearing secret, got %v", err)
	}
}
