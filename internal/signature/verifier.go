// Package signature verifies HMAC-SHA256 webhook signatures computed over raw request bodies.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
)

// ErrInvalidSignature is returned for every verification failure.
// Callers never learn which part of the check failed.
var ErrInvalidSignature = errors.New("invalid signature")

const sha256Prefix = "sha256="

// Verifier checks request signatures against a shared secret.
type Verifier struct {
	mu     sync.RWMutex
	secret []byte
}

// NewVerifier constructs a verifier for secret. An empty secret rejects everything.
func NewVerifier(secret string) *Verifier {
	v := &Verifier{}
	v.SetSecret(secret)
	return v
}

// SetSecret replaces the shared secret.
func (v *Verifier) SetSecret(secret string) {
	var key []byte
	if strings.TrimSpace(secret) != "" {
		key = []byte(secret)
	}

	v.mu.Lock()
	v.secret = key
	v.mu.Unlock()
}

// Configured reports whether a non-empty secret is set.
func (v *Verifier) Configured() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.secret) > 0
}

// Verify checks signature against HMAC-SHA256(secret, body).
//
// body must be the exact bytes received on the wire. The signature may be plain
// hex or carry a "sha256=" prefix.
func (v *Verifier) Verify(body []byte, signature string) error {
	v.mu.RLock()
	secret := v.secret
	v.mu.RUnlock()

	if len(secret) == 0 {
		return ErrInvalidSignature
	}

	actual, ok := parseSignature(signature)
	if !ok {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), actual) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign returns the lowercase hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func parseSignature(value string) ([]byte, bool) {
	value = strings.TrimSpace(value)
	if len(value) > len(sha256Prefix) && strings.EqualFold(value[:len(sha256Prefix)], sha256Prefix) {
		value = value[len(sha256Prefix):]
	}
	if len(value) != hex.EncodedLen(sha256.Size) {
		return nil, false
	}
	decoded, err := hex.DecodeString(value)
	if err != nil {
		return nil, false
	}
	return decoded, true
}
