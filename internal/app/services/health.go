package services

import (
	"context"
	"time"
)

const readinessPingTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

type secretChecker interface {
	Configured() bool
}

// ReadinessReport describes the dependencies consulted by the readiness probe.
type ReadinessReport struct {
	StorageReachable bool `json:"storage"`
	SecretConfigured bool `json:"secret"`
}

// Ready reports whether every dependency is available.
func (r ReadinessReport) Ready() bool {
	return r.StorageReachable && r.SecretConfigured
}

// HealthService evaluates readiness on every call so state changes are
// reflected without a restart.
type HealthService struct {
	storage pinger
	secret  secretChecker
}

// NewHealthService constructs a readiness evaluator.
func NewHealthService(storage pinger, secret secretChecker) *HealthService {
	return &HealthService{storage: storage, secret: secret}
}

// Readiness checks storage reachability and secret presence.
func (s *HealthService) Readiness(ctx context.Context) ReadinessReport {
	pingCtx, cancel := context.WithTimeout(ctx, readinessPingTimeout)
	defer cancel()

	return ReadinessReport{
		StorageReachable: s.storage != nil && s.storage.Ping(pingCtx) == nil,
		SecretConfigured: s.secret != nil && s.secret.Configured(),
	}
}
