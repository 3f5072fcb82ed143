// Package revocation keeps the set of refresh tokens that may no longer be
// exchanged. Entries are keyed by the token's sha256 hex and expire together
// with the token itself.
package revocation

import (
	"context"
	"time"
)

type Store interface {
	// Add records key until expiresAt. It reports false when key was already
	// present, which lets callers use it as an atomic check-and-set.
	Add(ctx context.Context, key string, expiresAt time.Time) (bool, error)
	Contains(ctx context.Context, key string) (bool, error)
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendDB     = "db"
)
