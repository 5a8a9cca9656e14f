// Package limiter throttles credential-recovery attempts per mobile and client IP.
package limiter

import (
	"context"
	"time"
)

// Limiter controls recovery attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether a recovery attempt is currently allowed and optional retry-after.
	Allow(ctx context.Context, mobile string, ipHash []byte) (bool, time.Duration, error)
	// Success resets counters after a successful recovery.
	Success(ctx context.Context, mobile string, ipHash []byte) error
	// Failure records a failed attempt; may place a temporary block.
	Failure(ctx context.Context, mobile string, ipHash []byte) (bool, time.Duration, error)
}
