// Package idempotency makes an operation identified by a caller-supplied key
// run at most once, replaying its recorded response to repeated callers.
package idempotency

import (
	"context"
	"maps"
	"time"
)

const (
	DefaultResponseTTL = 24 * time.Hour
	DefaultLockTimeout = 5 * time.Minute
)

// Response is the HTTP-shaped result recorded for a key.
type Response struct {
	StatusCode  int
	Body        []byte
	ContentType string
	Headers     map[string]string
	CreatedAt   time.Time
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (r Response) Clone() Response {
	c := r
	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}
	if r.Headers != nil {
		c.Headers = maps.Clone(r.Headers)
	}
	return c
}

// SweepResult reports how many entries a sweep removed.
type SweepResult struct {
	Responses int
	Locks     int
}

// Store is the keyed-lock and response-cache contract behind the coordinator.
type Store interface {
	// Lookup returns the cached response for key. Expired entries are
	// reported as absent and evicted.
	Lookup(ctx context.Context, key string) (Response, bool, error)
	// TryAcquire claims key without blocking. It succeeds when the key is
	// unlocked or its lock is older than the lock timeout.
	TryAcquire(ctx context.Context, key string) (bool, error)
	// Release drops the lock on key unconditionally.
	Release(ctx context.Context, key string) error
	// Save records the final response for key.
	Save(ctx context.Context, key string, resp Response) error
	// SweepExpired removes stale responses and locks.
	SweepExpired(ctx context.Context) (SweepResult, error)
}
