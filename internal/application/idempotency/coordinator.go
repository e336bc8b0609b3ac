package idempotency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrRequestInProgress means another attempt with the same key holds the
// lock. It is transient; the caller should retry after a delay.
var ErrRequestInProgress = errors.New("idempotency: a request with this key is already in progress")

// ReplayRecorder counts responses served from the cache.
type ReplayRecorder interface {
	RecordIdempotentReplay(ctx context.Context)
}

type nopReplayRecorder struct{}

func (nopReplayRecorder) RecordIdempotentReplay(context.Context) {}

// Result is the response to send back and whether it was replayed.
type Result struct {
	Response Response
	Replayed bool
}

// Operation is the guarded work. Returning an error means no response is
// recorded for the key, so a retry will run the operation again.
type Operation func(ctx context.Context) (Response, error)

type Coordinator struct {
	store   Store
	metrics ReplayRecorder
	logger  *slog.Logger
}

func NewCoordinator(store Store, metrics ReplayRecorder, logger *slog.Logger) *Coordinator {
	if metrics == nil {
		metrics = nopReplayRecorder{}
	}
	return &Coordinator{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// Execute runs op at most once per key. A cached response is replayed; a
// concurrent attempt gets ErrRequestInProgress without waiting. The lock is
// released on every exit path, including cancellation and panics.
func (c *Coordinator) Execute(ctx context.Context, key string, op Operation) (Result, error) {
	if result, ok, err := c.replay(ctx, key); err != nil || ok {
		return result, err
	}

	acquired, err := c.store.TryAcquire(ctx, key)
	if err != nil {
		return Result{}, fmt.Errorf("acquire idempotency lock: %w", err)
	}
	if !acquired {
		c.logger.Warn("duplicate request in progress", "idempotency_key", key)
		return Result{}, ErrRequestInProgress
	}

	defer func() {
		if err := c.store.Release(context.WithoutCancel(ctx), key); err != nil {
			c.logger.Error("failed to release idempotency lock", "idempotency_key", key, "error", err)
		}
	}()

	// The previous holder may have finished between the lookup and the acquire.
	if result, ok, err := c.replay(ctx, key); err != nil || ok {
		return result, err
	}

	resp, err := op(ctx)
	if err != nil {
		return Result{}, err
	}

	if err := c.store.Save(context.WithoutCancel(ctx), key, resp); err != nil {
		c.logger.Error("failed to store idempotent response", "idempotency_key", key, "error", err)
	}

	return Result{Response: resp}, nil
}

func (c *Coordinator) replay(ctx context.Context, key string) (Result, bool, error) {
	cached, found, err := c.store.Lookup(ctx, key)
	if err != nil {
		return Result{}, false, fmt.Errorf("lookup idempotency key: %w", err)
	}
	if !found {
		return Result{}, false, nil
	}

	c.metrics.RecordIdempotentReplay(ctx)
	c.logger.Info("replaying cached response",
		"idempotency_key", key,
		"status_code", cached.StatusCode,
	)
	return Result{Response: cached, Replayed: true}, true, nil
}
