package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/payment-gateway/internal/application/idempotency"
)

// Sweeper is the part of idempotency.Store the sweeper needs.
type Sweeper interface {
	SweepExpired(ctx context.Context) (idempotency.SweepResult, error)
}

// IdempotencySweeper periodically drops expired responses and stale locks.
type IdempotencySweeper struct {
	store    Sweeper
	interval time.Duration
	logger   *slog.Logger
}

func NewIdempotencySweeper(
	store Sweeper,
	interval time.Duration,
	logger *slog.Logger,
) *IdempotencySweeper {
	return &IdempotencySweeper{
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

// Start blocks until ctx is cancelled.
func (w *IdempotencySweeper) Start(ctx context.Context) {
	w.logger.Info("idempotency sweeper started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("idempotency sweeper stopping")
			return
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				w.logger.Error("idempotency sweep failed", "error", err)
			}
		}
	}
}

func (w *IdempotencySweeper) sweep(ctx context.Context) error {
	result, err := w.store.SweepExpired(ctx)
	if err != nil {
		return err
	}

	if result.Responses == 0 && result.Locks == 0 {
		return nil
	}

	w.logger.Info("swept idempotency entries",
		"responses", result.Responses,
		"locks", result.Locks)

	return nil
}
