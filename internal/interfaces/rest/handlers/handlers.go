package handlers

import (
	"context"
	"log/slog"

	"github.com/DanielPopoola/payment-gateway/internal/application"
	"github.com/DanielPopoola/payment-gateway/internal/application/idempotency"
	"github.com/DanielPopoola/payment-gateway/internal/domain"
)

const (
	IdempotencyKeyHeader   = "Idempotency-Key"
	IdempotentReplayHeader = "X-Idempotent-Replay"
	DefaultMaxKeyLength    = 64
	paymentsPath           = "/api/payments/"
)

// PaymentProcessor is the application surface the handlers drive.
type PaymentProcessor interface {
	Process(ctx context.Context, merchantID string, cmd application.PaymentCommand) (*domain.Payment, error)
	Get(ctx context.Context, id, merchantID string) (*domain.Payment, error)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type Handlers struct {
	payments     PaymentProcessor
	coordinator  *idempotency.Coordinator
	maxKeyLength int
	checks       map[string]HealthCheck
	logger       *slog.Logger
}

type Option func(*Handlers)

func WithMaxKeyLength(n int) Option {
	return func(h *Handlers) {
		if n > 0 {
			h.maxKeyLength = n
		}
	}
}

func WithHealthCheck(name string, check HealthCheck) Option {
	return func(h *Handlers) {
		h.checks[name] = check
	}
}

func NewHandlers(
	payments PaymentProcessor,
	coordinator *idempotency.Coordinator,
	logger *slog.Logger,
	opts ...Option,
) *Handlers {
	h := &Handlers{
		payments:     payments,
		coordinator:  coordinator,
		maxKeyLength: DefaultMaxKeyLength,
		checks:       make(map[string]HealthCheck),
		logger:       logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
