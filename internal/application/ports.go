package application

import (
	"context"
	"time"

	"github.com/DanielPopoola/payment-gateway/internal/domain"
)

// BankAuthorizationRequest is the authorization intent sent to the acquiring bank.
type BankAuthorizationRequest struct {
	CardNumber string
	ExpiryDate string // MM/YYYY
	Currency   string
	Amount     int64
	Cvv        string
}

// AuthorizationOutcome is the bank's decision. Authorized=false is a decline,
// which is a valid outcome and not an error.
type AuthorizationOutcome struct {
	Authorized        bool
	AuthorizationCode string
}

// BankClient is the port for the external bank infrastructure.
// Every failure is reported as a *domain.Rejection.
type BankClient interface {
	Authorize(ctx context.Context, req BankAuthorizationRequest) (*AuthorizationOutcome, error)
}

// PaymentRepository is the port for persistence.
type PaymentRepository interface {
	// Create stores a new payment. It returns false when the id is already taken.
	Create(ctx context.Context, payment *domain.Payment) (bool, error)
	// FindByID returns domain.ErrPaymentNotFound when the payment does not
	// exist or belongs to another merchant.
	FindByID(ctx context.Context, id, merchantID string) (*domain.Payment, error)
}

// MerchantDirectory resolves API keys to merchants.
type MerchantDirectory interface {
	FindByAPIKey(ctx context.Context, apiKey string) (*domain.Merchant, bool)
}

// EventPublisher announces processed payments to downstream consumers.
// Implementations must not block or fail the request path.
type EventPublisher interface {
	PaymentProcessed(ctx context.Context, payment *domain.Payment)
}

type NopEventPublisher struct{}

func (NopEventPublisher) PaymentProcessed(context.Context, *domain.Payment) {}

// Outcome labels for the processing duration metric.
const (
	OutcomeAuthorized    = "authorized"
	OutcomeDeclined      = "declined"
	OutcomeRejected      = "rejected"
	OutcomeBankError     = "bank_error"
	OutcomeInternalError = "internal_error"
)

// PaymentMetrics records operational metrics. Calls are fire-and-forget.
type PaymentMetrics interface {
	RecordProcessed(ctx context.Context, currency string)
	RecordAuthorized(ctx context.Context, currency string)
	RecordDeclined(ctx context.Context, currency string)
	RecordRejected(ctx context.Context, reason string)
	RecordBankError(ctx context.Context)
	RecordProcessingDuration(ctx context.Context, d time.Duration, currency, status string)
	RecordBankLatency(ctx context.Context, d time.Duration, success bool)
}

// PaymentValidator checks a command before it reaches the bank. It returns
// nil when the command is valid.
type PaymentValidator interface {
	Validate(cmd PaymentCommand) *domain.Rejection
}
