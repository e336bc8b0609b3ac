package services

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/DanielPopoola/payment-gateway/internal/application"
	"github.com/DanielPopoola/payment-gateway/internal/domain"
	"github.com/google/uuid"
)

// PaymentService runs a validated command through the bank and records the
// decision. Idempotency is handled one layer up, around Process.
type PaymentService struct {
	validator  application.PaymentValidator
	bankClient application.BankClient
	repo       application.PaymentRepository
	metrics    application.PaymentMetrics
	publisher  application.EventPublisher
	logger     *slog.Logger
	newID      func() string
}

type Option func(*PaymentService)

// WithIDGenerator replaces the uuid generator used for payment ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *PaymentService) {
		s.newID = fn
	}
}

func NewPaymentService(
	validator application.PaymentValidator,
	bankClient application.BankClient,
	repo application.PaymentRepository,
	metrics application.PaymentMetrics,
	publisher application.EventPublisher,
	logger *slog.Logger,
	opts ...Option,
) *PaymentService {
	if publisher == nil {
		publisher = application.NopEventPublisher{}
	}
	s := &PaymentService{
		validator:  validator,
		bankClient: bankClient,
		repo:       repo,
		metrics:    metrics,
		publisher:  publisher,
		logger:     logger,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process validates cmd, asks the bank for a decision and stores the payment.
// A decline is returned as a payment, not an error. Validation failures and an
// unreachable bank come back as *domain.Rejection and leave nothing stored.
func (s *PaymentService) Process(ctx context.Context, merchantID string, cmd application.PaymentCommand) (*domain.Payment, error) {
	start := time.Now()
	currency := domain.NormalizeCurrency(cmd.Currency)

	if rejection := s.validator.Validate(cmd); rejection != nil {
		s.metrics.RecordRejected(ctx, "validation")
		s.metrics.RecordProcessingDuration(ctx, time.Since(start), currency, application.OutcomeRejected)
		s.logger.Info("payment rejected",
			"merchant_id", merchantID,
			"reason", "validation",
			"fields", fieldNames(rejection),
		)
		return nil, rejection
	}

	card := domain.Card{
		Number:      cmd.CardNumber,
		Cvv:         cmd.Cvv,
		ExpiryMonth: cmd.ExpiryMonth,
		ExpiryYear:  cmd.ExpiryYear,
	}
	money, err := domain.NewMoney(cmd.Amount, currency)
	if err != nil {
		return nil, application.NewInvalidInputError(err)
	}

	bankStart := time.Now()
	outcome, err := s.bankClient.Authorize(ctx, application.BankAuthorizationRequest{
		CardNumber: card.Number,
		ExpiryDate: card.ExpiryDate(),
		Currency:   money.Currency,
		Amount:     money.Amount,
		Cvv:        card.Cvv,
	})
	s.metrics.RecordBankLatency(ctx, time.Since(bankStart), err == nil)
	if err != nil {
		s.metrics.RecordBankError(ctx)
		s.metrics.RecordRejected(ctx, "bank_unavailable")
		s.metrics.RecordProcessingDuration(ctx, time.Since(start), currency, application.OutcomeBankError)

		rejection, ok := domain.AsRejection(err)
		if !ok {
			rejection = domain.BankUnavailable()
		}
		s.logger.Warn("payment rejected",
			"merchant_id", merchantID,
			"reason", "bank_unavailable",
			"card_last_four", card.LastFour(),
			"error", err,
		)
		return nil, rejection
	}

	status := domain.StatusFromAuthorization(outcome.Authorized)
	payment, err := domain.NewPayment(s.newID(), merchantID, card, money, status, outcome.AuthorizationCode)
	if err != nil {
		s.metrics.RecordProcessingDuration(ctx, time.Since(start), currency, application.OutcomeInternalError)
		return nil, application.NewInternalError(err)
	}

	created, err := s.repo.Create(ctx, payment)
	if err == nil && !created {
		err = fmt.Errorf("payment id %s already exists", payment.ID)
	}
	if err != nil {
		s.metrics.RecordProcessingDuration(ctx, time.Since(start), currency, application.OutcomeInternalError)
		s.logger.Error("failed to store payment",
			"payment_id", payment.ID,
			"merchant_id", merchantID,
			"status", payment.Status,
			"error", err,
		)
		return nil, application.NewInternalError(err)
	}

	s.metrics.RecordProcessed(ctx, currency)
	outcomeLabel := application.OutcomeDeclined
	if payment.IsAuthorized() {
		outcomeLabel = application.OutcomeAuthorized
		s.metrics.RecordAuthorized(ctx, currency)
	} else {
		s.metrics.RecordDeclined(ctx, currency)
	}
	s.metrics.RecordProcessingDuration(ctx, time.Since(start), currency, outcomeLabel)

	s.publisher.PaymentProcessed(ctx, payment)

	s.logger.Info("payment processed",
		"payment_id", payment.ID,
		"merchant_id", merchantID,
		"status", payment.Status,
		"card_last_four", payment.CardLastFour,
		"amount", payment.Amount,
		"currency", payment.Currency,
	)

	return payment, nil
}

// Get returns the payment with id if it belongs to merchantID.
func (s *PaymentService) Get(ctx context.Context, id, merchantID string) (*domain.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id, merchantID)
	if err != nil {
		if domain.IsErrorCode(err, domain.ErrCodePaymentNotFound) {
			return nil, err
		}
		s.logger.Error("failed to load payment", "payment_id", id, "merchant_id", merchantID, "error", err)
		return nil, application.NewInternalError(err)
	}
	return payment, nil
}

func fieldNames(r *domain.Rejection) []string {
	return slices.Sorted(maps.Keys(r.Errors))
}
