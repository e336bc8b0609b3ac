package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/payment-gateway/internal/domain"
	"github.com/DanielPopoola/payment-gateway/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PaymentRepository struct {
	db        *DB
	encryptor persistence.Encryptor
}

func NewPaymentRepository(db *DB, encryptor persistence.Encryptor) *PaymentRepository {
	return &PaymentRepository{db: db, encryptor: encryptor}
}

// Create inserts the payment. It reports false when the id is already taken.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) (bool, error) {
	query := `
		INSERT INTO payments (
			id, merchant_id, status, card_last_four, encrypted_card_number, encrypted_cvv,
			expiry_month, expiry_year, currency, amount, authorization_code, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	m, err := persistence.ToModel(payment, r.encryptor)
	if err != nil {
		return false, err
	}

	_, err = r.db.Pool.Exec(ctx, query,
		m.ID,
		m.MerchantID,
		m.Status,
		m.CardLastFour,
		m.EncryptedCardNumber,
		m.EncryptedCvv,
		m.ExpiryMonth,
		m.ExpiryYear,
		m.Currency,
		m.Amount,
		m.AuthorizationCode,
		m.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create payment: %w", err)
	}

	return true, nil
}

// FindByID retrieves a payment owned by merchantID. An id that is not a UUID
// cannot exist and is reported as not found.
func (r *PaymentRepository) FindByID(ctx context.Context, id, merchantID string) (*domain.Payment, error) {
	paymentID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrPaymentNotFound
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 AND merchant_id = $2`

	m, err := scanPayment(r.db.Pool.QueryRow(ctx, query, paymentID.String(), merchantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	return persistence.ToDomain(m, r.encryptor)
}

// FindEncrypted returns the row as stored, without decrypting it.
func (r *PaymentRepository) FindEncrypted(ctx context.Context, id string) (persistence.PaymentModel, error) {
	paymentID, err := uuid.Parse(id)
	if err != nil {
		return persistence.PaymentModel{}, domain.ErrPaymentNotFound
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	m, err := scanPayment(r.db.Pool.QueryRow(ctx, query, paymentID.String()))
	if errors.Is(err, pgx.ErrNoRows) {
		return m, domain.ErrPaymentNotFound
	}
	return m, err
}
