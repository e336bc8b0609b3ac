// Package persistence holds the storage representation shared by the
// payment stores.
package persistence

import (
	"fmt"
	"time"

	"github.com/DanielPopoola/payment-gateway/internal/domain"
)

// Encryptor protects sensitive fields before they are written.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// PaymentModel - storage representation. Card number and CVV only ever hold
// ciphertext.
type PaymentModel struct {
	ID                  string
	MerchantID          string
	Status              string
	CardLastFour        string
	EncryptedCardNumber string
	EncryptedCvv        string
	ExpiryMonth         int
	ExpiryYear          int
	Currency            string
	Amount              int64
	AuthorizationCode   *string
	CreatedAt           time.Time
}

// ToModel - Domain → storage
func ToModel(p *domain.Payment, enc Encryptor) (PaymentModel, error) {
	cardNumber, err := enc.Encrypt(p.CardNumber)
	if err != nil {
		return PaymentModel{}, fmt.Errorf("encrypt card number: %w", err)
	}

	cvv, err := enc.Encrypt(p.Cvv)
	if err != nil {
		return PaymentModel{}, fmt.Errorf("encrypt cvv: %w", err)
	}

	return PaymentModel{
		ID:                  p.ID,
		MerchantID:          p.MerchantID,
		Status:              string(p.Status),
		CardLastFour:        p.CardLastFour,
		EncryptedCardNumber: cardNumber,
		EncryptedCvv:        cvv,
		ExpiryMonth:         p.ExpiryMonth,
		ExpiryYear:          p.ExpiryYear,
		Currency:            domain.NormalizeCurrency(p.Currency),
		Amount:              p.Amount,
		AuthorizationCode:   p.AuthorizationCode,
		CreatedAt:           p.CreatedAt,
	}, nil
}

// ToDomain - storage → Domain
func ToDomain(m PaymentModel, enc Encryptor) (*domain.Payment, error) {
	cardNumber, err := enc.Decrypt(m.EncryptedCardNumber)
	if err != nil {
		return nil, fmt.Errorf("decrypt card number of payment %s: %w", m.ID, err)
	}

	cvv, err := enc.Decrypt(m.EncryptedCvv)
	if err != nil {
		return nil, fmt.Errorf("decrypt cvv of payment %s: %w", m.ID, err)
	}

	return &domain.Payment{
		ID:                m.ID,
		MerchantID:        m.MerchantID,
		Status:            domain.PaymentStatus(m.Status),
		CardNumber:        cardNumber,
		CardLastFour:      m.CardLastFour,
		Cvv:               cvv,
		ExpiryMonth:       m.ExpiryMonth,
		ExpiryYear:        m.ExpiryYear,
		Currency:          m.Currency,
		Amount:            m.Amount,
		AuthorizationCode: m.AuthorizationCode,
		CreatedAt:         m.CreatedAt,
	}, nil
}
