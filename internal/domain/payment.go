// Package domain encodes a card payment and the outcomes of processing one.
package domain

import (
	"time"
)

// PaymentStatus is the bank's decision recorded against a payment.
type PaymentStatus string

const (
	StatusAuthorized PaymentStatus = "Authorized"
	StatusDeclined   PaymentStatus = "Declined"
)

// StatusFromAuthorization maps the bank's authorized flag to a status.
// A decline is a settled outcome, not a failure.
func StatusFromAuthorization(authorized bool) PaymentStatus {
	if authorized {
		return StatusAuthorized
	}
	return StatusDeclined
}

// Payment is created once per processed request and never mutated afterwards.
// CardNumber and Cvv are plaintext here; stores encrypt them at rest.
type Payment struct {
	ID                string
	MerchantID        string
	Status            PaymentStatus
	CardNumber        string
	CardLastFour      string
	Cvv               string
	ExpiryMonth       int
	ExpiryYear        int
	Currency          string
	Amount            int64
	AuthorizationCode *string
	CreatedAt         time.Time
}

func NewPayment(
	id string,
	merchantID string,
	card Card,
	amount Money,
	status PaymentStatus,
	authorizationCode string,
) (*Payment, error) {
	if id == "" {
		return nil, NewMissingRequiredFieldError("payment ID")
	}
	if merchantID == "" {
		return nil, NewMissingRequiredFieldError("merchant ID")
	}
	if status != StatusAuthorized && status != StatusDeclined {
		return nil, NewInvalidStatusError(status)
	}

	p := &Payment{
		ID:           id,
		MerchantID:   merchantID,
		Status:       status,
		CardNumber:   card.Number,
		CardLastFour: card.LastFour(),
		Cvv:          card.Cvv,
		ExpiryMonth:  card.ExpiryMonth,
		ExpiryYear:   card.ExpiryYear,
		Currency:     amount.Currency,
		Amount:       amount.Amount,
		CreatedAt:    time.Now().UTC(),
	}

	if status == StatusAuthorized && authorizationCode != "" {
		p.AuthorizationCode = &authorizationCode
	}

	return p, nil
}

func (p *Payment) IsAuthorized() bool {
	return p.Status == StatusAuthorized
}
