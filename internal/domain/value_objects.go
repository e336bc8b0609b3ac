package domain

import (
	"fmt"
	"slices"
	"strings"
)

// SupportedCurrencies is the set of ISO 4217 codes the gateway accepts.
var SupportedCurrencies = []string{"USD", "GBP", "EUR"}

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func IsSupportedCurrency(code string) bool {
	return slices.Contains(SupportedCurrencies, NormalizeCurrency(code))
}

// Money is an amount in minor units with a normalized currency code.
type Money struct {
	Amount   int64
	Currency string
}

func NewMoney(amount int64, currency string) (Money, error) {
	if amount <= 0 {
		return Money{}, NewInvalidAmountError(amount)
	}

	currency = NormalizeCurrency(currency)
	if currency == "" {
		return Money{}, NewMissingRequiredFieldError("currency")
	}

	return Money{
		Amount:   amount,
		Currency: currency,
	}, nil
}

type Card struct {
	Number      string
	Cvv         string
	ExpiryMonth int
	ExpiryYear  int
}

// LastFour returns the trailing four characters of the card number.
func (c Card) LastFour() string {
	if len(c.Number) <= 4 {
		return c.Number
	}
	return c.Number[len(c.Number)-4:]
}

// ExpiryDate formats the expiry as MM/YYYY.
func (c Card) ExpiryDate() string {
	return fmt.Sprintf("%02d/%04d", c.ExpiryMonth, c.ExpiryYear)
}

