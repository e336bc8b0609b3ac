package validation_test

import (
	"strings"
	"testing"
	"time"

	"github.com/DanielPopoola/payment-gateway/internal/application"
	"github.com/DanielPopoola/payment-gateway/internal/application/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)

func newValidator() *validation.PaymentValidator {
	return validation.NewPaymentValidator(validation.WithClock(func() time.Time { return fixedNow }))
}

func validCommand() application.PaymentCommand {
	return application.PaymentCommand{
		CardNumber:  "4111111111111111",
		ExpiryMonth: int(fixedNow.Month()),
		ExpiryYear:  fixedNow.Year() + 1,
		Cvv:         "123",
		Currency:    "USD",
		Amount:      1000,
	}
}

func TestPaymentValidator_ValidCommand(t *testing.T) {
	v := newValidator()

	assert.Nil(t, v.Validate(validCommand()))

	t.Run("current month of current year is still valid", func(t *testing.T) {
		cmd := validCommand()
		cmd.ExpiryYear = fixedNow.Year()
		assert.Nil(t, v.Validate(cmd))
	})

	t.Run("currency is case-insensitive", func(t *testing.T) {
		cmd := validCommand()
		cmd.Currency = "gbp"
		assert.Nil(t, v.Validate(cmd))
	})

	t.Run("four digit cvv and 19 digit card", func(t *testing.T) {
		cmd := validCommand()
		cmd.Cvv = "1234"
		cmd.CardNumber = "4111111111111111111"
		assert.Nil(t, v.Validate(cmd))
	})
}

func TestPaymentValidator_FieldRules(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name    string
		mutate  func(cmd *application.PaymentCommand)
		field   string
		message string
	}{
		{
			name:    "card number too short",
			mutate:  func(cmd *application.PaymentCommand) { cmd.CardNumber = "4111111111111" },
			field:   validation.FieldCardNumber,
			message: "Card number must be between 14 and 19 characters.",
		},
		{
			name:    "card number too long",
			mutate:  func(cmd *application.PaymentCommand) { cmd.CardNumber = strings.Repeat("4", 20) },
			field:   validation.FieldCardNumber,
			message: "Card number must be between 14 and 19 characters.",
		},
		{
			name:    "card number with letters",
			mutate:  func(cmd *application.PaymentCommand) { cmd.CardNumber = "41111111111111ab" },
			field:   validation.FieldCardNumber,
			message: "Card number must contain only numeric characters.",
		},
		{
			name:    "expiry month zero",
			mutate:  func(cmd *application.PaymentCommand) { cmd.ExpiryMonth = 0 },
			field:   validation.FieldExpiryMonth,
			message: "Expiry month must be between 1 and 12.",
		},
		{
			name:    "expiry month thirteen",
			mutate:  func(cmd *application.PaymentCommand) { cmd.ExpiryMonth = 13 },
			field:   validation.FieldExpiryMonth,
			message: "Expiry month must be between 1 and 12.",
		},
		{
			name:    "expiry year in the past",
			mutate:  func(cmd *application.PaymentCommand) { cmd.ExpiryYear = fixedNow.Year() - 1 },
			field:   validation.FieldExpiryYear,
			message: "Expiry year must not be in the past.",
		},
		{
			name: "earlier month of current year",
			mutate: func(cmd *application.PaymentCommand) {
				cmd.ExpiryYear = fixedNow.Year()
				cmd.ExpiryMonth = int(fixedNow.Month()) - 1
			},
			field:   validation.FieldExpiryDate,
			message: "Card has expired. Expiry date must be in the future.",
		},
		{
			name:    "unsupported currency",
			mutate:  func(cmd *application.PaymentCommand) { cmd.Currency = "JPY" },
			field:   validation.FieldCurrency,
			message: "Currency must be one of: USD, GBP, EUR.",
		},
		{
			name:    "currency wrong length",
			mutate:  func(cmd *application.PaymentCommand) { cmd.Currency = "US" },
			field:   validation.FieldCurrency,
			message: "Currency must be exactly 3 characters.",
		},
		{
			name:    "zero amount",
			mutate:  func(cmd *application.PaymentCommand) { cmd.Amount = 0 },
			field:   validation.FieldAmount,
			message: "Amount must be greater than zero.",
		},
		{
			name:    "negative amount",
			mutate:  func(cmd *application.PaymentCommand) { cmd.Amount = -50 },
			field:   validation.FieldAmount,
			message: "Amount must be greater than zero.",
		},
		{
			name:    "cvv too short",
			mutate:  func(cmd *application.PaymentCommand) { cmd.Cvv = "12" },
			field:   validation.FieldCvv,
			message: "CVV must be 3 or 4 characters.",
		},
		{
			name:    "cvv with letters",
			mutate:  func(cmd *application.PaymentCommand) { cmd.Cvv = "12a" },
			field:   validation.FieldCvv,
			message: "CVV must contain only numeric characters.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := validCommand()
			tt.mutate(&cmd)

			rejection := v.Validate(cmd)

			require.NotNil(t, rejection)
			assert.True(t, rejection.IsValidation())
			assert.Contains(t, rejection.Errors, tt.field)
			assert.Contains(t, rejection.Errors[tt.field], tt.message)
		})
	}
}

func TestPaymentValidator_CollectsEveryFailure(t *testing.T) {
	v := newValidator()

	rejection := v.Validate(application.PaymentCommand{})

	require.NotNil(t, rejection)
	assert.Equal(t, []string{
		"Card number is required.",
		"Card number must be between 14 and 19 characters.",
		"Card number must contain only numeric characters.",
	}, rejection.Errors[validation.FieldCardNumber])
	assert.Equal(t, []string{
		"Currency is required.",
		"Currency must be exactly 3 characters.",
		"Currency must be one of: USD, GBP, EUR.",
	}, rejection.Errors[validation.FieldCurrency])
	assert.Len(t, rejection.Errors[validation.FieldCvv], 3)

	for _, field := range []string{
		validation.FieldExpiryMonth,
		validation.FieldExpiryYear,
		validation.FieldExpiryDate,
		validation.FieldAmount,
	} {
		assert.Contains(t, rejection.Errors, field)
	}
}
