// Package validation checks inbound payment commands field by field.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/DanielPopoola/payment-gateway/internal/application"
	"github.com/DanielPopoola/payment-gateway/internal/domain"
	"github.com/go-playground/validator"
)

// Field names used as keys of the rejection's error map.
const (
	FieldCardNumber  = "CardNumber"
	FieldExpiryMonth = "ExpiryMonth"
	FieldExpiryYear  = "ExpiryYear"
	FieldExpiryDate  = "ExpiryDate"
	FieldCurrency    = "Currency"
	FieldAmount      = "Amount"
	FieldCvv         = "Cvv"
)

type rule struct {
	field   string
	tag     string
	message string
	value   func(cmd application.PaymentCommand) interface{}
}

// PaymentValidator evaluates every rule independently, so a single field can
// report several problems at once.
type PaymentValidator struct {
	validate *validator.Validate
	now      func() time.Time
	rules    []rule
}

type Option func(*PaymentValidator)

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(v *PaymentValidator) {
		v.now = now
	}
}

func NewPaymentValidator(opts ...Option) *PaymentValidator {
	v := &PaymentValidator{
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}

	v.register("digits", func(fl validator.FieldLevel) bool {
		return isDigits(fl.Field().String())
	})
	v.register("supportedcurrency", func(fl validator.FieldLevel) bool {
		return domain.IsSupportedCurrency(fl.Field().String())
	})
	v.register("notpastyear", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() >= int64(v.now().UTC().Year())
	})
	v.register("notpastmonth", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() >= monthIndex(v.now().UTC().Year(), int(v.now().UTC().Month()))
	})

	cardNumber := func(cmd application.PaymentCommand) interface{} { return cmd.CardNumber }
	currency := func(cmd application.PaymentCommand) interface{} { return cmd.Currency }
	cvv := func(cmd application.PaymentCommand) interface{} { return cmd.Cvv }

	v.rules = []rule{
		{FieldCardNumber, "required", "Card number is required.", cardNumber},
		{FieldCardNumber, "min=14,max=19", "Card number must be between 14 and 19 characters.", cardNumber},
		{FieldCardNumber, "digits", "Card number must contain only numeric characters.", cardNumber},

		{FieldExpiryMonth, "min=1,max=12", "Expiry month must be between 1 and 12.",
			func(cmd application.PaymentCommand) interface{} { return cmd.ExpiryMonth }},
		{FieldExpiryYear, "notpastyear", "Expiry year must not be in the past.",
			func(cmd application.PaymentCommand) interface{} { return cmd.ExpiryYear }},
		{FieldExpiryDate, "notpastmonth", "Card has expired. Expiry date must be in the future.",
			func(cmd application.PaymentCommand) interface{} { return monthIndex(cmd.ExpiryYear, cmd.ExpiryMonth) }},

		{FieldCurrency, "required", "Currency is required.", currency},
		{FieldCurrency, "len=3", "Currency must be exactly 3 characters.", currency},
		{FieldCurrency, "supportedcurrency",
			fmt.Sprintf("Currency must be one of: %s.", strings.Join(domain.SupportedCurrencies, ", ")), currency},

		{FieldAmount, "gt=0", "Amount must be greater than zero.",
			func(cmd application.PaymentCommand) interface{} { return cmd.Amount }},

		{FieldCvv, "required", "CVV is required.", cvv},
		{FieldCvv, "min=3,max=4", "CVV must be 3 or 4 characters.", cvv},
		{FieldCvv, "digits", "CVV must contain only numeric characters.", cvv},
	}

	return v
}

func (v *PaymentValidator) register(tag string, fn validator.Func) {
	if err := v.validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// Validate returns nil for a valid command, otherwise a validation rejection
// listing every failing rule grouped by field.
func (v *PaymentValidator) Validate(cmd application.PaymentCommand) *domain.Rejection {
	fieldErrors := make(map[string][]string)

	for _, r := range v.rules {
		if err := v.validate.Var(r.value(cmd), r.tag); err != nil {
			fieldErrors[r.field] = append(fieldErrors[r.field], r.message)
		}
	}

	if len(fieldErrors) == 0 {
		return nil
	}
	return domain.NewValidationRejection(fieldErrors)
}

// monthIndex orders (year, month) pairs so expiry can be compared as one number.
func monthIndex(year, month int) int64 {
	return int64(year)*12 + int64(month-1)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
