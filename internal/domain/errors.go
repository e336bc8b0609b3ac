package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

const (
	ErrCodePaymentNotFound      = "PAYMENT_NOT_FOUND"
	ErrCodeInvalidAmount        = "INVALID_AMOUNT"
	ErrCodeInvalidStatus        = "INVALID_STATUS"
	ErrCodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	ErrCodeValidationFailed     = "VALIDATION_FAILED"
	ErrCodeBankUnavailable      = "BANK_UNAVAILABLE"
)

// ErrPaymentNotFound is returned both for unknown ids and for payments owned
// by another merchant.
var ErrPaymentNotFound = &DomainError{
	Code:    ErrCodePaymentNotFound,
	Message: "payment not found",
}

func NewMissingRequiredFieldError(field string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required", field),
	}
}

func NewInvalidAmountError(amount int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: fmt.Sprintf("invalid amount %d", amount),
	}
}

func NewInvalidStatusError(status PaymentStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidStatus,
		Message: fmt.Sprintf("invalid payment status %q", status),
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

const (
	ValidationRejectedMessage = "The request was rejected due to validation errors."
	BankUnavailableMessage    = "Unable to process payment. The acquiring bank is currently unavailable."
)

// Rejection is the expected, non-exceptional failure of a payment request.
// A rejection with field errors is a validation failure; one without is a
// bank-side failure whose detail is deliberately withheld from the merchant.
type Rejection struct {
	Message string
	Errors  map[string][]string
}

func NewValidationRejection(fieldErrors map[string][]string) *Rejection {
	return &Rejection{
		Message: ValidationRejectedMessage,
		Errors:  fieldErrors,
	}
}

func BankUnavailable() *Rejection {
	return &Rejection{
		Message: BankUnavailableMessage,
		Errors:  map[string][]string{},
	}
}

func (r *Rejection) Error() string {
	if !r.IsValidation() {
		return r.Message
	}

	fields := make([]string, 0, len(r.Errors))
	for field := range r.Errors {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	return fmt.Sprintf("%s (%s)", r.Message, strings.Join(fields, ", "))
}

func (r *Rejection) IsValidation() bool {
	return len(r.Errors) > 0
}

// Code returns the machine-readable error code for the rejection.
func (r *Rejection) Code() string {
	if r.IsValidation() {
		return ErrCodeValidationFailed
	}
	return ErrCodeBankUnavailable
}

// AsRejection unwraps err into a Rejection if it carries one.
func AsRejection(err error) (*Rejection, bool) {
	var rejection *Rejection
	ok := errors.As(err, &rejection)
	return rejection, ok
}
