package application

import (
	"errors"
	"net/http"

	"github.com/DanielPopoola/payment-gateway/internal/domain"
)

// ErrorCategory describes how a caller should react to an error.
type ErrorCategory string

const (
	CategoryValidation      ErrorCategory = "VALIDATION"
	CategoryBankUnavailable ErrorCategory = "BANK_UNAVAILABLE"
	CategoryConflict        ErrorCategory = "CONFLICT"
	CategoryNotFound        ErrorCategory = "NOT_FOUND"
	CategoryClientError     ErrorCategory = "CLIENT_ERROR"
	CategoryInternal        ErrorCategory = "INTERNAL"
)

// CategorizeError determines error category for logging and response mapping
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if rejection, ok := domain.AsRejection(err); ok {
		if rejection.IsValidation() {
			return CategoryValidation
		}
		return CategoryBankUnavailable
	}

	if errors.Is(err, domain.ErrPaymentNotFound) {
		return CategoryNotFound
	}

	if svcErr, ok := IsServiceError(err); ok {
		switch svcErr.Code {
		case ErrCodeRequestInProgress:
			return CategoryConflict
		case ErrCodeInternal:
			return CategoryInternal
		default:
			return CategoryClientError
		}
	}

	return CategoryInternal
}

// IsRetryable reports whether the same request may succeed if sent again later.
func IsRetryable(err error) bool {
	switch CategorizeError(err) {
	case CategoryBankUnavailable, CategoryConflict:
		return true
	}
	return false
}

// ToHTTPStatus maps error to appropriate HTTP status code
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.HTTPStatus
	}

	switch CategorizeError(err) {
	case CategoryValidation, CategoryBankUnavailable:
		return http.StatusBadRequest
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryConflict:
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

// ToErrorCode clear error code for API responses
func ToErrorCode(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Code
	}

	if rejection, ok := domain.AsRejection(err); ok {
		return rejection.Code()
	}

	if errors.Is(err, domain.ErrPaymentNotFound) {
		return domain.ErrCodePaymentNotFound
	}

	return ErrCodeInternal
}

// ToErrorMessage returns the message that is safe to show to a merchant.
func ToErrorMessage(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Message
	}

	if rejection, ok := domain.AsRejection(err); ok {
		return rejection.Message
	}

	if errors.Is(err, domain.ErrPaymentNotFound) {
		return "Payment not found"
	}

	return "An internal error occurred"
}
