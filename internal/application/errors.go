package application

import (
	"errors"
	"fmt"
	"net/http"
)

// APPLICATION-LEVEL ERRORS (Orchestration)

type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeRequestInProgress     = "REQUEST_IN_PROGRESS"
	ErrCodeMissingIdempotencyKey = "MISSING_IDEMPOTENCY_KEY"
	ErrCodeInvalidIdempotencyKey = "INVALID_IDEMPOTENCY_KEY"
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeInternal              = "INTERNAL_ERROR"
	ErrCodeInvalidInput          = "INVALID_INPUT"
)

func NewRequestInProgressError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeRequestInProgress,
		Message:    "A request with this idempotency key is already being processed. Please retry in a moment.",
		HTTPStatus: http.StatusConflict,
	}
}

func NewMissingIdempotencyKeyError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeMissingIdempotencyKey,
		Message:    "Idempotency-Key header is required",
		HTTPStatus: http.StatusBadRequest,
	}
}

func NewInvalidIdempotencyKeyError(maxLength int) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidIdempotencyKey,
		Message:    fmt.Sprintf("Idempotency-Key must not exceed %d characters", maxLength),
		HTTPStatus: http.StatusBadRequest,
	}
}

func NewUnauthorizedError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeUnauthorized,
		Message:    "A valid X-Api-Key header is required",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewInternalError hides err from callers; it is kept for logging only.
func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "An internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInvalidInputError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidInput,
		Message:    "Invalid input",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}
