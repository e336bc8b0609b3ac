package bank

import (
	"errors"
	"fmt"
)

// BankError describes a non-success HTTP answer from the bank. It never
// leaves this package; callers only see domain.BankUnavailable.
type BankError struct {
	Code       string
	Message    string
	StatusCode int
}

type BankErrorResponse struct {
	Err     string `json:"error"`
	Message string `json:"message"`
}

func (e *BankError) Error() string {
	return fmt.Sprintf("bank error [%s]: %s (status: %d)", e.Code, e.Message, e.StatusCode)
}

var errMalformedResponse = errors.New("bank response is missing the authorized flag")

func IsBankError(err error) (*BankError, bool) {
	var bankErr *BankError
	ok := errors.As(err, &bankErr)
	return bankErr, ok
}
