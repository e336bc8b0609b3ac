package rest

import (
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/payment-gateway/internal/application"
	"github.com/DanielPopoola/payment-gateway/internal/domain"
)

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

// BuildErrorResponse maps an error to its status code and merchant-safe body.
// Internal causes never reach the body.
func BuildErrorResponse(err error) (int, ErrorResponse) {
	resp := ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Code:    application.ToErrorCode(err),
			Message: application.ToErrorMessage(err),
		},
	}

	if rejection, ok := domain.AsRejection(err); ok && rejection.IsValidation() {
		resp.Error.Details = rejection.Errors
	}

	return application.ToHTTPStatus(err), resp
}

// WriteError maps application errors to HTTP responses
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	statusCode, response := BuildErrorResponse(err)

	switch {
	case statusCode >= http.StatusInternalServerError:
		logger.Error("request failed", "error", err, "code", response.Error.Code)
	case application.IsRetryable(err):
		logger.Warn("retryable request failure",
			"category", application.CategorizeError(err),
			"code", response.Error.Code,
		)
	}

	WriteJSON(w, statusCode, response, logger)
}
