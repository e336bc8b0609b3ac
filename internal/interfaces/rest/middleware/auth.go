package middleware

import (
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/payment-gateway/internal/application"
	"github.com/DanielPopoola/payment-gateway/internal/interfaces/rest"
)

const APIKeyHeader = "X-Api-Key"

// Auth resolves the X-Api-Key header to a merchant and stores it in the
// request context. Unknown or missing keys get 401.
func Auth(merchants application.MerchantDirectory, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(APIKeyHeader)
			if apiKey == "" {
				rest.WriteError(w, application.NewUnauthorizedError(), logger)
				return
			}

			merchant, ok := merchants.FindByAPIKey(r.Context(), apiKey)
			if !ok {
				logger.Warn("rejected unknown api key", "path", r.URL.Path)
				rest.WriteError(w, application.NewUnauthorizedError(), logger)
				return
			}

			if info, ok := rest.RequestInfoFromContext(r.Context()); ok {
				info.SetMerchantID(merchant.ID)
			}
			next.ServeHTTP(w, r.WithContext(rest.WithMerchant(r.Context(), merchant)))
		})
	}
}
