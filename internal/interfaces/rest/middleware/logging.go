package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DanielPopoola/payment-gateway/internal/interfaces/rest"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const CorrelationIDHeader = "X-Correlation-ID"

// Logging writes one line per request and echoes the correlation id,
// falling back to the request id chi assigned.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			correlationID := r.Header.Get(CorrelationIDHeader)
			if correlationID == "" {
				correlationID = chimw.GetReqID(r.Context())
			}
			if correlationID != "" {
				w.Header().Set(CorrelationIDHeader, correlationID)
			}

			info := &rest.RequestInfo{}
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(rest.WithRequestInfo(r.Context(), info)))

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"correlation_id", correlationID,
			}
			if merchantID := info.MerchantID(); merchantID != "" {
				attrs = append(attrs, "merchant_id", merchantID)
			}

			level := slog.LevelInfo
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(r.Context(), level, "http request", attrs...)
		})
	}
}
