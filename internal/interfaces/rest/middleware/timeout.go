package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout puts a deadline on the request context and leaves the response to
// the handler. A payment whose bank call runs past the deadline is answered,
// and recorded for replay, as an unavailable bank, so the client always sees
// the same response a retry with its idempotency key would return.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
