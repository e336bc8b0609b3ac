package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DanielPopoola/payment-gateway/internal/application"
	"github.com/DanielPopoola/payment-gateway/internal/interfaces/rest/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the payment API behind API-key auth. /healthz stays open.
func NewRouter(
	h *Handlers,
	merchants application.MerchantDirectory,
	requestTimeout time.Duration,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", h.Healthz)

	r.Route("/api/payments", func(r chi.Router) {
		r.Use(middleware.Auth(merchants, logger))
		r.Post("/", h.CreatePayment)
		r.Get("/{id}", h.GetPayment)
	})

	return r
}
