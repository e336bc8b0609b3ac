package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/DanielPopoola/payment-gateway/internal/application"
	"github.com/DanielPopoola/payment-gateway/internal/application/idempotency"
	"github.com/DanielPopoola/payment-gateway/internal/domain"
	"github.com/DanielPopoola/payment-gateway/internal/interfaces/rest"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// CreatePayment handles POST /api/payments. The work runs under the
// merchant-scoped idempotency key; repeats get the recorded bytes back.
func (h *Handlers) CreatePayment(w http.ResponseWriter, r *http.Request) {
	merchant, ok := rest.MerchantFromContext(r.Context())
	if !ok {
		rest.WriteError(w, application.NewUnauthorizedError(), h.logger)
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if key == "" {
		rest.WriteError(w, application.NewMissingIdempotencyKeyError(), h.logger)
		return
	}
	if len(key) > h.maxKeyLength {
		rest.WriteError(w, application.NewInvalidIdempotencyKeyError(h.maxKeyLength), h.logger)
		return
	}

	var req rest.PaymentRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	cmd := application.PaymentCommand{
		CardNumber:  req.CardNumber,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		Cvv:         req.Cvv,
		Currency:    req.Currency,
		Amount:      req.Amount,
	}

	result, err := h.coordinator.Execute(r.Context(), scopedKey(merchant.ID, key), func(ctx context.Context) (idempotency.Response, error) {
		return h.processPayment(ctx, merchant.ID, cmd)
	})
	if err != nil {
		if errors.Is(err, idempotency.ErrRequestInProgress) {
			rest.WriteError(w, application.NewRequestInProgressError(), h.logger)
			return
		}
		rest.WriteError(w, err, h.logger)
		return
	}

	writeRecorded(w, result)
}

// processPayment turns the service outcome into the response to record.
// Rejections are recorded like successes; anything else is left unrecorded
// so a retry runs again.
func (h *Handlers) processPayment(ctx context.Context, merchantID string, cmd application.PaymentCommand) (idempotency.Response, error) {
	payment, err := h.payments.Process(ctx, merchantID, cmd)
	if err != nil {
		if _, ok := domain.AsRejection(err); !ok {
			return idempotency.Response{}, err
		}
		status, body := rest.BuildErrorResponse(err)
		return recordedJSON(status, body, nil)
	}

	body := rest.SuccessResponse[rest.Payment]{Success: true, Data: rest.ToAPIPayment(payment)}
	return recordedJSON(http.StatusCreated, body, map[string]string{
		"Location": paymentsPath + payment.ID,
	})
}

// GetPayment handles GET /api/payments/{id}. Another merchant's payment is
// reported as not found.
func (h *Handlers) GetPayment(w http.ResponseWriter, r *http.Request) {
	merchant, ok := rest.MerchantFromContext(r.Context())
	if !ok {
		rest.WriteError(w, application.NewUnauthorizedError(), h.logger)
		return
	}

	payment, err := h.payments.Get(r.Context(), chi.URLParam(r, "id"), merchant.ID)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.SuccessResponse[rest.Payment]{
		Success: true,
		Data:    rest.ToAPIPayment(payment),
	}, h.logger)
}

func scopedKey(merchantID, key string) string {
	return merchantID + ":" + key
}

func recordedJSON(status int, body any, headers map[string]string) (idempotency.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return idempotency.Response{}, fmt.Errorf("encode response: %w", err)
	}
	return idempotency.Response{
		StatusCode:  status,
		Body:        payload,
		ContentType: rest.ContentTypeJSON,
		Headers:     headers,
	}, nil
}

func writeRecorded(w http.ResponseWriter, result idempotency.Result) {
	resp := result.Response
	for name, value := range resp.Headers {
		w.Header().Set(name, value)
	}
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	if result.Replayed {
		w.Header().Set(IdempotentReplayHeader, "true")
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}
