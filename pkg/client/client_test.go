package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DanielPopoola/payment-gateway/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const paymentJSON = `{"success":true,"data":{"id":"p-1","status":"Authorized","card_number_last_four":"8877","expiry_month":4,"expiry_year":2027,"currency":"GBP","amount":100,"created_at":"2026-06-15T10:00:00Z"}}`

func TestProcessPayment(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/payments", r.URL.Path)
		assert.Equal(t, "merchant-key-1", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "idem-1", r.Header.Get("Idempotency-Key"))

		var body client.PaymentRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2222405343248877", body.CardNumber)

		w.Header().Set("Location", "/api/payments/p-1")
		if calls > 1 {
			w.Header().Set("X-Idempotent-Replay", "true")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(paymentJSON))
	}))
	defer server.Close()

	c := client.New(server.URL, "merchant-key-1")
	req := client.PaymentRequest{CardNumber: "2222405343248877", ExpiryMonth: 4, ExpiryYear: 2027, Currency: "GBP", Amount: 100, Cvv: "123"}

	first, err := c.ProcessPayment(context.Background(), req, "idem-1")
	require.NoError(t, err)
	assert.False(t, first.WasIdempotentReplay)
	assert.True(t, first.Payment.IsAuthorized())
	assert.Equal(t, "8877", first.Payment.CardNumberLastFour)
	assert.Equal(t, "/api/payments/p-1", first.Location)

	second, err := c.ProcessPayment(context.Background(), req, "idem-1")
	require.NoError(t, err)
	assert.True(t, second.WasIdempotentReplay)
	assert.Equal(t, first.Payment, second.Payment)
}

func TestProcessPayment_RequiresKey(t *testing.T) {
	c := client.New("http://unused.invalid", "k")
	_, err := c.ProcessPayment(context.Background(), client.PaymentRequest{}, "")
	assert.Error(t, err)
}

func TestAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/payments":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"error":{"code":"VALIDATION_FAILED","message":"The request was rejected due to validation errors.","details":{"Cvv":["Cvv must be 3-4 digits"]}}}`))
		case "/api/payments/busy":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"success":false,"error":{"code":"REQUEST_IN_PROGRESS","message":"busy"}}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		}
	}))
	defer server.Close()

	c := client.New(server.URL, "k")
	ctx := context.Background()

	_, err := c.ProcessPayment(ctx, client.PaymentRequest{}, client.NewIdempotencyKey())
	apiErr, ok := client.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_FAILED", apiErr.Code)
	assert.Equal(t, []string{"Cvv must be 3-4 digits"}, apiErr.Details["Cvv"])
	assert.False(t, apiErr.IsRetryable())

	_, err = c.GetPayment(ctx, "busy")
	apiErr, ok = client.AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsRetryable())

	_, err = c.GetPayment(ctx, "other")
	apiErr, ok = client.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "UNEXPECTED_RESPONSE", apiErr.Code)
}
