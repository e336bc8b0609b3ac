package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DanielPopoola/payment-gateway/internal/domain"
	"github.com/DanielPopoola/payment-gateway/internal/infrastructure/events"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testPayment() *domain.Payment {
	code := "auth-123"
	return &domain.Payment{
		ID:                "pay-1",
		MerchantID:        "merchant-1",
		Status:            domain.StatusAuthorized,
		CardNumber:        "4111111111111111",
		CardLastFour:      "1111",
		Cvv:               "123",
		ExpiryMonth:       12,
		ExpiryYear:        2030,
		Currency:          "USD",
		Amount:            1000,
		AuthorizationCode: &code,
		CreatedAt:         time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestKafkaPublisher_PaymentProcessed(t *testing.T) {
	writer := &fakeWriter{}
	publisher := events.NewKafkaPublisherWithWriter(writer, slog.New(slog.NewTextHandler(io.Discard, nil)))
	publishedAt := time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC)
	publisher.SetClock(func() time.Time { return publishedAt })

	publisher.PaymentProcessed(context.Background(), testPayment())

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "merchant-1", string(msg.Key))
	assert.NotContains(t, string(msg.Value), "4111111111111111")
	assert.NotContains(t, string(msg.Value), `"123"`)

	var event events.PaymentProcessedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, events.EventTypePaymentProcessed, event.Type)
	assert.Equal(t, "pay-1", event.PaymentID)
	assert.Equal(t, "Authorized", event.Status)
	assert.Equal(t, "1111", event.CardLastFour)
	assert.Equal(t, int64(1000), event.Amount)
	assert.Equal(t, "USD", event.Currency)
	require.NotNil(t, event.AuthorizationCode)
	assert.Equal(t, "auth-123", *event.AuthorizationCode)
	assert.True(t, event.CreatedAt.Equal(testPayment().CreatedAt))
	assert.True(t, event.OccurredAt.Equal(publishedAt))

	var fields map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &fields))
	for _, name := range []string{"type", "payment_id", "merchant_id", "status", "card_last_four",
		"currency", "amount", "authorization_code", "created_at", "occurred_at"} {
		assert.Contains(t, fields, name)
	}
}

func TestKafkaPublisher_WriteFailureIsSwallowed(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker down")}
	publisher := events.NewKafkaPublisherWithWriter(writer, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.NotPanics(t, func() {
		publisher.PaymentProcessed(context.Background(), testPayment())
	})
	require.NoError(t, publisher.Close())
	assert.True(t, writer.closed)
}
