// Package events publishes payment decisions to Kafka for downstream
// consumers such as ledgers and fraud scoring.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/payment-gateway/internal/config"
	"github.com/DanielPopoola/payment-gateway/internal/domain"
	"github.com/segmentio/kafka-go"
)

const EventTypePaymentProcessed = "payment.processed"

// PaymentProcessedEvent is the message body. Card data never leaves the
// gateway beyond the last four digits.
type PaymentProcessedEvent struct {
	Type              string    `json:"type"`
	PaymentID         string    `json:"payment_id"`
	MerchantID        string    `json:"merchant_id"`
	Status            string    `json:"status"`
	CardLastFour      string    `json:"card_last_four"`
	Currency          string    `json:"currency"`
	Amount            int64     `json:"amount"`
	AuthorizationCode *string   `json:"authorization_code,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	OccurredAt        time.Time `json:"occurred_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
	now    func() time.Time
}

// NewKafkaPublisher builds an async writer keyed by merchant, so one
// merchant's events stay ordered within a partition.
func NewKafkaPublisher(cfg config.EventsConfig, logger *slog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		Async:        true,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error(fmt.Sprintf(msg, args...), "component", "kafka")
		}),
	}

	writer.Completion = func(messages []kafka.Message, err error) {
		if err == nil {
			return
		}
		for _, msg := range messages {
			logger.Error("failed to deliver payment event",
				"topic", msg.Topic,
				"key", string(msg.Key),
				"error", err,
			)
		}
	}

	return newKafkaPublisher(writer, logger)
}

func newKafkaPublisher(writer messageWriter, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, logger: logger, now: time.Now}
}

// PaymentProcessed enqueues an event for payment. Failures are logged and
// never reach the caller.
func (p *KafkaPublisher) PaymentProcessed(ctx context.Context, payment *domain.Payment) {
	event := PaymentProcessedEvent{
		Type:              EventTypePaymentProcessed,
		PaymentID:         payment.ID,
		MerchantID:        payment.MerchantID,
		Status:            string(payment.Status),
		CardLastFour:      payment.CardLastFour,
		Currency:          payment.Currency,
		Amount:            payment.Amount,
		AuthorizationCode: payment.AuthorizationCode,
		CreatedAt:         payment.CreatedAt,
		OccurredAt:        p.now().UTC(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to encode payment event", "payment_id", payment.ID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(payment.MerchantID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(EventTypePaymentProcessed)},
		},
	}

	if err := p.writer.WriteMessages(context.WithoutCancel(ctx), msg); err != nil {
		p.logger.Error("failed to publish payment event", "payment_id", payment.ID, "error", err)
	}
}

func (p *KafkaPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		p.logger.Error("failed to close kafka writer", "error", err)
		return fmt.Errorf("close kafka writer: %w", err)
	}
	p.logger.Info("kafka writer closed")
	return nil
}
