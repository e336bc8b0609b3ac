// Package metrics records payment and idempotency instruments through the
// OpenTelemetry metric API.
package metrics

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/DanielPopoola/payment-gateway"

type PaymentMetrics struct {
	processed   metric.Int64Counter
	authorized  metric.Int64Counter
	declined    metric.Int64Counter
	rejected    metric.Int64Counter
	bankErrors  metric.Int64Counter
	replays     metric.Int64Counter
	duration    metric.Float64Histogram
	bankLatency metric.Float64Histogram
}

func NewPaymentMetrics(provider metric.MeterProvider) (*PaymentMetrics, error) {
	meter := provider.Meter(meterName)
	m := &PaymentMetrics{}

	var errs []error
	counter := func(name, description string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit("{payment}"))
		errs = append(errs, err)
		return c
	}
	histogram := func(name, description string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithDescription(description), metric.WithUnit("ms"))
		errs = append(errs, err)
		return h
	}

	m.processed = counter("payments_processed_total", "Payments that reached a bank decision")
	m.authorized = counter("payments_authorized_total", "Payments authorized by the bank")
	m.declined = counter("payments_declined_total", "Payments declined by the bank")
	m.rejected = counter("payments_rejected_total", "Payments rejected before a bank decision")
	m.bankErrors = counter("bank_errors_total", "Bank calls that failed")
	m.replays = counter("idempotent_replays_total", "Responses replayed from the idempotency cache")
	m.duration = histogram("payment_processing_duration_ms", "End-to-end payment processing time")
	m.bankLatency = histogram("bank_request_latency_ms", "Acquiring bank round-trip time")

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

func currencyAttr(currency string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("currency", currency))
}

func (m *PaymentMetrics) RecordProcessed(ctx context.Context, currency string) {
	m.processed.Add(ctx, 1, currencyAttr(currency))
}

func (m *PaymentMetrics) RecordAuthorized(ctx context.Context, currency string) {
	m.authorized.Add(ctx, 1, currencyAttr(currency))
}

func (m *PaymentMetrics) RecordDeclined(ctx context.Context, currency string) {
	m.declined.Add(ctx, 1, currencyAttr(currency))
}

func (m *PaymentMetrics) RecordRejected(ctx context.Context, reason string) {
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *PaymentMetrics) RecordBankError(ctx context.Context) {
	m.bankErrors.Add(ctx, 1)
}

func (m *PaymentMetrics) RecordIdempotentReplay(ctx context.Context) {
	m.replays.Add(ctx, 1)
}

func (m *PaymentMetrics) RecordProcessingDuration(ctx context.Context, d time.Duration, currency, status string) {
	m.duration.Record(ctx, milliseconds(d), metric.WithAttributes(
		attribute.String("currency", currency),
		attribute.String("status", status),
	))
}

func (m *PaymentMetrics) RecordBankLatency(ctx context.Context, d time.Duration, success bool) {
	m.bankLatency.Record(ctx, milliseconds(d), metric.WithAttributes(attribute.Bool("success", success)))
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
