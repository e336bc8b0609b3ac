package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// NewMeterProvider builds the process meter provider. The returned shutdown
// flushes pending measurements and must be called on exit.
func NewMeterProvider(exporter string, interval time.Duration) (metric.MeterProvider, func(context.Context) error, error) {
	switch exporter {
	case ExporterStdout:
		exp, err := stdoutmetric.New()
		if err != nil {
			return nil, nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
		provider := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))),
		)
		return provider, provider.Shutdown, nil
	case ExporterNone, "":
		return noop.NewMeterProvider(), func(context.Context) error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown metrics exporter %q", exporter)
	}
}
