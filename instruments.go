package main

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequests          = "http_requests_total"
	metricErrors            = "http_errors_total"
	metricRequestDuration   = "http_request_duration_seconds"
	metricActiveConnections = "active_connections"
)

// Instruments are created once per process. Creating them again on every
// batch would register duplicates with the meter.
type Instruments struct {
	Requests          metric.Int64Counter
	Errors            metric.Int64Counter
	Latency           metric.Float64Histogram
	ActiveConnections metric.Int64ObservableGauge
}

// NewInstruments registers the request instruments and the connections
// gauge on meter. The gauge callback runs on the reader's goroutine, so it
// gets rng to itself.
func NewInstruments(meter metric.Meter, rng Rng) (*Instruments, error) {
	var (
		inst Instruments
		err  error
	)
	inst.Requests, err = meter.Int64Counter(metricRequests,
		metric.WithDescription("Total HTTP requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", metricRequests, err)
	}
	inst.Errors, err = meter.Int64Counter(metricErrors,
		metric.WithDescription("Total HTTP errors"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", metricErrors, err)
	}
	inst.Latency, err = meter.Float64Histogram(metricRequestDuration,
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", metricRequestDuration, err)
	}

	connections := &lockedRng{rng: rng}
	inst.ActiveConnections, err = meter.Int64ObservableGauge(metricActiveConnections,
		metric.WithDescription("Number of active connections"),
		metric.WithUnit("1"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(connections.Int(10, 100)))
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", metricActiveConnections, err)
	}
	return &inst, nil
}
