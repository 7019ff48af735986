package main

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var metricEndpoints = []string{"/api/users", "/api/products", "/api/orders"}
var metricMethods = []string{"GET", "POST", "PUT"}

// MetricGenerator records a random number of simulated requests on the
// shared instruments. It can only be built from instruments that already
// exist.
type MetricGenerator struct {
	inst *Instruments
	rng  Rng
	log  Logger
}

// make sure it implements Generator
var _ Generator = (*MetricGenerator)(nil)

func NewMetricGenerator(inst *Instruments, rng Rng, log Logger) *MetricGenerator {
	return &MetricGenerator{inst: inst, rng: rng, log: log}
}

func (m *MetricGenerator) Name() string {
	return "Metrics"
}

func (m *MetricGenerator) Generate(ctx context.Context) {
	n := m.generate(ctx)
	m.log.Debug("recorded %d requests", n)
}

// generate returns the number of observations it made.
func (m *MetricGenerator) generate(ctx context.Context) int {
	n := m.rng.Int(10, 30)
	for i := 0; i < n; i++ {
		status := StatusCodes.Sample(m.rng)
		attrs := metric.WithAttributes(
			attribute.String("endpoint", m.rng.Choice(metricEndpoints)),
			attribute.String("method", m.rng.Choice(metricMethods)),
			attribute.String("status", strconv.Itoa(status)),
		)
		m.inst.Requests.Add(ctx, 1, attrs)
		if status >= 400 {
			m.inst.Errors.Add(ctx, 1, attrs)
		}
		m.inst.Latency.Record(ctx, m.rng.Float(0.01, 2.0), attrs)
	}
	return n
}
