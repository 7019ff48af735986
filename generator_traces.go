package main

import (
	"context"
	"fmt"
	"path"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var traceEndpoints = []string{"/api/users", "/api/products", "/api/orders", "/api/payments", "/api/inventory"}
var traceMethods = []string{"GET", "POST", "PUT", "DELETE"}

const (
	traceErrorRate    = 0.1
	traceErrorMessage = "Random simulated error"
)

// TraceGenerator simulates API requests: each one is a root span with a
// single db.query child.
type TraceGenerator struct {
	sender Sender
	count  int
	rng    Rng
	log    Logger
	sleep  sleeper
}

// make sure it implements Generator
var _ Generator = (*TraceGenerator)(nil)

func NewTraceGenerator(sender Sender, count int, rng Rng, log Logger) *TraceGenerator {
	return &TraceGenerator{
		sender: sender,
		count:  count,
		rng:    rng,
		log:    log,
		sleep:  time.Sleep,
	}
}

func (t *TraceGenerator) Name() string {
	return "Traces"
}

func (t *TraceGenerator) Generate(ctx context.Context) {
	for i := 0; i < t.count; i++ {
		t.generateRequest(ctx)
	}
	t.log.Debug("generated %d traces", t.count)
}

func (t *TraceGenerator) generateRequest(ctx context.Context) {
	endpoint := t.rng.Choice(traceEndpoints)
	method := t.rng.Choice(traceMethods)

	root := t.sender.StartTrace(ctx, fmt.Sprintf("%s %s", method, endpoint))
	root.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", "https://api.example.com"+endpoint),
		attribute.Int("http.status_code", StatusCodes.Sample(t.rng)),
		attribute.String("user.id", t.rng.UUID()),
		attribute.String("client.ip", t.rng.IPv4()),
	)
	t.sleep(t.rng.Duration(10*time.Millisecond, 500*time.Millisecond))

	query := root.StartChild("db.query")
	query.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.statement", fmt.Sprintf("SELECT * FROM %s WHERE id = $1", path.Base(endpoint))),
	)
	t.sleep(t.rng.Duration(5*time.Millisecond, 100*time.Millisecond))
	query.Send()

	if t.rng.BoolWithProb(traceErrorRate) {
		root.SetStatus(codes.Error, traceErrorMessage)
		root.SetAttributes(attribute.Bool("error", true))
	} else {
		root.SetStatus(codes.Ok, "")
	}
	root.Send()
}
