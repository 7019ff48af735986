package main

import (
	"context"
	"time"
)

// A Generator produces one batch of a single kind of telemetry each time
// Generate is called. Generate blocks until the batch has been handed to
// its pipeline and never fails the cycle; delivery problems are logged.
type Generator interface {
	Name() string
	Generate(ctx context.Context)
}

// sleeper is how generators simulate work; tests swap in a no-op.
type sleeper func(time.Duration)

// buildGenerators returns the enabled generators in the order the driver
// runs them: traces, metrics, logs.
func buildGenerators(log Logger, opts *Options, em *Emitter, seed string) []Generator {
	var gens []Generator
	if !opts.Signals.NoTraces {
		gens = append(gens, NewTraceGenerator(em.Sender, opts.Quantity.Traces, NewRng(seed+"/traces"), log))
	}
	if !opts.Signals.NoMetrics {
		gens = append(gens, NewMetricGenerator(em.Instruments, NewRng(seed+"/metrics"), log))
	}
	if !opts.Signals.NoLogs {
		gens = append(gens, NewLogGenerator(em.Logs, opts.Quantity.Logs, opts.Telemetry.Environment, NewRng(seed+"/logs"), log))
	}
	return gens
}
