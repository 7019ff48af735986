package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/sdk/resource"
)

// ErrLogDelivery wraps every failure to hand a batch of logs to a remote
// endpoint. Callers treat it as a warning.
var ErrLogDelivery = errors.New("log delivery failed")

// A LogSink receives one batch of streams per cycle.
type LogSink interface {
	Push(ctx context.Context, streams []LogStream) error
	Close(ctx context.Context) error
}

func newLogSink(ctx context.Context, opts *Options, res *resource.Resource) (LogSink, error) {
	switch opts.Output.LogSink {
	case "print":
		return NewLogSinkPrint(os.Stdout), nil
	case "otlp":
		return NewLogSinkOTLP(ctx, opts, res)
	case "loki", "":
		return NewLokiSink(opts.lokihost.String()), nil
	default:
		return nil, fmt.Errorf("unknown log sink: %s", opts.Output.LogSink)
	}
}
