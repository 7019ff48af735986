package main

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/resource"
)

// A Span is a span under construction. Children are started from their
// parent handle, so parentage never depends on what's in a context.
// Send finalizes the span and makes it eligible for export.
type Span interface {
	StartChild(name string) Span
	SetAttributes(attrs ...attribute.KeyValue)
	SetStatus(code codes.Code, description string)
	Send()
}

// A Sender starts root spans and owns whatever pipeline exports them.
type Sender interface {
	StartTrace(ctx context.Context, name string) Span
	Close(ctx context.Context) error
}

func newSender(ctx context.Context, log Logger, opts *Options, res *resource.Resource) (Sender, error) {
	switch opts.Output.Sender {
	case "dummy":
		return NewSenderDummy(log), nil
	case "print":
		return NewSenderPrint(res)
	case "honeycomb":
		return NewSenderHoneycomb(opts), nil
	case "otel", "":
		return NewSenderOTel(ctx, opts, res)
	default:
		return nil, fmt.Errorf("unknown sender: %s", opts.Output.Sender)
	}
}
