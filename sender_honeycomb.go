package main

import (
	"context"

	"github.com/honeycombio/beeline-go"
	"github.com/honeycombio/beeline-go/trace"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// make sure it implements Sender
var _ Sender = (*SenderHoneycomb)(nil)

// beelineSpan keeps the context its span was started in, so children hang off
// this span and never whatever happens to be current.
type beelineSpan struct {
	ctx  context.Context
	span *trace.Span
}

func (s *beelineSpan) StartChild(name string) Span {
	ctx, span := beeline.StartSpan(s.ctx, name)
	return &beelineSpan{ctx: ctx, span: span}
}

func (s *beelineSpan) SetAttributes(attrs ...attribute.KeyValue) {
	for _, kv := range attrs {
		s.span.AddField(string(kv.Key), kv.Value.AsInterface())
	}
}

func (s *beelineSpan) SetStatus(code codes.Code, description string) {
	s.span.AddField("status_code", code.String())
	if code == codes.Error {
		s.span.AddField("status_message", description)
	}
}

func (s *beelineSpan) Send() {
	s.span.Send()
}

// SenderHoneycomb sends spans straight to honeycomb as beeline events,
// bypassing the collector.
type SenderHoneycomb struct{}

func NewSenderHoneycomb(opts *Options) *SenderHoneycomb {
	beeline.Init(beeline.Config{
		WriteKey:    opts.Telemetry.APIKey,
		APIHost:     opts.apihost.String(),
		ServiceName: opts.Telemetry.Service,
		Debug:       opts.Global.LogLevel == "debug",
	})
	return &SenderHoneycomb{}
}

func (t *SenderHoneycomb) Close(ctx context.Context) error {
	beeline.Close()
	return nil
}

func (t *SenderHoneycomb) StartTrace(ctx context.Context, name string) Span {
	ctx, root := beeline.StartSpan(ctx, name)
	return &beelineSpan{ctx: ctx, span: root}
}
