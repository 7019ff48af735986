package main

import (
	"context"
	"crypto/tls"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/encoding/gzip"
)

// make sure it implements Sender
var _ Sender = (*SenderOTel)(nil)

type otelSpan struct {
	ctx    context.Context
	span   trace.Span
	tracer trace.Tracer
}

func (s *otelSpan) StartChild(name string) Span {
	ctx, span := s.tracer.Start(s.ctx, name, trace.WithSpanKind(trace.SpanKindClient))
	return &otelSpan{ctx: ctx, span: span, tracer: s.tracer}
}

func (s *otelSpan) SetAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

func (s *otelSpan) SetStatus(code codes.Code, description string) {
	s.span.SetStatus(code, description)
}

func (s *otelSpan) Send() {
	s.span.End()
}

type SenderOTel struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
}

// NewSenderOTel exports spans over OTLP, using grpc or http depending on
// the protocol option.
func NewSenderOTel(ctx context.Context, opts *Options, res *resource.Resource) (*SenderOTel, error) {
	var client otlptrace.Client
	switch opts.Output.Protocol {
	case "grpc":
		client = setupOTELGRPCClient(opts)
	case "http":
		client = setupOTELHTTPClient(opts)
	default:
		return nil, fmt.Errorf("unknown protocol: %s", opts.Output.Protocol)
	}

	exporter, err := otlptrace.New(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failure configuring otel trace exporter: %w", err)
	}

	var bspOpts []sdktrace.BatchSpanProcessorOption
	if opts.Output.BatchTimeout != 0 {
		bspOpts = append(bspOpts, sdktrace.WithBatchTimeout(opts.Output.BatchTimeout))
	}
	if opts.Output.MaxQueueSize != 0 {
		bspOpts = append(bspOpts, sdktrace.WithMaxQueueSize(opts.Output.MaxQueueSize))
	}
	if opts.Output.MaxExportBatchSize != 0 {
		bspOpts = append(bspOpts, sdktrace.WithMaxExportBatchSize(opts.Output.MaxExportBatchSize))
	}
	if opts.Output.ExportTimeout != 0 {
		bspOpts = append(bspOpts, sdktrace.WithExportTimeout(opts.Output.ExportTimeout))
	}

	return newSenderOTel(
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter, bspOpts...)),
		sdktrace.WithResource(res),
	), nil
}

// newSenderOTel builds a sender around its own TracerProvider. The provider
// is never installed globally.
func newSenderOTel(tpOpts ...sdktrace.TracerProviderOption) *SenderOTel {
	tp := sdktrace.NewTracerProvider(tpOpts...)
	return &SenderOTel{
		tracer:   tp.Tracer(ResourceLibrary, trace.WithInstrumentationVersion(ResourceVersion)),
		provider: tp,
	}
}

func (t *SenderOTel) Close(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}

func (t *SenderOTel) StartTrace(ctx context.Context, name string) Span {
	ctx, root := t.tracer.Start(ctx, name,
		trace.WithNewRoot(),
		trace.WithSpanKind(trace.SpanKindServer),
	)
	return &otelSpan{ctx: ctx, span: root, tracer: t.tracer}
}

// otlpHeaders carries the honeycomb API key when one is configured; plain
// collectors don't need any headers.
func otlpHeaders(opts *Options) map[string]string {
	if opts.Telemetry.APIKey == "" {
		return nil
	}
	return map[string]string{
		"x-honeycomb-team": opts.Telemetry.APIKey,
	}
}

func setupOTELHTTPClient(opts *Options) otlptrace.Client {
	options := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(opts.apihost.Host),
		otlptracehttp.WithHeaders(otlpHeaders(opts)),
		otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
	}
	if opts.isInsecure() {
		options = append(options, otlptracehttp.WithInsecure())
	} else {
		options = append(options, otlptracehttp.WithTLSClientConfig(&tls.Config{}))
	}
	return otlptracehttp.NewClient(
		options...,
	)
}

func setupOTELGRPCClient(opts *Options) otlptrace.Client {
	options := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.apihost.Host),
		otlptracegrpc.WithHeaders(otlpHeaders(opts)),
		otlptracegrpc.WithCompressor(gzip.Name),
	}
	if opts.isInsecure() {
		options = append(options, otlptracegrpc.WithInsecure())
	} else {
		options = append(options, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
	}
	return otlptracegrpc.NewClient(
		options...,
	)
}
