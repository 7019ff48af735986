package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	"google.golang.org/grpc/credentials"
)

// make sure it implements LogSink
var _ LogSink = (*LogSinkOTLP)(nil)

var severities = map[string]otellog.Severity{
	LevelDebug: otellog.SeverityDebug,
	LevelInfo:  otellog.SeverityInfo,
	LevelWarn:  otellog.SeverityWarn,
	LevelError: otellog.SeverityError,
}

// LogSinkOTLP sends log lines to the collector as OTLP log records instead
// of going to Loki directly. Export happens in the background, so failures
// reach the otel error handler rather than Push.
type LogSinkOTLP struct {
	logger   otellog.Logger
	provider *sdklog.LoggerProvider
	now      func() time.Time
}

func NewLogSinkOTLP(ctx context.Context, opts *Options, res *resource.Resource) (*LogSinkOTLP, error) {
	exporter, err := newOTLPLogExporter(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failure configuring otel log exporter: %w", err)
	}
	return newLogSinkOTLP(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	), nil
}

func newLogSinkOTLP(lpOpts ...sdklog.LoggerProviderOption) *LogSinkOTLP {
	lp := sdklog.NewLoggerProvider(lpOpts...)
	return &LogSinkOTLP{
		logger:   lp.Logger(ResourceLibrary, otellog.WithInstrumentationVersion(ResourceVersion)),
		provider: lp,
		now:      time.Now,
	}
}

func (o *LogSinkOTLP) Push(ctx context.Context, streams []LogStream) error {
	observed := o.now()
	for _, s := range streams {
		attrs := []otellog.KeyValue{
			otellog.String("service", s.Labels.Service),
			otellog.String("level", s.Labels.Level),
			otellog.String("environment", s.Labels.Environment),
		}
		for _, v := range s.Values {
			var rec otellog.Record
			rec.SetTimestamp(v.Timestamp)
			rec.SetObservedTimestamp(observed)
			rec.SetSeverity(severities[s.Labels.Level])
			rec.SetSeverityText(s.Labels.Level)
			rec.SetBody(otellog.StringValue(v.Message))
			rec.AddAttributes(attrs...)
			o.logger.Emit(ctx, rec)
		}
	}
	return nil
}

func (o *LogSinkOTLP) Close(ctx context.Context) error {
	return o.provider.Shutdown(ctx)
}

func newOTLPLogExporter(ctx context.Context, opts *Options) (sdklog.Exporter, error) {
	switch opts.Output.Protocol {
	case "http":
		options := []otlploghttp.Option{
			otlploghttp.WithEndpoint(opts.apihost.Host),
			otlploghttp.WithHeaders(otlpHeaders(opts)),
			otlploghttp.WithCompression(otlploghttp.GzipCompression),
		}
		if opts.isInsecure() {
			options = append(options, otlploghttp.WithInsecure())
		} else {
			options = append(options, otlploghttp.WithTLSClientConfig(&tls.Config{}))
		}
		return otlploghttp.New(ctx, options...)
	case "grpc":
		options := []otlploggrpc.Option{
			otlploggrpc.WithEndpoint(opts.apihost.Host),
			otlploggrpc.WithHeaders(otlpHeaders(opts)),
			otlploggrpc.WithCompressor("gzip"),
		}
		if opts.isInsecure() {
			options = append(options, otlploggrpc.WithInsecure())
		} else {
			options = append(options, otlploggrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
		}
		return otlploggrpc.New(ctx, options...)
	default:
		return nil, fmt.Errorf("unknown protocol: %s", opts.Output.Protocol)
	}
}
