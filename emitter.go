package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc/credentials"
)

// Emitter is everything the generators emit through. It is built once in
// main and handed to each generator; nothing is installed globally.
type Emitter struct {
	Sender      Sender
	Meter       metric.Meter
	Instruments *Instruments
	Logs        LogSink

	meters *sdkmetric.MeterProvider
}

func newResource(service, environment string) *resource.Resource {
	return resource.NewWithAttributes(semconv.SchemaURL,
		semconv.ServiceName(service),
		attribute.String("environment", environment),
	)
}

// NewEmitter builds the trace, metric and log pipelines selected by opts.
// Hosts must already be resolved. Exporters connect lazily, so an
// unreachable collector shows up later as export warnings; only a broken
// configuration fails here.
func NewEmitter(ctx context.Context, log Logger, opts *Options) (*Emitter, error) {
	res := newResource(opts.Telemetry.Service, opts.Telemetry.Environment)

	sender, err := newSender(ctx, log, opts, res)
	if err != nil {
		return nil, err
	}

	meters, err := newMeterProvider(ctx, opts, res)
	if err != nil {
		return nil, errors.Join(err, sender.Close(ctx))
	}
	meter := meters.Meter(ResourceLibrary, metric.WithInstrumentationVersion(ResourceVersion))

	inst, err := NewInstruments(meter, NewRng(opts.Global.Seed+"/connections"))
	if err != nil {
		return nil, errors.Join(err, sender.Close(ctx), meters.Shutdown(ctx))
	}

	logs, err := newLogSink(ctx, opts, res)
	if err != nil {
		return nil, errors.Join(err, sender.Close(ctx), meters.Shutdown(ctx))
	}

	return &Emitter{
		Sender:      sender,
		Meter:       meter,
		Instruments: inst,
		Logs:        logs,
		meters:      meters,
	}, nil
}

// Shutdown flushes whatever the pipelines still hold. Errors from each
// pipeline are joined; none of them stop the others from closing.
func (e *Emitter) Shutdown(ctx context.Context) error {
	return errors.Join(
		e.Sender.Close(ctx),
		e.meters.Shutdown(ctx),
		e.Logs.Close(ctx),
	)
}

func newMeterProvider(ctx context.Context, opts *Options, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	var exporter sdkmetric.Exporter
	var err error
	switch opts.Output.Sender {
	case "dummy":
		return sdkmetric.NewMeterProvider(sdkmetric.WithResource(res)), nil
	case "print":
		exporter, err = stdoutmetric.New(
			stdoutmetric.WithWriter(os.Stdout),
			stdoutmetric.WithPrettyPrint(),
		)
	default:
		exporter, err = newOTLPMetricExporter(ctx, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("failure configuring metric exporter: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter,
		sdkmetric.WithInterval(opts.Output.MetricInterval),
	)
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	), nil
}

func newOTLPMetricExporter(ctx context.Context, opts *Options) (sdkmetric.Exporter, error) {
	switch opts.Output.Protocol {
	case "http":
		options := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(opts.apihost.Host),
			otlpmetrichttp.WithHeaders(otlpHeaders(opts)),
			otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression),
		}
		if opts.isInsecure() {
			options = append(options, otlpmetrichttp.WithInsecure())
		} else {
			options = append(options, otlpmetrichttp.WithTLSClientConfig(&tls.Config{}))
		}
		return otlpmetrichttp.New(ctx, options...)
	case "grpc":
		options := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(opts.apihost.Host),
			otlpmetricgrpc.WithHeaders(otlpHeaders(opts)),
			otlpmetricgrpc.WithCompressor("gzip"),
		}
		if opts.isInsecure() {
			options = append(options, otlpmetricgrpc.WithInsecure())
		} else {
			options = append(options, otlpmetricgrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
		}
		return otlpmetricgrpc.New(ctx, options...)
	default:
		return nil, fmt.Errorf("unknown protocol: %s", opts.Output.Protocol)
	}
}
