package main

import (
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// NewSenderPrint writes every span to stdout as it ends. It shares the otel
// span handling, only the exporter differs.
func NewSenderPrint(res *resource.Resource) (*SenderOTel, error) {
	return newSenderPrint(os.Stdout, res)
}

func newSenderPrint(w io.Writer, res *resource.Resource) (*SenderOTel, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("failure configuring stdout trace exporter: %w", err)
	}
	// synchronous, so the output interleaves with the progress lines
	return newSenderOTel(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	), nil
}
