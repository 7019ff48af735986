package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"github.com/honeycombio/mocktelemetry/internal/sink"
	collectorlogs "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	collectormetrics "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	collectortrace "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	_ "google.golang.org/grpc/encoding/gzip"
)

// Options defines the command line arguments
type Options struct {
	Port int `long:"port" description:"Port number to listen on for grpc" default:"4317"`
}

const (
	// Default values for gRPC configuration
	DefaultMaxSendMsgSize        = 4 * 1024 * 1024  // 4 MB
	DefaultMaxRecvMsgSize        = 15 * 1024 * 1024 // 15 MB
	DefaultMaxConnectionIdle     = 30 * time.Minute
	DefaultMaxConnectionAge      = time.Hour
	DefaultMaxConnectionAgeGrace = 5 * time.Minute
	DefaultKeepAlive             = 2 * time.Minute
	DefaultKeepAliveTimeout      = 20 * time.Second
)

// Receiver implements the OTLP trace, metrics and logs services, counting
// everything into one tally.
type Receiver struct {
	tally *sink.Tally
}

type traceService struct {
	collectortrace.UnimplementedTraceServiceServer
	*Receiver
}

func (s traceService) Export(ctx context.Context, req *collectortrace.ExportTraceServiceRequest) (*collectortrace.ExportTraceServiceResponse, error) {
	s.tally.AddTraces(req)
	return &collectortrace.ExportTraceServiceResponse{}, nil
}

type metricsService struct {
	collectormetrics.UnimplementedMetricsServiceServer
	*Receiver
}

func (s metricsService) Export(ctx context.Context, req *collectormetrics.ExportMetricsServiceRequest) (*collectormetrics.ExportMetricsServiceResponse, error) {
	s.tally.AddMetrics(req)
	return &collectormetrics.ExportMetricsServiceResponse{}, nil
}

type logsService struct {
	collectorlogs.UnimplementedLogsServiceServer
	*Receiver
}

func (s logsService) Export(ctx context.Context, req *collectorlogs.ExportLogsServiceRequest) (*collectorlogs.ExportLogsServiceResponse, error) {
	s.tally.AddLogs(req)
	return &collectorlogs.ExportLogsServiceResponse{}, nil
}

// register attaches all three services to srv.
func (r *Receiver) register(srv *grpc.Server) {
	collectortrace.RegisterTraceServiceServer(srv, traceService{Receiver: r})
	collectormetrics.RegisterMetricsServiceServer(srv, metricsService{Receiver: r})
	collectorlogs.RegisterLogsServiceServer(srv, logsService{Receiver: r})
}

// initGRPCReceiver initializes and starts a receiver on localhost with the specified options
func initGRPCReceiver(ctx context.Context, log *zap.SugaredLogger, opts Options) (*Receiver, error) {
	addr := fmt.Sprintf("localhost:%d", opts.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	serverOpts := []grpc.ServerOption{
		grpc.MaxSendMsgSize(DefaultMaxSendMsgSize),
		grpc.MaxRecvMsgSize(DefaultMaxRecvMsgSize),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     DefaultMaxConnectionIdle,
			MaxConnectionAge:      DefaultMaxConnectionAge,
			MaxConnectionAgeGrace: DefaultMaxConnectionAgeGrace,
			Time:                  DefaultKeepAlive,
			Timeout:               DefaultKeepAliveTimeout,
		}),
	}

	srv := grpc.NewServer(serverOpts...)

	receiver := &Receiver{tally: sink.NewTally(log)}
	receiver.register(srv)

	// Start the server in a separate goroutine
	go func() {
		log.Infof("gRPC server listening on %s", addr)
		if err := srv.Serve(lis); err != nil {
			log.Errorf("gRPC server error: %v", err)
		}
	}()

	// Set up graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		log.Info("Stopping gRPC server...")
		srv.GracefulStop()
	}()

	return receiver, nil
}

func main() {
	var opts Options

	// Parse command line arguments
	parser := flags.NewParser(&opts, flags.Default)
	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	log.Infof("Starting sink server on port %d", opts.Port)

	// Create context that listens for interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	receiver, err := initGRPCReceiver(ctx, log, opts)
	if err != nil {
		log.Fatalf("Failed to start gRPC receiver: %v", err)
	}

	// Wait for termination signal
	<-ctx.Done()

	fmt.Printf("\n%s received this session\n", receiver.tally.Counts())

	log.Info("Shutting down gracefully...")
}
