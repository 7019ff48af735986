package main

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/goware/urlx"
	"gopkg.in/yaml.v3"
)

var ResourceLibrary = "mocktelemetry"
var ResourceVersion = "dev"

type Options struct {
	Telemetry struct {
		Host        string `long:"host" description:"the url of the OTLP collector that receives traces and metrics (or honeycomb, dogfood, local)" env:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"http://localhost:4317"`
		Insecure    bool   `long:"insecure" description:"use plaintext connections when a host is given without a scheme" yaml:",omitempty"`
		Loki        string `long:"loki" description:"the url of the Loki push endpoint that receives logs" env:"LOKI_ENDPOINT" default:"http://localhost:3100/loki/api/v1/push"`
		Service     string `long:"service" description:"the service name reported on the telemetry resource" default:"mock-telemetry-generator"`
		Environment string `long:"environment" description:"the environment reported on the resource and on log labels" default:"development"`
		APIKey      string `long:"apikey" description:"the honeycomb API key, used by the honeycomb sender(*)" env:"HONEYCOMB_API_KEY" yaml:"-"`
	} `group:"Telemetry Options"`
	Quantity struct {
		Duration int `long:"duration" description:"total time to generate telemetry, in seconds" default:"300"`
		Interval int `long:"interval" description:"time between batches, in seconds" default:"5"`
		Traces   int `long:"traces" description:"the number of traces per batch" default:"5"`
		Logs     int `long:"logs" description:"the number of log lines per batch" default:"10"`
	} `group:"Quantity Options"`
	Signals struct {
		NoTraces  bool `long:"no-traces" description:"disable trace generation" yaml:",omitempty"`
		NoMetrics bool `long:"no-metrics" description:"disable metric generation" yaml:",omitempty"`
		NoLogs    bool `long:"no-logs" description:"disable log generation" yaml:",omitempty"`
	} `group:"Signal Options"`
	Output struct {
		Sender             string        `long:"sender" description:"where traces and metrics go" choice:"otel" choice:"print" choice:"honeycomb" choice:"dummy" default:"otel"`
		Protocol           string        `long:"protocol" description:"for otel and honeycomb, the OTLP protocol to use" choice:"grpc" choice:"http" default:"grpc"`
		LogSink            string        `long:"logsink" description:"where logs go" choice:"loki" choice:"otlp" choice:"print" default:"loki"`
		MetricInterval     time.Duration `long:"metricinterval" description:"how often metrics are exported" default:"10s"`
		MaxQueueSize       int           `long:"maxqueuesize" description:"for otel only, maximum number of spans to queue before dropping" default:"0" yaml:",omitempty"`
		MaxExportBatchSize int           `long:"maxexportbatchsize" description:"for otel only, maximum number of spans to export at once" default:"0" yaml:",omitempty"`
		BatchTimeout       time.Duration `long:"batchtimeout" description:"for otel only, maximum time to wait before sending a batch" default:"0s" yaml:",omitempty"`
		ExportTimeout      time.Duration `long:"exporttimeout" description:"for otel only, maximum time to wait for a batch to be sent" default:"0s" yaml:",omitempty"`
	} `group:"Output Options"`
	Global struct {
		LogLevel  string `long:"loglevel" description:"level of logging" choice:"debug" choice:"info" choice:"warn" choice:"error" default:"info"`
		DebugPort int    `long:"debugport" description:"port to listen on for pprof(*)" default:"-1" yaml:"-"`
		Seed      string `long:"seed" description:"string seed for random number generator (random if unset)" yaml:",omitempty"`
		Config    string `long:"config" description:"name of config file to load(*)" default:"" yaml:"-"`
		WriteCfg  string `long:"writecfg" description:"write effective YAML config to the specified output file and quit(*)" default:"" yaml:"-"`
	} `group:"Global Options"`
	apihost  *url.URL
	lokihost *url.URL
}

func newOptions() *Options {
	return &Options{}
}

func (o *Options) CopyStarredFieldsFrom(other *Options) {
	o.Telemetry.APIKey = other.Telemetry.APIKey
	o.Global.DebugPort = other.Global.DebugPort
	o.Global.Config = other.Global.Config
	o.Global.WriteCfg = other.Global.WriteCfg
}

// RunTime is the total time the driver keeps generating batches.
func (o *Options) RunTime() time.Duration {
	return time.Duration(o.Quantity.Duration) * time.Second
}

// BatchInterval is the wall-clock period between batch starts.
func (o *Options) BatchInterval() time.Duration {
	return time.Duration(o.Quantity.Interval) * time.Second
}

// Validate rejects option combinations the generator can't run with.
func (o *Options) Validate() error {
	var errs []error
	if o.Quantity.Duration <= 0 {
		errs = append(errs, fmt.Errorf("duration must be positive, got %d", o.Quantity.Duration))
	}
	if o.Quantity.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %d", o.Quantity.Interval))
	}
	if o.Quantity.Traces < 0 {
		errs = append(errs, fmt.Errorf("traces must not be negative, got %d", o.Quantity.Traces))
	}
	if o.Quantity.Logs < 0 {
		errs = append(errs, fmt.Errorf("logs must not be negative, got %d", o.Quantity.Logs))
	}
	if o.Output.Sender == "honeycomb" && o.Telemetry.APIKey == "" {
		errs = append(errs, errors.New("the honeycomb sender requires an API key"))
	}
	if o.Output.MetricInterval <= 0 {
		errs = append(errs, fmt.Errorf("metricinterval must be positive, got %s", o.Output.MetricInterval))
	}
	return errors.Join(errs...)
}

// ResolveHosts parses the collector and Loki hosts so that the senders
// don't have to.
func (o *Options) ResolveHosts() error {
	defaultPort := "4317"
	if o.Output.Protocol == "http" {
		defaultPort = "4318"
	}
	var err error
	o.apihost, err = parseHost(o.Telemetry.Host, o.Telemetry.Insecure, defaultPort)
	if err != nil {
		return fmt.Errorf("unable to parse host: %w", err)
	}
	o.lokihost, err = parseHost(o.Telemetry.Loki, true, "3100")
	if err != nil {
		return fmt.Errorf("unable to parse loki endpoint: %w", err)
	}
	return nil
}

// isInsecure reports whether the collector should be reached in plaintext.
func (o *Options) isInsecure() bool {
	return o.apihost != nil && o.apihost.Scheme == "http"
}

// parses the host information and returns a cleaned-up version to make
// it easier to make sure that things are properly specified
func parseHost(host string, insecure bool, defaultPort string) (*url.URL, error) {
	switch host {
	case "honeycomb":
		host = "https://api.honeycomb.io:443"
	case "dogfood":
		host = "https://api-dogfood.honeycomb.io:443"
	case "local":
		host = "http://localhost:" + defaultPort
	default:
	}

	// if the scheme is not specified, fall back to the value of the insecure flag
	defaultScheme := "https"
	if insecure {
		defaultScheme = "http"
	}
	u, err := urlx.ParseWithDefaultScheme(host, defaultScheme)
	if err != nil {
		return nil, err
	}
	if u.Port() == "" {
		u.Host = fmt.Sprintf("%s:%s", u.Host, defaultPort)
	}
	return u, nil
}

func ReadConfig(opts *Options, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	err = dec.Decode(opts)
	if err != nil {
		return err
	}
	log.Printf("read config from %s\n", filename)
	return nil
}

func WriteConfig(opts *Options, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	err = enc.Encode(opts)
	if err != nil {
		return err
	}
	log.Printf("wrote config to %s\n", filename)
	return nil
}
