// Package sink counts the telemetry that arrives at the local receivers, so
// a generator run can be checked without a collector.
package sink

import (
	"fmt"
	"sync"

	cuckoo "github.com/panmari/cuckoofilter"
	collectorlogs "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	collectormetrics "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	collectortrace "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	metricspb "go.opentelemetry.io/proto/otlp/metrics/v1"
	"go.uber.org/zap"
)

const (
	traceFilterSize = 1000000
	spanFilterSize  = 10000000
)

// Tally holds running counts across all requests a receiver has seen. It is
// safe for concurrent use. Trace and span ids go through cuckoo filters, so
// retries of the same export are not counted twice (give or take the
// filter's false positive rate).
type Tally struct {
	mut          sync.Mutex
	traces       *cuckoo.Filter
	spans        *cuckoo.Filter
	traceCount   int
	spanCount    int
	metricPoints int
	logRecords   int
	lokiStreams  int
	lokiLines    int
	rate         *RateTracker
}

func NewTally(log *zap.SugaredLogger) *Tally {
	return &Tally{
		traces: cuckoo.NewFilter(traceFilterSize),
		spans:  cuckoo.NewFilter(spanFilterSize),
		rate:   NewRateTracker("Spans", log),
	}
}

// Counts is a snapshot of a Tally.
type Counts struct {
	Traces       int
	Spans        int
	MetricPoints int
	LogRecords   int
	LokiStreams  int
	LokiLines    int
}

func (c Counts) String() string {
	return fmt.Sprintf("%d traces, %d spans, %d metric points, %d log records, %d loki lines in %d streams",
		c.Traces, c.Spans, c.MetricPoints, c.LogRecords, c.LokiLines, c.LokiStreams)
}

func (t *Tally) Counts() Counts {
	t.mut.Lock()
	defer t.mut.Unlock()
	return Counts{
		Traces:       t.traceCount,
		Spans:        t.spanCount,
		MetricPoints: t.metricPoints,
		LogRecords:   t.logRecords,
		LokiStreams:  t.lokiStreams,
		LokiLines:    t.lokiLines,
	}
}

func (t *Tally) AddTraces(req *collectortrace.ExportTraceServiceRequest) {
	t.mut.Lock()
	defer t.mut.Unlock()
	received := 0
	for _, resource := range req.GetResourceSpans() {
		for _, scope := range resource.GetScopeSpans() {
			for _, span := range scope.GetSpans() {
				received++
				traceID := span.GetTraceId()
				spanID := span.GetSpanId()
				if !t.traces.Lookup(traceID) {
					t.traces.Insert(traceID)
					t.traceCount++
				}
				if !t.spans.Lookup(spanID) {
					t.spans.Insert(spanID)
					t.spanCount++
				}
			}
		}
	}
	t.rate.Track(received)
}

func (t *Tally) AddMetrics(req *collectormetrics.ExportMetricsServiceRequest) {
	t.mut.Lock()
	defer t.mut.Unlock()
	for _, resource := range req.GetResourceMetrics() {
		for _, scope := range resource.GetScopeMetrics() {
			for _, m := range scope.GetMetrics() {
				t.metricPoints += dataPoints(m)
			}
		}
	}
}

func dataPoints(m *metricspb.Metric) int {
	switch {
	case m.GetSum() != nil:
		return len(m.GetSum().GetDataPoints())
	case m.GetGauge() != nil:
		return len(m.GetGauge().GetDataPoints())
	case m.GetHistogram() != nil:
		return len(m.GetHistogram().GetDataPoints())
	case m.GetExponentialHistogram() != nil:
		return len(m.GetExponentialHistogram().GetDataPoints())
	case m.GetSummary() != nil:
		return len(m.GetSummary().GetDataPoints())
	default:
		return 0
	}
}

func (t *Tally) AddLogs(req *collectorlogs.ExportLogsServiceRequest) {
	t.mut.Lock()
	defer t.mut.Unlock()
	for _, resource := range req.GetResourceLogs() {
		for _, scope := range resource.GetScopeLogs() {
			t.logRecords += len(scope.GetLogRecords())
		}
	}
}

// LokiPush is the JSON body of a Loki push request.
type LokiPush struct {
	Streams []LokiStream `json:"streams"`
}

type LokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

func (t *Tally) AddLoki(push *LokiPush) {
	t.mut.Lock()
	defer t.mut.Unlock()
	for _, s := range push.Streams {
		t.lokiStreams++
		t.lokiLines += len(s.Values)
	}
}

// RateSummary reports the span rates seen so far.
func (t *Tally) RateSummary() map[string]interface{} {
	return t.rate.Summary()
}
