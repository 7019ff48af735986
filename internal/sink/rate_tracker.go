package sink

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// RateTracker tracks items received per second
type RateTracker struct {
	mu             sync.RWMutex
	name           string
	counts         map[int64]int // Map of timestamp (seconds) to count
	startTime      time.Time     // When tracking started
	total          int           // Total items counted by the tracker
	lastReportTime time.Time     // Last time stats were reported
	reportInterval time.Duration // How often to report stats
	log            *zap.SugaredLogger
	now            func() time.Time
}

// NewRateTracker creates a new rate tracker; name labels its reports.
func NewRateTracker(name string, log *zap.SugaredLogger) *RateTracker {
	now := time.Now()
	return &RateTracker{
		name:           name,
		counts:         make(map[int64]int),
		startTime:      now,
		lastReportTime: now,
		reportInterval: 5 * time.Second,
		log:            log,
		now:            time.Now,
	}
}

// Track adds count to the current second
func (t *RateTracker) Track(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Use Unix timestamp as the key (second precision)
	now := t.now()
	key := now.Unix()

	t.counts[key] += count
	t.total += count

	// Report periodically
	if now.Sub(t.lastReportTime) >= t.reportInterval {
		t.reportStats(now)
		t.lastReportTime = now
	}
}

// rate returns the average items/second over the last n seconds.
// The caller must hold the lock.
func (t *RateTracker) rate(now time.Time, seconds int) float64 {
	cutoff := now.Add(-time.Duration(seconds) * time.Second).Unix()

	var total int
	for ts, count := range t.counts {
		if ts >= cutoff {
			total += count
		}
	}

	// If we have less than n seconds of data, use what we have
	actualSeconds := int64(seconds)
	elapsedSeconds := now.Unix() - t.startTime.Unix()
	if elapsedSeconds < int64(seconds) {
		actualSeconds = elapsedSeconds
		if actualSeconds == 0 {
			actualSeconds = 1 // Avoid division by zero
		}
	}

	return float64(total) / float64(actualSeconds)
}

// reportStats logs the current rate statistics
func (t *RateTracker) reportStats(now time.Time) {
	t.log.Infof("%s per second: %.2f (1s) | %.2f (10s) | %.2f (60s) | Total: %d",
		t.name, t.rate(now, 1), t.rate(now, 10), t.rate(now, 60), t.total)
}

// Summary returns a summary of the rate statistics
func (t *RateTracker) Summary() map[string]interface{} {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := t.now()
	runningTime := now.Sub(t.startTime).Seconds()
	average := 0.0
	if runningTime > 0 {
		average = float64(t.total) / runningTime
	}

	return map[string]interface{}{
		"per_second_1s":        t.rate(now, 1),
		"per_second_10s":       t.rate(now, 10),
		"per_second_60s":       t.rate(now, 60),
		"total":                t.total,
		"running_time_seconds": runningTime,
		"average_rate":         average,
	}
}
