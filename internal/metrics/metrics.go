package metrics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"transcriptor/internal/transcript"
)

const namespace = "transcriptor"

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Recorder implements transcript.Observer by updating Prometheus collectors.
type Recorder struct {
	registry *prometheus.Registry

	extractions *prometheus.CounterVec
	attempts    *prometheus.CounterVec
	failures    *prometheus.CounterVec
	cacheHits   prometheus.Counter
	duration    *prometheus.HistogramVec
	lastRun     prometheus.Gauge
}

// New builds a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		extractions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extractions_total",
				Help:      "Completed extractions by producing method and outcome.",
			},
			[]string{"method", "outcome"},
		),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_attempts_total",
				Help:      "Provider invocations by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extraction_failures_total",
				Help:      "Failed extractions by error kind.",
			},
			[]string{"error_kind"},
		),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Extractions answered from the result cache.",
		}),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "extraction_duration_seconds",
				Help:      "End-to-end extraction latency, including pacing delay.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"method"},
		),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_extraction_timestamp_seconds",
			Help:      "Unix time of the most recent completed extraction.",
		}),
	}
	r.registry.MustRegister(r.extractions, r.attempts, r.failures, r.cacheHits, r.duration, r.lastRun)
	return r
}

// Registry exposes the underlying registry as a gatherer.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveExtraction implements transcript.Observer.
func (r *Recorder) ObserveExtraction(_ context.Context, event transcript.Event) {
	if r == nil {
		return
	}
	result := event.Result
	method := labelOrNone(result.Method)
	r.extractions.WithLabelValues(method, outcome(result.Success)).Inc()
	if !result.Success {
		r.failures.WithLabelValues(labelOrNone(string(result.ErrorKind))).Inc()
	}
	if result.FromCache {
		r.cacheHits.Inc()
	}
	for _, attempt := range event.Attempts {
		r.attempts.WithLabelValues(labelOrNone(attempt.Provider), outcome(attempt.Result.Success)).Inc()
	}
	r.duration.WithLabelValues(method).Observe(event.Elapsed.Seconds())
	r.lastRun.SetToCurrentTime()
}

// WriteTextfile exports the registry in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("metrics: textfile path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func outcome(success bool) string {
	if success {
		return outcomeSuccess
	}
	return outcomeFailure
}

func labelOrNone(value string) string {
	if strings.TrimSpace(value) == "" {
		return "none"
	}
	return value
}
