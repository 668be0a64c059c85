package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespaceMetrics = "processentry"

// Submission results.
const (
	ResultCreated    = "created"
	ResultInvalid    = "invalid"
	ResultStoreError = "store_error"
)

// Publish results.
const (
	PublishOK     = "ok"
	PublishFailed = "failed"
)

var (
	registerOnce      sync.Once
	submissions       *prometheus.CounterVec
	publishes         *prometheus.CounterVec
	processDurations  prometheus.Histogram
	processDurBuckets = []float64{60, 300, 900, 1800, 3600, 2 * 3600, 4 * 3600, 8 * 3600, 24 * 3600}
)

// MustRegister registers the collectors with the default registry. Safe to call
// more than once.
func MustRegister() {
	registerOnce.Do(func() {
		submissions = registerCounterVec(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespaceMetrics,
				Subsystem: "workflow",
				Name:      "submissions_total",
				Help:      "Process record submissions by outcome.",
			},
			[]string{"result"},
		))
		publishes = registerCounterVec(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespaceMetrics,
				Subsystem: "bus",
				Name:      "publish_total",
				Help:      "Field messages handed to the bus, by topic and outcome.",
			},
			[]string{"topic", "result"},
		))
		processDurations = registerHistogram(prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespaceMetrics,
				Subsystem: "workflow",
				Name:      "process_duration_seconds",
				Help:      "Duration of recorded manufacturing processes.",
				Buckets:   processDurBuckets,
			},
		))

		registerRuntimeCollectors()
	})
}

// RecordSubmission counts one submission outcome.
func RecordSubmission(result string) {
	if submissions == nil {
		return
	}
	submissions.WithLabelValues(normalizeLabel(result, "unknown")).Inc()
}

// ObserveProcessDuration records the duration of a stored process.
func ObserveProcessDuration(d time.Duration) {
	if processDurations == nil {
		return
	}
	processDurations.Observe(d.Seconds())
}

// RecordPublish counts one publish attempt.
func RecordPublish(topic, result string) {
	if publishes == nil {
		return
	}
	publishes.WithLabelValues(normalizeLabel(topic, "unknown"), normalizeLabel(result, "unknown")).Inc()
}

// SubmissionCounter exposes the submissions vector for tests.
func SubmissionCounter() *prometheus.CounterVec {
	return submissions
}

// PublishCounter exposes the publish vector for tests.
func PublishCounter() *prometheus.CounterVec {
	return publishes
}

func normalizeLabel(value string, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func registerCounterVec(vec *prometheus.CounterVec) *prometheus.CounterVec {
	if err := prometheus.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return vec
}

func registerHistogram(h prometheus.Histogram) prometheus.Histogram {
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing
			}
		}
		panic(err)
	}
	return h
}

func registerRuntimeCollectors() {
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := prometheus.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}
}
