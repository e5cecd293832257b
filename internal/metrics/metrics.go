// Package metrics exposes Prometheus instrumentation for the insight pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder records pipeline metrics. A nil *Recorder is valid and records
// nothing, so components can be built without instrumentation in tests.
type Recorder struct {
	gatherer prometheus.Gatherer

	insights       *prometheus.CounterVec
	insightLatency *prometheus.HistogramVec
	attempts       *prometheus.CounterVec
	marketFetches  *prometheus.CounterVec
	marketLatency  prometheus.Histogram
	cacheLookups   *prometheus.CounterVec
}

// New creates a Recorder whose collectors are registered on reg.
func New(reg *prometheus.Registry) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		gatherer: reg,
		insights: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coinpulse",
				Subsystem: "insight",
				Name:      "results_total",
				Help:      "Insights produced, by provenance",
			},
			[]string{"source"},
		),
		insightLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "coinpulse",
				Subsystem: "insight",
				Name:      "duration_seconds",
				Help:      "End-to-end insight latency, by provenance",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coinpulse",
				Subsystem: "insight",
				Name:      "remote_attempts_total",
				Help:      "Remote generation attempts, by attempt name and outcome",
			},
			[]string{"attempt", "outcome"},
		),
		marketFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coinpulse",
				Subsystem: "market",
				Name:      "fetches_total",
				Help:      "Batched market snapshot fetches, by outcome",
			},
			[]string{"outcome"},
		),
		marketLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "coinpulse",
				Subsystem: "market",
				Name:      "fetch_duration_seconds",
				Help:      "Market snapshot fetch latency including retries",
				Buckets:   prometheus.DefBuckets,
			},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coinpulse",
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Response cache lookups, by result",
			},
			[]string{"result"},
		),
	}
}

// RecordInsight records a produced insight and its latency.
func (r *Recorder) RecordInsight(source string, took time.Duration) {
	if r == nil {
		return
	}
	r.insights.WithLabelValues(source).Inc()
	r.insightLatency.WithLabelValues(source).Observe(took.Seconds())
}

// RecordAttempt records the outcome of one remote generation attempt.
func (r *Recorder) RecordAttempt(attempt string, ok bool) {
	if r == nil {
		return
	}
	r.attempts.WithLabelValues(attempt, outcome(ok)).Inc()
}

// RecordMarketFetch records one batched market lookup.
func (r *Recorder) RecordMarketFetch(ok bool, took time.Duration) {
	if r == nil {
		return
	}
	r.marketFetches.WithLabelValues(outcome(ok)).Inc()
	r.marketLatency.Observe(took.Seconds())
}

// RecordCacheLookup records a cache hit or miss.
func (r *Recorder) RecordCacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
