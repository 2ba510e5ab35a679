// Package metrics records publish run metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels for run outcomes.
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

// Recorder receives publish run measurements. A nil-safe Noop implementation
// exists for callers that don't collect metrics.
type Recorder interface {
	RecordRun(result string, duration time.Duration)
	RecordPages(count int)
	RecordAttachments(count int)
}

// NoopRecorder discards all measurements.
type NoopRecorder struct{}

func (NoopRecorder) RecordRun(string, time.Duration) {}
func (NoopRecorder) RecordPages(int)                 {}
func (NoopRecorder) RecordAttachments(int)           {}

// PromRecorder exposes run metrics through a prometheus registry.
type PromRecorder struct {
	registry          *prometheus.Registry
	runsTotal         *prometheus.CounterVec
	runDuration       prometheus.Histogram
	pagesPublished    prometheus.Counter
	attachmentsCopied prometheus.Counter
}

// NewPromRecorder creates a recorder with its own registry.
func NewPromRecorder() *PromRecorder {
	r := &PromRecorder{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "publish_runs_total",
			Help: "Publish runs by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "publish_run_duration_seconds",
			Help:    "Duration of publish runs.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		pagesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "publish_pages_total",
			Help: "Pages written across all runs.",
		}),
		attachmentsCopied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "publish_attachments_total",
			Help: "Attachments copied across all runs.",
		}),
	}
	r.registry.MustRegister(r.runsTotal, r.runDuration, r.pagesPublished, r.attachmentsCopied)
	return r
}

func (r *PromRecorder) RecordRun(result string, duration time.Duration) {
	r.runsTotal.WithLabelValues(result).Inc()
	r.runDuration.Observe(duration.Seconds())
}

func (r *PromRecorder) RecordPages(count int) {
	r.pagesPublished.Add(float64(count))
}

func (r *PromRecorder) RecordAttachments(count int) {
	r.attachmentsCopied.Add(float64(count))
}

// Handler serves the registry in prometheus exposition format.
func (r *PromRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
