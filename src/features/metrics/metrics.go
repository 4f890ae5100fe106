// Package metrics exposes Prometheus instrumentation for the resolution
// pipeline and the outbound platform calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Recorder owns the collectors and the registry they live in.
type Recorder struct {
	registry *prometheus.Registry

	resolutions      *prometheus.CounterVec
	resolutionTime   *prometheus.HistogramVec
	upstreamCalls    *prometheus.CounterVec
	upstreamAttempts *prometheus.CounterVec
}

// NewRecorder creates a Recorder with its own registry, including the
// standard Go runtime and process collectors.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Recorder{
		registry: registry,
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tunegate_resolutions_total",
			Help: "Resolution requests by platform, operation and outcome.",
		}, []string{"platform", "operation", "outcome"}),
		resolutionTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tunegate_resolution_duration_seconds",
			Help:    "End-to-end resolution latency by platform and operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"platform", "operation"}),
		upstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tunegate_upstream_calls_total",
			Help: "Outbound platform calls by platform and result.",
		}, []string{"platform", "result"}),
		upstreamAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tunegate_upstream_attempts_total",
			Help: "Outbound attempt count by platform, including retries.",
		}, []string{"platform"}),
	}
	registry.MustRegister(r.resolutions, r.resolutionTime, r.upstreamCalls, r.upstreamAttempts)
	return r
}

// Registry returns the registry backing the /metrics endpoint.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveResolution records one finished resolution.
func (r *Recorder) ObserveResolution(platform, operation, outcome string, elapsed time.Duration) {
	r.resolutions.WithLabelValues(platform, operation, outcome).Inc()
	r.resolutionTime.WithLabelValues(platform, operation).Observe(elapsed.Seconds())
}

// ObserveUpstream records one outbound call and the attempts it took.
// Wired as the upstream client's observer callback.
func (r *Recorder) ObserveUpstream(platform string, attempts int, failed bool) {
	result := "ok"
	if failed {
		result = "error"
	}
	r.upstreamCalls.WithLabelValues(platform, result).Inc()
	r.upstreamAttempts.WithLabelValues(platform).Add(float64(attempts))
}
