package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the run's counters on a private registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	requestTime   *prometheus.HistogramVec
	logoDownloads *prometheus.CounterVec
	conversions   *prometheus.CounterVec
	logoFallbacks prometheus.Counter
	goalies       prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goalie_chart",
			Name:      "http_requests_total",
			Help:      "HTTP requests by host and outcome.",
		}, []string{"host", "outcome"}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "goalie_chart",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by host.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host"}),
		logoDownloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goalie_chart",
			Name:      "logo_downloads_total",
			Help:      "Logo downloads by outcome.",
		}, []string{"outcome"}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goalie_chart",
			Name:      "logo_conversions_total",
			Help:      "SVG to JPG conversions by outcome.",
		}, []string{"outcome"}),
		logoFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "goalie_chart",
			Name:      "chart_logo_fallbacks_total",
			Help:      "Bars rendered without a logo pattern.",
		}),
		goalies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "goalie_chart",
			Name:      "goalies_fetched",
			Help:      "Goalie rows returned by the stats API in the last run.",
		}),
	}
	r.registry.MustRegister(r.requests, r.requestTime, r.logoDownloads, r.conversions, r.logoFallbacks, r.goalies)
	return r
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordRequest counts one HTTP call against host.
func (r *Recorder) RecordRequest(host string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(host, outcome(err)).Inc()
	r.requestTime.WithLabelValues(host).Observe(duration.Seconds())
}

func (r *Recorder) RecordLogoDownload(err error) {
	if r == nil {
		return
	}
	r.logoDownloads.WithLabelValues(outcome(err)).Inc()
}

// RecordConversion counts a conversion; skipped covers a missing source SVG.
func (r *Recorder) RecordConversion(err error, skipped bool) {
	if r == nil {
		return
	}
	if skipped {
		r.conversions.WithLabelValues("skipped").Inc()
		return
	}
	r.conversions.WithLabelValues(outcome(err)).Inc()
}

func (r *Recorder) RecordLogoFallback() {
	if r == nil {
		return
	}
	r.logoFallbacks.Inc()
}

func (r *Recorder) SetGoaliesFetched(n int) {
	if r == nil {
		return
	}
	r.goalies.Set(float64(n))
}

// Gatherer exposes the registry, e.g. for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
