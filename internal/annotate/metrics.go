package annotate

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsTotal  *prometheus.CounterVec
	imagesTotal    *prometheus.CounterVec
	exhaustedTotal prometheus.Counter
	imageDuration  prometheus.Histogram

	metricsOnce       sync.Once
	metricsRegistered bool
)

// Metrics records annotation activity. Recording is a no-op until
// InitMetrics has run, so library users pay nothing unless they opt in.
type Metrics struct{}

// NewMetrics creates a Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// InitMetrics registers the Prometheus collectors. Call once at startup
// when metrics are wanted; repeated calls are safe.
func InitMetrics() {
	metricsOnce.Do(func() {
		attemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termi_tool_annotation_attempts_total",
				Help: "Total annotation API attempts, per account and outcome",
			},
			[]string{"account", "status"},
		)

		imagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termi_tool_images_total",
				Help: "Total images processed, per outcome",
			},
			[]string{"status"},
		)

		exhaustedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "termi_tool_credentials_exhausted_total",
				Help: "Times every configured account failed for one image",
			},
		)

		imageDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "termi_tool_image_duration_seconds",
				Help:    "Wall-clock time spent annotating one image",
				Buckets: []float64{1, 5, 10, 30, 60, 120},
			},
		)

		metricsRegistered = true
	})
}

// RecordAttempt counts one API call against an account.
func (m *Metrics) RecordAttempt(account, status string) {
	if !metricsRegistered {
		return
	}
	attemptsTotal.WithLabelValues(account, status).Inc()
}

// RecordImage counts one finished image with its outcome.
func (m *Metrics) RecordImage(status string, seconds float64) {
	if !metricsRegistered {
		return
	}
	imagesTotal.WithLabelValues(status).Inc()
	imageDuration.Observe(seconds)
}

// RecordExhaustion counts a full credential-set failure for one image.
func (m *Metrics) RecordExhaustion() {
	if !metricsRegistered {
		return
	}
	exhaustedTotal.Inc()
}
