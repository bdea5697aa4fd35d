// Package prommetrics records sections observations as Prometheus metrics.
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goliatone/go-sections/pkg/interfaces"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "sections"

// Recorder implements interfaces.Metrics on Prometheus collectors.
type Recorder struct {
	CatalogReloads     *prometheus.CounterVec
	CatalogLastReload  prometheus.Gauge
	ValidationFailures *prometheus.CounterVec
	GuardRejections    *prometheus.CounterVec
	DocumentBytes      prometheus.Histogram
	CommandDuration    *prometheus.HistogramVec
}

var _ interfaces.Metrics = (*Recorder)(nil)

// New registers the collectors on registerer. A nil registerer uses the
// Prometheus default registry; a blank namespace uses DefaultNamespace.
func New(registerer prometheus.Registerer, namespace string) *Recorder {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(registerer)

	return &Recorder{
		CatalogReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_reloads_total",
				Help:      "Template catalog builds by outcome",
			},
			[]string{"outcome"},
		),
		CatalogLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_last_reload_timestamp_seconds",
				Help:      "Unix time of the last successful catalog build",
			},
		),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_failures_total",
				Help:      "Rejected section payloads by template key",
			},
			[]string{"template_key"},
		),
		GuardRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "richtext_guard_rejections_total",
				Help:      "Rich text values rejected by a size guard",
			},
			[]string{"guard"},
		),
		DocumentBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "richtext_document_bytes",
				Help:      "Serialized size of persisted rich text documents",
				Buckets:   prometheus.ExponentialBuckets(64, 4, 7),
			},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "command_duration_seconds",
				Help:      "Command execution time by command and status",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"command", "status"},
		),
	}
}

func (r *Recorder) IncrementCatalogReload(outcome string) {
	r.CatalogReloads.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		r.CatalogLastReload.SetToCurrentTime()
	}
}

func (r *Recorder) IncrementValidationFailure(templateKey string) {
	r.ValidationFailures.WithLabelValues(templateKey).Inc()
}

func (r *Recorder) IncrementGuardRejection(guard string) {
	r.GuardRejections.WithLabelValues(guard).Inc()
}

func (r *Recorder) ObserveDocumentBytes(bytes int) {
	r.DocumentBytes.Observe(float64(bytes))
}

func (r *Recorder) ObserveCommand(command, status string, duration time.Duration) {
	r.CommandDuration.WithLabelValues(command, status).Observe(duration.Seconds())
}
