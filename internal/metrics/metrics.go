// Package metrics exposes Prometheus instrumentation for the tracking core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsNamespace is the namespace for all tracker metrics.
const MetricsNamespace = "affiliate_tracker"

// Conversion outcome label values.
const (
	ConversionCreated      = "created"
	ConversionDuplicate    = "duplicate"
	ConversionUnattributed = "unattributed"
)

// Metrics holds all Prometheus metrics for the tracker.
type Metrics struct {
	// Redirect path
	ClicksRecorded prometheus.Counter
	ClicksDropped  prometheus.Counter
	RedirectsTotal *prometheus.CounterVec

	// Link cache
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Conversions
	ConversionsTotal *prometheus.CounterVec

	// Buffer backlog
	BufferDepth prometheus.GaugeFunc
}

// New creates and registers all tracker metrics.
func New(reg prometheus.Registerer, bufferLen func() int) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &Metrics{
		ClicksRecorded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "clicks_recorded_total",
			Help:      "Total number of click events accepted into the buffer",
		}),
		ClicksDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "clicks_dropped_total",
			Help:      "Total number of click events dropped because the buffer was full",
		}),
		RedirectsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "redirects_total",
			Help:      "Total redirect requests by outcome",
		}, []string{"outcome"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "link_cache_hits_total",
			Help:      "Total link resolutions served from Redis",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "link_cache_misses_total",
			Help:      "Total link resolutions that fell through to PostgreSQL",
		}),
		ConversionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "conversions_total",
			Help:      "Total conversion reports by outcome",
		}, []string{"outcome"}),
		BufferDepth: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "click_buffer_depth",
			Help:      "Click events currently waiting in the buffer",
		}, func() float64 { return float64(bufferLen()) }),
	}
}
