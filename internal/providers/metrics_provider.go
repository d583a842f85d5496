package providers

import (
	"swipetriage/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncSwipes(action string)
	IncQuotaDenied()
	AddDeletions(count int, savedBytes int64)
	IncDeletionFailures()
	SetProcessedTotal(count int)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	swipesTotal         *prometheus.CounterVec
	quotaDenied         prometheus.Counter
	deletionsTotal      prometheus.Counter
	deletionFailures    prometheus.Counter
	storageSaved        prometheus.Counter
	processedTotal      prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncSwipes(action string) {
	m.swipesTotal.WithLabelValues(action).Inc()
}

func (m *MetricsProvider) IncQuotaDenied() {
	m.quotaDenied.Inc()
}

func (m *MetricsProvider) AddDeletions(count int, savedBytes int64) {
	m.deletionsTotal.Add(float64(count))
	m.storageSaved.Add(float64(savedBytes))
}

func (m *MetricsProvider) IncDeletionFailures() {
	m.deletionFailures.Inc()
}

func (m *MetricsProvider) SetProcessedTotal(count int) {
	m.processedTotal.Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// NewMetricsProvider registers collectors on reg. Passing nil uses the
// default registerer so /metrics serves them through promhttp.Handler.
func NewMetricsProvider(conf *structures.Config, reg prometheus.Registerer) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &MetricsProvider{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "swipetriage_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "swipetriage_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "swipetriage_cache_hits_total",
			Help: "Total number of content cache hits",
		}),

		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "swipetriage_cache_misses_total",
			Help: "Total number of content cache misses",
		}),

		persistenceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "swipetriage_persistence_duration_seconds",
			Help:    "Duration of progress store writes in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		swipesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "swipetriage_swipes_total",
			Help: "Total number of recorded swipe decisions",
		}, []string{"action"}),

		quotaDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "swipetriage_quota_denied_total",
			Help: "Swipes refused by the daily quota",
		}),

		deletionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "swipetriage_deletions_total",
			Help: "Total number of deleted assets",
		}),

		deletionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "swipetriage_deletion_failures_total",
			Help: "Total number of failed batch deletions",
		}),

		storageSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "swipetriage_storage_saved_bytes_total",
			Help: "Estimated bytes reclaimed by deletions",
		}),

		processedTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "swipetriage_processed_total",
			Help: "Cumulative number of swiped assets",
		}),
	}

	reg.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.cacheHits,
		m.cacheMisses,
		m.persistenceDuration,
		m.swipesTotal,
		m.quotaDenied,
		m.deletionsTotal,
		m.deletionFailures,
		m.storageSaved,
		m.processedTotal,
	)

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncSwipes(_ string)                               {}
func (n *noopMetrics) IncQuotaDenied()                                  {}
func (n *noopMetrics) AddDeletions(_ int, _ int64)                      {}
func (n *noopMetrics) IncDeletionFailures()                             {}
func (n *noopMetrics) SetProcessedTotal(_ int)                          {}
