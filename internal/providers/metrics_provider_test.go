package providers

import (
	"swipetriage/internal/structures"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf, prometheus.NewRegistry())
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	m.IncRequestsTotal("/test", 200)
	m.ObserveRequestDuration("/test", time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.ObservePersistenceDuration(time.Millisecond)
	m.IncSwipes("keep")
	m.IncQuotaDenied()
	m.AddDeletions(3, 100)
	m.IncDeletionFailures()
	m.SetProcessedTotal(10)
}

func TestMetricsProvider_WhenEnabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf, prometheus.NewRegistry())
	_, ok := m.(*MetricsProvider)
	assert.True(t, ok, "should return MetricsProvider when enabled")
}

func TestMetricsProvider_IncrementCounters(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	reg := prometheus.NewRegistry()
	m := NewMetricsProvider(conf, reg).(*MetricsProvider)

	m.IncRequestsTotal("/batch", 200)
	m.IncRequestsTotal("/batch", 404)
	m.ObserveRequestDuration("/batch", 5*time.Millisecond)
	m.IncSwipes("keep")
	m.IncSwipes("keep")
	m.IncSwipes("delete")
	m.AddDeletions(3, 3000)
	m.SetProcessedTotal(42)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.swipesTotal.WithLabelValues("keep")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.swipesTotal.WithLabelValues("delete")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.deletionsTotal))
	assert.Equal(t, 3000.0, testutil.ToFloat64(m.storageSaved))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.processedTotal))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
