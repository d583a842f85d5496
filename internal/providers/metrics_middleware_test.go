package providers

import (
	"net/http"
	"net/http/httptest"
	"swipetriage/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mockMetrics struct {
	noopMetrics
	endpoints     []string
	statuses      []int
	durationCalls int
}

func (m *mockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.endpoints = append(m.endpoints, endpoint)
	m.statuses = append(m.statuses, status)
}
func (m *mockMetrics) ObserveRequestDuration(_ string, _ time.Duration) { m.durationCalls++ }

var triageRoutes = []structures.Route{
	{Url: "/batch", Method: http.MethodGet},
	{Url: "/swipe", Method: http.MethodPost},
	{Url: "/asset", Method: http.MethodGet},
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestMetricsMiddleware_CapturesStatusAndRoute(t *testing.T) {
	metrics := &mockMetrics{}
	mw := MetricsMiddleware(metrics, triageRoutes, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	serve(mw, http.MethodPost, "/swipe")

	assert.Equal(t, []string{"/swipe"}, metrics.endpoints)
	assert.Equal(t, []int{http.StatusConflict}, metrics.statuses)
	assert.Equal(t, 1, metrics.durationCalls)
}

func TestMetricsMiddleware_QueryDoesNotSplitLabel(t *testing.T) {
	metrics := &mockMetrics{}
	mw := MetricsMiddleware(metrics, triageRoutes, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg"))
	}))

	serve(mw, http.MethodGet, "/asset?id=2021/a.jpg")
	serve(mw, http.MethodGet, "/asset?id=2022/b.jpg&quality=full")

	assert.Equal(t, []string{"/asset", "/asset"}, metrics.endpoints)
	assert.Equal(t, []int{http.StatusOK, http.StatusOK}, metrics.statuses)
}

func TestMetricsMiddleware_UnknownPathsShareLabel(t *testing.T) {
	metrics := &mockMetrics{}
	mux := http.NewServeMux()
	mux.Handle("/batch", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	mw := MetricsMiddleware(metrics, triageRoutes, mux)

	serve(mw, http.MethodGet, "/wp-login.php")
	serve(mw, http.MethodGet, "/batch/../../etc")

	assert.Equal(t, []string{unmatchedEndpoint, unmatchedEndpoint}, metrics.endpoints)
}

func TestStatusWriter_FirstStatusWins(t *testing.T) {
	rr := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rr, status: http.StatusOK}

	sw.WriteHeader(http.StatusNotFound)
	sw.WriteHeader(http.StatusInternalServerError)
	assert.Equal(t, http.StatusNotFound, sw.status)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStatusWriter_WriteImpliesOK(t *testing.T) {
	rr := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rr, status: http.StatusOK}

	_, _ = sw.Write([]byte("ok"))
	sw.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusOK, sw.status)
}
