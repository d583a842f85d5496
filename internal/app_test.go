package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"swipetriage/internal/controllers"
	"swipetriage/internal/scheduler"
	"swipetriage/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*App, *routeFixture) {
	t.Helper()
	conf := routeTestConfig(false)
	conf.WebServer.Host = "127.0.0.1"
	conf.WebServer.Port = 0
	f := newRouteFixture(t, conf)

	sched := scheduler.NewScheduler(conf, f.logger, f.service)
	app, err := NewApp(
		f.api,
		controllers.NewHealthController(f.service),
		sched,
		f.service,
		f.store,
		conf,
		f.logger,
		InitRoutes(f.api, conf),
		&testutil.MockMetrics{},
	)
	require.NoError(t, err)
	return app, f
}

func serve(app *App, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	app.WebServer.Handler.ServeHTTP(rr, req)
	return rr
}

func TestApp_HealthAndApi(t *testing.T) {
	app, _ := newTestApp(t)

	rr := serve(app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(app, http.MethodGet, "/batch", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(app, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestApp_SwipeFlowOverHttp(t *testing.T) {
	app, f := newTestApp(t)
	f.catalog.SetAssets(testutil.Photos("p", 3, 2021))

	require.NoError(t, f.service.Restore())
	f.service.Start(context.Background())
	defer f.service.Stop()

	require.Eventually(t, func() bool {
		var view struct {
			State string `json:"state"`
		}
		rr := serve(app, http.MethodGet, "/batch", "")
		return json.Unmarshal(rr.Body.Bytes(), &view) == nil && view.State == "swiping"
	}, 2*time.Second, 10*time.Millisecond)

	for i := 0; i < 3; i++ {
		rr := serve(app, http.MethodPost, "/swipe", `{"action":"keep"}`)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	var progress struct {
		TotalProcessed int `json:"total_processed"`
	}
	rr := serve(app, http.MethodGet, "/progress", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &progress))
	assert.Equal(t, 3, progress.TotalProcessed)
}

func TestApp_ShutdownClosesStore(t *testing.T) {
	app, f := newTestApp(t)
	_, cancel := context.WithCancel(context.Background())

	require.NoError(t, app.shutdown(cancel))
	assert.Error(t, f.store.Save(nil))
}
