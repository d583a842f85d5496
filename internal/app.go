package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"swipetriage/internal/controllers"
	"swipetriage/internal/progress"
	"swipetriage/internal/providers"
	"swipetriage/internal/scheduler"
	"swipetriage/internal/services"
	"swipetriage/internal/structures"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type App struct {
	WebServer *http.Server
	conf      *structures.Config
	logger    providers.Logger
	scheduler scheduler.SchedulerInterface
	service   services.TriageServiceInterface
	store     progress.StoreInterface
}

func NewApp(apiController *controllers.ApiController, healthController *controllers.HealthController, sched scheduler.SchedulerInterface, service services.TriageServiceInterface, store progress.StoreInterface, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) (*App, error) {
	// Inner mux: API routes
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}

	// Wrap API routes with metrics middleware
	instrumentedAPI := providers.MetricsMiddleware(metrics, router.GetRoutes(), apiMux)

	// Outer mux: infrastructure + instrumented API
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", instrumentedAPI)

	return &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		conf:      conf,
		logger:    logger,
		scheduler: sched,
		service:   service,
		store:     store,
	}, nil
}

// Run restores progress, starts the background work and serves HTTP until
// SIGINT or SIGTERM.
func (a *App) Run() error {
	a.logger.Infof(providers.TypeApp, "Starting %s", a.conf.AppName)
	if err := a.scheduler.Restore(); err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.service.Start(ctx)
	a.scheduler.Init()

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Infof(providers.TypeApp, "Listening HTTP clients on %s", a.WebServer.Addr)
		if err := a.WebServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case <-stop:
		a.logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if err := a.shutdown(cancel); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (a *App) shutdown(cancel context.CancelFunc) error {
	a.scheduler.Stop()

	ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	err := a.WebServer.Shutdown(ctx)

	cancel()
	a.service.Stop()

	if cerr := a.store.Close(); cerr != nil {
		a.logger.Errorf(providers.TypeStore, "Error while closing store: %s", cerr)
		if err == nil {
			err = cerr
		}
	}
	if err == nil {
		a.logger.Infof(providers.TypeApp, "gracefully stopped")
	}
	a.logger.Close()
	return err
}
