//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"swipetriage/internal"
	"swipetriage/internal/batch"
	"swipetriage/internal/catalog"
	"swipetriage/internal/controllers"
	"swipetriage/internal/entitlement"
	"swipetriage/internal/filter"
	"swipetriage/internal/progress"
	"swipetriage/internal/progress/backend"
	"swipetriage/internal/providers"
	"swipetriage/internal/quota"
	"swipetriage/internal/scheduler"
	"swipetriage/internal/services"
	"swipetriage/internal/structures"
)

var catalogSet = wire.NewSet(
	catalog.NewLocalCatalog,
	catalog.MediaKinds,
	catalog.NewTrashDeleter,
	catalog.NewFileFetcher,
	wire.Bind(new(catalog.AssetCatalog), new(*catalog.LocalCatalog)),
	wire.Bind(new(catalog.Resolver), new(*catalog.LocalCatalog)),
	wire.Bind(new(catalog.DeletionExecutor), new(*catalog.TrashDeleter)),
	wire.Bind(new(catalog.ContentFetcher), new(*catalog.FileFetcher)),
)

var triageSet = wire.NewSet(
	backend.New,
	progress.NewStore,
	wire.Bind(new(quota.Persister), new(progress.StoreInterface)),
	quota.NewGate,
	entitlement.NewProvider,
	wire.Bind(new(entitlement.ProviderInterface), new(*entitlement.SettableProvider)),
	filter.NewEngine,
	batch.NewController,
	services.NewLibraryScanner,
	services.NewTriageService,
	wire.Bind(new(services.TriageServiceInterface), new(*services.TriageService)),
	wire.Bind(new(scheduler.Jobs), new(*services.TriageService)),
	scheduler.NewScheduler,
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		wire.InterfaceValue(new(prometheus.Registerer), prometheus.DefaultRegisterer),
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		catalogSet,
		triageSet,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}

// InitStore opens only the progress store, for the offline CLI commands.
func InitStore(cfg *structures.CliFlags) (progress.StoreInterface, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		wire.InterfaceValue(new(prometheus.Registerer), prometheus.NewRegistry()),
		providers.NewMetricsProvider,
		backend.New,
		progress.NewStore,
	)

	return nil, nil
}
