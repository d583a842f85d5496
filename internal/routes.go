package internal

import (
	"net/http"
	"swipetriage/internal/controllers"
	"swipetriage/internal/providers"
	"swipetriage/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/batch", http.HandlerFunc(apiController.GetBatch))
	routers.Post("/swipe", http.HandlerFunc(apiController.Swipe))
	routers.Post("/undo", http.HandlerFunc(apiController.Undo))
	routers.Post("/review/undo-delete", http.HandlerFunc(apiController.UndoDelete))
	routers.Post("/review/keep-all", http.HandlerFunc(apiController.KeepAll))
	routers.Post("/confirm", http.HandlerFunc(apiController.Confirm))
	routers.Post("/continue", http.HandlerFunc(apiController.Continue))
	routers.Post("/filter", http.HandlerFunc(apiController.SwitchFilter))
	routers.Get("/filters", http.HandlerFunc(apiController.GetFilters))
	routers.Get("/progress", http.HandlerFunc(apiController.GetProgress))
	routers.Get("/quota", http.HandlerFunc(apiController.GetQuota))
	routers.Post("/quota/bonus", http.HandlerFunc(apiController.GrantBonus))
	routers.Post("/entitlement", http.HandlerFunc(apiController.SetEntitlement))
	routers.Post("/refresh", http.HandlerFunc(apiController.Refresh))
	routers.Post("/reset", http.HandlerFunc(apiController.Reset))
	routers.Get("/asset", http.HandlerFunc(apiController.GetAsset))

	if conf.Debug {
		routers.Post("/quota/reset", http.HandlerFunc(apiController.ResetQuota))
	}
	return routers
}
