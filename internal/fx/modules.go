package fx

import (
	"spilcafe-catalog/internal/api"
	"spilcafe-catalog/internal/config"
	"spilcafe-catalog/internal/logger"
	"spilcafe-catalog/internal/render"
	"spilcafe-catalog/internal/server"
	"spilcafe-catalog/internal/service"
	"spilcafe-catalog/internal/store"

	"go.uber.org/fx"
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	// api client
	fx.Provide(fx.Annotate(api.NewCatalogClient, fx.As(new(service.CatalogSource)))),
	// store
	fx.Provide(store.NewCatalogStore),
	// svc
	fx.Provide(service.NewCatalogService),
	// view
	fx.Provide(render.New),
	// server
	fx.Provide(server.NewCatalogServer),
	fx.Provide(server.NewRouter),
)
