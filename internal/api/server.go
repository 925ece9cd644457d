// Package api assembles the bargain tracker's HTTP server: Echo with the
// recovery, logging and metrics middleware, huma operations for the domain
// endpoints, the health probes and /metrics.
package api

import (
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/donaldgifford/bargain-tracker/internal/api/handlers"
	mw "github.com/donaldgifford/bargain-tracker/internal/api/middleware"
)

// Deps are the services behind the API.
type Deps struct {
	Store         handlers.Pinger
	Bargains      handlers.BargainStore
	Tracker       handlers.Tracker
	Subscriptions handlers.Subscriptions
	Products      handlers.Products
	Distributor   handlers.Distributor
	Queue         handlers.QueueInspector
	Jobs          handlers.JobsProvider
}

// NewServer returns an Echo instance with every route registered.
func NewServer(d Deps, version string, log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(mw.Recovery(log))
	e.Use(mw.RequestLog(log))
	e.Use(mw.Metrics())

	handlers.RegisterHealthRoutes(e, handlers.NewHealthHandler(d.Store))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("Bargain Tracker API", version))
	handlers.RegisterBargainRoutes(api, handlers.NewBargainHandler(d.Bargains, d.Tracker))
	handlers.RegisterSubscriptionRoutes(api, handlers.NewSubscriptionHandler(d.Subscriptions))
	handlers.RegisterProductRoutes(api, handlers.NewProductHandler(d.Products))
	handlers.RegisterDistributeRoutes(api, handlers.NewDistributeHandler(d.Distributor, d.Queue))
	handlers.RegisterJobRoutes(api, handlers.NewJobsHandler(d.Jobs))

	return e
}
