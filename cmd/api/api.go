package api

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	entitlementHandlers "github.com/licensehq/entitlement-engine/entitlement/handlers"
	"github.com/licensehq/entitlement-engine/entitlement/service"
	"github.com/licensehq/entitlement-engine/framework/connection"
	"github.com/licensehq/entitlement-engine/framework/mid"
	"github.com/licensehq/entitlement-engine/framework/web"
	"github.com/licensehq/entitlement-engine/logger"
)

// API constructs an api with the needed functionality.
type API struct {
	shutdown chan os.Signal
	log      *logger.Logging
	conn     *connection.Connection
}

func NewAPI(shutdown chan os.Signal, logging *logger.Logging, conn *connection.Connection) *API {
	return &API{
		shutdown,
		logging,
		conn,
	}
}

// Build builds the api endpoints with the needed middlewares, and returns http.Handler interface.
func (a *API) Build() http.Handler {
	loggerProvider := logger.FromContext

	// Construct the web.App which holds all routes as well as common Middleware.
	app := web.NewApp(a.shutdown, a.conn, mid.Logger(), mid.Errors(), mid.Panics(), mid.Sentry())

	svc := service.NewEntitlementService(loggerProvider, a.conn)
	entitlement := entitlementHandlers.NewEntitlementHandlerWithService(loggerProvider, svc)
	requireCap := mid.RequireCapabilityFunc(svc)

	app.Get("/health", health)

	tenantGroup := web.NewGroup(app, "/tenants/:tenantID/entitlements", mid.ValidatePathParamsNotEmpty("tenantID"))
	{
		tenantGroup.Post("/state", entitlement.SetState)
		tenantGroup.Get("/state", entitlement.GetState)
		tenantGroup.Get("/caps/:cap", entitlement.CheckCapability, mid.ValidatePathParamsNotEmpty("cap"))

		// The event history is itself a gated feature.
		auditGroup := tenantGroup.NewSubgroup("/events", requireCap("audit-log"))
		{
			auditGroup.Get("", entitlement.ListEvents)
		}
	}

	return app
}

func health(ctx *gin.Context) error {
	return web.Respond(ctx, nil, http.StatusOK)
}
