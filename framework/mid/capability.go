package mid

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/licensehq/entitlement-engine/common"
	"github.com/licensehq/entitlement-engine/framework/web"
)

// ErrCapabilityNotGranted is returned when a tenant's visible capability set
// does not include the capability gating a route.
var ErrCapabilityNotGranted = errors.New("capability is not granted to tenant")

//go:generate mockery --name CapabilityChecker --output ./mocks
type CapabilityChecker interface {
	TenantHasCap(ctx context.Context, tenantID, cap string) (bool, error)
}

// RequireCapabilityFunc returns a web.Middleware generator function.
//
// The returned function takes a capability name and returns a web.Middleware
// that evaluates whether the tenant owns that capability before letting the
// request through. The tenant id is taken from the `tenantID` path param, or
// from the context value the authentication layer sets.
//
// Example usage:
//
//	requireCap := RequireCapabilityFunc(entitlementService)
//	brandingGroup := tenantGroup.NewSubgroup("/branding", requireCap("branding"))
func RequireCapabilityFunc(checker CapabilityChecker) func(cap string) web.Middleware {
	return func(cap string) web.Middleware {
		return func(handler web.Handler) web.Handler {
			return func(ctx *gin.Context) error {
				if ctx.GetBool(common.CtxKeys.PrivilegedUser) {
					return handler(ctx)
				}

				tenantID := ctx.Param("tenantID")
				if tenantID == "" {
					tenantID = ctx.GetString(common.CtxKeys.TenantID)
				}

				if tenantID == "" {
					return web.NewRequestError(errors.New("no tenant id provided for capability check"), http.StatusBadRequest)
				}

				if ok, err := checker.TenantHasCap(ctx, tenantID, cap); err != nil || !ok {
					return web.NewRequestError(ErrCapabilityNotGranted, http.StatusForbidden)
				}

				return handler(ctx)
			}
		}
	}
}
