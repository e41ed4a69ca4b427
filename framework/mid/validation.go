package mid

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/licensehq/entitlement-engine/framework/web"
)

// ValidatePathParamsNotEmpty rejects the request with a 400 before the
// handler runs if any of the named path params is empty.
func ValidatePathParamsNotEmpty(params ...string) web.Middleware {
	f := func(handler web.Handler) web.Handler {
		h := func(ctx *gin.Context) error {
			for _, param := range params {
				if ctx.Param(param) == "" {
					return web.NewRequestError(errors.New("error: "+param+" cannot be empty"), http.StatusBadRequest)
				}
			}

			return handler(ctx)
		}

		return h
	}

	return f
}
