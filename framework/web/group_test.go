package web

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func tagMiddleware(calls *[]string, tag string) Middleware {
	return func(handler Handler) Handler {
		return func(ctx *gin.Context) error {
			*calls = append(*calls, tag)
			return handler(ctx)
		}
	}
}

func TestNewSubgroup_InheritsPrefixAndMiddlewares(t *testing.T) {
	var calls []string

	parent := NewGroup(&App{}, "/tenants/:tenantID", tagMiddleware(&calls, "parent"))
	child := parent.NewSubgroup("/events", tagMiddleware(&calls, "gate"))

	assert.Equal(t, "/tenants/:tenantID/events", child.prefixPath)

	handler := wrapMiddleware(child.middlewares, func(ctx *gin.Context) error {
		calls = append(calls, "handler")
		return nil
	})

	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.NoError(t, handler(ctx))
	assert.Equal(t, []string{"parent", "gate", "handler"}, calls)
}
