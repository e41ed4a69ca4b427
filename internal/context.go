package internal

import (
	"time"

	"github.com/gin-gonic/gin"
)

// CtxDataKey is the gin context key under which per-request data is stored.
const CtxDataKey = "request-data"

// Data carries per-request state shared between the framework middlewares:
// the trace id for log correlation, the status code once a handler has
// responded, and the request start time for latency reporting.
type Data struct {
	TraceID    string
	StatusCode int
	Now        time.Time
}

// ContextWithData stores the request data on the gin context.
func ContextWithData(ctx *gin.Context, data *Data) {
	ctx.Set(CtxDataKey, data)
}

// DataFromContext retrieves the request data from the gin context.
func DataFromContext(ctx *gin.Context) (*Data, bool) {
	v, ok := ctx.Value(CtxDataKey).(*Data)
	return v, ok
}
