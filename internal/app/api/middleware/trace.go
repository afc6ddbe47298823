package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/adyen-bridge/pkg/logctx"
	"github.com/fatflowers/adyen-bridge/pkg/tool"
)

const (
	RequestIDHeader = "X-Request-ID"
	maxRequestIDLen = 128
)

// TraceMiddleware assigns the trace id used by logs and the notification log.
// A client supplied X-Request-ID is kept when it is short printable ASCII;
// otherwise a new id is generated. The id is echoed in the response header.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(RequestIDHeader)
		if !validRequestID(traceID) {
			traceID = tool.NewID()
		}

		c.Set(logctx.TraceIDKey, traceID)
		ctx := context.WithValue(c.Request.Context(), logctx.TraceIDKey, traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(RequestIDHeader, traceID)

		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
