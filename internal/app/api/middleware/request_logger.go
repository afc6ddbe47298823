package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/adyen-bridge/pkg/logctx"
)

// RequestLoggerMiddleware stores a logger carrying the trace id and route on
// both the gin context and the request context.
func RequestLoggerMiddleware(base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLogger := base.With(
			"trace_id", c.GetString(logctx.TraceIDKey),
			"method", c.Request.Method,
			"route", c.FullPath(),
		)
		c.Set(logctx.LoggerKey, reqLogger)
		c.Request = c.Request.WithContext(logctx.WithLogger(c.Request.Context(), reqLogger))
		c.Next()
	}
}
