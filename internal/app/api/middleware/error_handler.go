package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/adyen-bridge/pkg/apperr"
	"github.com/fatflowers/adyen-bridge/pkg/logctx"
	"github.com/fatflowers/adyen-bridge/pkg/response"
)

// ErrorHandlerMiddleware renders the last error a handler attached with c.Error
// when nothing was written yet.
func ErrorHandlerMiddleware(base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := apperr.HTTPStatus(err)
		lg := logctx.FromCtx(c.Request.Context(), base)
		if status >= http.StatusInternalServerError {
			lg.Errorw("request_failed", "status", status, "error", err.Error())
		} else {
			lg.Infow("request_rejected", "status", status, "error", err.Error())
		}
		c.JSON(status, response.ErrorMsg(response.CodeFromStatus(status), apperr.PublicMessage(err)))
	}
}

// RecoveryMiddleware turns a panic into the generic technical error.
func RecoveryMiddleware(base *zap.SugaredLogger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logctx.FromCtx(c.Request.Context(), base).Errorw("panic_recovered", "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorMsg(response.APIResponseCodeError, apperr.TechnicalErrorMessage))
	})
}
