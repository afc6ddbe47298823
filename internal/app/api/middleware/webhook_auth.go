package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	notificationauth "github.com/fatflowers/adyen-bridge/internal/app/service/notification_auth"
	"github.com/fatflowers/adyen-bridge/internal/platform/adyen/adyen_notification"
	"github.com/fatflowers/adyen-bridge/pkg/apperr"
	"github.com/fatflowers/adyen-bridge/pkg/logctx"
	"github.com/fatflowers/adyen-bridge/pkg/response"
)

// RawBodyKey holds the webhook body read by WebhookHMAC.
const RawBodyKey = "rawBody"

const maxWebhookBody = 1 << 20

func denyWebhook(c *gin.Context, base *zap.SugaredLogger, reason string) {
	logctx.FromCtx(c.Request.Context(), base).Warnw("webhook_rejected", "reason", reason, "client_ip", c.ClientIP())
	c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorMsg(response.APIResponseCodeUnauthorized, notificationauth.AccessDenied))
}

// WebhookBasicAuth rejects webhook calls without valid Basic credentials.
func WebhookBasicAuth(auth *notificationauth.Authenticator, base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.VerifyBasic(c.GetHeader("Authorization")); err != nil {
			denyWebhook(c, base, "basic_auth")
			return
		}
		c.Next()
	}
}

// WebhookHMAC verifies every item signature. The body is buffered into the gin
// context under RawBodyKey for the handler; bodies over 1 MiB are refused with 413.
func WebhookHMAC(auth *notificationauth.Authenticator, base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				logctx.FromCtx(c.Request.Context(), base).Warnw("webhook_body_too_large", "limit", tooLarge.Limit)
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, response.ErrorMsg(response.CodeFromStatus(http.StatusRequestEntityTooLarge), "notification body too large"))
				return
			}
			_ = c.Error(apperr.Parse("failed to read notification body", err))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Set(RawBodyKey, body)
		if !auth.HMACEnabled() {
			c.Next()
			return
		}

		req, err := adyen_notification.Parse(body)
		if err != nil {
			// nothing to verify; the processor reports the parse failure
			c.Next()
			return
		}
		if err := auth.VerifyHMAC(req); err != nil {
			denyWebhook(c, base, "hmac")
			return
		}
		c.Next()
	}
}
