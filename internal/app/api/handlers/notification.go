package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mw "github.com/fatflowers/adyen-bridge/internal/app/api/middleware"
	notificationauth "github.com/fatflowers/adyen-bridge/internal/app/service/notification_auth"
	nh "github.com/fatflowers/adyen-bridge/internal/app/service/notification_handler"
	"github.com/fatflowers/adyen-bridge/pkg/apperr"
	"github.com/fatflowers/adyen-bridge/pkg/logctx"
)

// Accepted is the acknowledgement Adyen expects for a delivered batch.
const Accepted = "[accepted]"

// @Summary      Adyen Webhook
// @Description  Receives Adyen standard notifications. Requires HTTP Basic auth and, unless disabled, an HMAC signature per item.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        payload body SwaggerNotificationRequest true "Adyen notification batch"
// @Success      200  {string}  string  "[accepted]"
// @Failure      401  {object}  handlers.RespOK
// @Failure      500  {string}  string  "error message"
// @Router       /adyen/webhook [post]
// ApiAdyenWebhook handles Adyen notification batches
func ApiAdyenWebhook(proc *nh.Processor, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var raw []byte
		if v, ok := c.Get(mw.RawBodyKey); ok {
			raw, _ = v.([]byte)
		} else {
			b, err := io.ReadAll(c.Request.Body)
			if err != nil {
				_ = c.Error(apperr.Parse("failed to read notification body", err))
				return
			}
			raw = b
		}
		logctx.FromCtx(c.Request.Context(), log).Infow("webhook_adyen_received", "bytes", len(raw))

		res := proc.Process(c.Request.Context(), raw)
		if !res.Success {
			logctx.FromCtx(c.Request.Context(), log).Errorw("webhook_adyen_handle_error", "error", res.Err.Error())
			c.JSON(http.StatusInternalServerError, res.Err.Error())
			return
		}
		logctx.FromCtx(c.Request.Context(), log).Infow("webhook_adyen_handled", "items", len(res.Items), "pending", res.Pending)
		c.JSON(http.StatusOK, Accepted)
	}
}

func RegisterWebhookRoutes(r gin.IRouter, auth *notificationauth.Authenticator, proc *nh.Processor, log *zap.SugaredLogger) {
	r.POST("/adyen/webhook", mw.WebhookBasicAuth(auth, log), mw.WebhookHMAC(auth, log), ApiAdyenWebhook(proc, log))
}
