package notification_handler

import (
	"context"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/fatflowers/adyen-bridge/internal/platform/adyen/adyen_notification"
	"github.com/fatflowers/adyen-bridge/pkg/logctx"
	"github.com/fatflowers/adyen-bridge/pkg/types"
)

type HandlerDeps struct {
	Log *zap.SugaredLogger
	Now func() time.Time
}

func (d HandlerDeps) logger(ctx context.Context, in *HandlerInput) *zap.SugaredLogger {
	return logctx.FromCtx(ctx, d.Log).With(
		"event_code", in.Item.EventCode,
		"order_no", in.Order.OrderNo,
		"psp_reference", in.Item.PspReference,
	)
}

func withReason(msg, reason string) string {
	if reason == "" {
		return msg
	}
	return msg + ": " + reason
}

func (d HandlerDeps) record(in *HandlerInput, msg string) {
	in.Order.AppendHistory(string(in.Item.EventCode), in.Item.PspReference, msg)
}

// AUTHORISATION settles the payment status and places the order. A refused
// authorisation fails an order that was never placed.
type authorisationHandler struct{ HandlerDeps }

func (h *authorisationHandler) EventCode() adyen_notification.EventCode {
	return adyen_notification.EventCodeAuthorisation
}

func (h *authorisationHandler) Handle(ctx context.Context, in *HandlerInput) (*HandlerResult, error) {
	o, item := in.Order, in.Item
	if !item.IsSuccess() {
		o.Fail(h.Now())
		h.record(in, withReason("authorisation failed", item.Reason))
		h.logger(ctx, in).Infow("authorisation_refused", "reason", item.Reason)
		return &HandlerResult{}, nil
	}

	status := types.PaymentStatusPaid
	switch {
	case !strings.EqualFold(item.Amount.Currency, o.Currency):
		// amounts in another currency cannot prove the order is covered
		status = types.PaymentStatusPartiallyPaid
		h.logger(ctx, in).Warnw("authorisation_currency_mismatch", "order_currency", o.Currency, "amount_currency", item.Amount.Currency)
	case item.Amount.Value < o.Total:
		status = types.PaymentStatusPartiallyPaid
	}
	o.SetPaymentStatus(status)
	if item.PspReference != "" {
		o.PspReference = lo.ToPtr(item.PspReference)
	}
	if item.PaymentMethod != "" {
		o.PaymentMethod = lo.ToPtr(item.PaymentMethod)
	}
	if err := o.Place(h.Now()); err != nil {
		// a paid order that was already failed or cancelled keeps its status
		h.logger(ctx, in).Warnw("authorised_order_not_placeable", "status", o.Status)
	}
	h.record(in, "authorised")
	return &HandlerResult{}, nil
}

type cancelOrRefundHandler struct{ HandlerDeps }

func (h *cancelOrRefundHandler) EventCode() adyen_notification.EventCode {
	return adyen_notification.EventCodeCancelOrRefund
}

func (h *cancelOrRefundHandler) Handle(ctx context.Context, in *HandlerInput) (*HandlerResult, error) {
	in.Order.SetPaymentStatus(types.PaymentStatusNotPaid)
	h.record(in, "cancelled or refunded")
	return &HandlerResult{}, nil
}

type cancellationHandler struct{ HandlerDeps }

func (h *cancellationHandler) EventCode() adyen_notification.EventCode {
	return adyen_notification.EventCodeCancellation
}

func (h *cancellationHandler) Handle(ctx context.Context, in *HandlerInput) (*HandlerResult, error) {
	if !in.Item.IsSuccess() {
		h.record(in, withReason("cancellation failed", in.Item.Reason))
		return &HandlerResult{}, nil
	}
	in.Order.SetPaymentStatus(types.PaymentStatusNotPaid)
	in.Order.Cancel()
	h.record(in, "cancelled")
	return &HandlerResult{}, nil
}

type refundHandler struct{ HandlerDeps }

func (h *refundHandler) EventCode() adyen_notification.EventCode {
	return adyen_notification.EventCodeRefund
}

func (h *refundHandler) Handle(ctx context.Context, in *HandlerInput) (*HandlerResult, error) {
	if !in.Item.IsSuccess() {
		h.record(in, withReason("refund failed", in.Item.Reason))
		return &HandlerResult{}, nil
	}
	in.Order.SetPaymentStatus(types.PaymentStatusNotPaid)
	h.record(in, "refunded")
	return &HandlerResult{}, nil
}

type captureHandler struct{ HandlerDeps }

func (h *captureHandler) EventCode() adyen_notification.EventCode {
	return adyen_notification.EventCodeCapture
}

func (h *captureHandler) Handle(ctx context.Context, in *HandlerInput) (*HandlerResult, error) {
	if !in.Item.IsSuccess() {
		h.record(in, withReason("capture failed", in.Item.Reason))
		return &HandlerResult{}, nil
	}
	in.Order.SetPaymentStatus(types.PaymentStatusPaid)
	h.record(in, "captured")
	return &HandlerResult{}, nil
}

type captureFailedHandler struct{ HandlerDeps }

func (h *captureFailedHandler) EventCode() adyen_notification.EventCode {
	return adyen_notification.EventCodeCaptureFailed
}

func (h *captureFailedHandler) Handle(ctx context.Context, in *HandlerInput) (*HandlerResult, error) {
	h.record(in, withReason("capture failed", in.Item.Reason))
	h.logger(ctx, in).Warnw("capture_failed", "reason", in.Item.Reason)
	return &HandlerResult{}, nil
}

// OFFER_CLOSED means the shopper never completed the payment.
type offerClosedHandler struct{ HandlerDeps }

func (h *offerClosedHandler) EventCode() adyen_notification.EventCode {
	return adyen_notification.EventCodeOfferClosed
}

func (h *offerClosedHandler) Handle(ctx context.Context, in *HandlerInput) (*HandlerResult, error) {
	if in.Item.IsSuccess() {
		in.Order.Fail(h.Now())
	}
	h.record(in, "offer closed")
	return &HandlerResult{}, nil
}

type orderClosedHandler struct{ HandlerDeps }

func (h *orderClosedHandler) EventCode() adyen_notification.EventCode {
	return adyen_notification.EventCodeOrderClosed
}

func (h *orderClosedHandler) Handle(ctx context.Context, in *HandlerInput) (*HandlerResult, error) {
	if !in.Item.IsSuccess() {
		h.record(in, withReason("order closed without full payment", in.Item.Reason))
		return &HandlerResult{}, nil
	}
	in.Order.SetPaymentStatus(types.PaymentStatusPaid)
	h.record(in, "order closed")
	return &HandlerResult{}, nil
}

type pendingHandler struct{ HandlerDeps }

func (h *pendingHandler) EventCode() adyen_notification.EventCode {
	return adyen_notification.EventCodePending
}

func (h *pendingHandler) Handle(ctx context.Context, in *HandlerInput) (*HandlerResult, error) {
	h.logger(ctx, in).Infow("payment_pending")
	return &HandlerResult{Pending: true}, nil
}

type orderOpenedHandler struct{ HandlerDeps }

func (h *orderOpenedHandler) EventCode() adyen_notification.EventCode {
	return adyen_notification.EventCodeOrderOpened
}

func (h *orderOpenedHandler) Handle(ctx context.Context, in *HandlerInput) (*HandlerResult, error) {
	if isWebhookSuccessful(in) {
		h.logger(ctx, in).Infow("order_opened")
	}
	return &HandlerResult{}, nil
}

// isWebhookSuccessful reads the success flag stored on the notification record,
// falling back to the item itself.
func isWebhookSuccessful(in *HandlerInput) bool {
	if in.Record != nil {
		return in.Record.Success
	}
	return in.Item.IsSuccess()
}
