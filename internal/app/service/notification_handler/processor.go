package notification_handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	notificationlog "github.com/fatflowers/adyen-bridge/internal/app/service/notification_log"
	"github.com/fatflowers/adyen-bridge/internal/app/service/order"
	models "github.com/fatflowers/adyen-bridge/internal/models"
	"github.com/fatflowers/adyen-bridge/internal/platform/adyen/adyen_notification"
	"github.com/fatflowers/adyen-bridge/pkg/apperr"
	"github.com/fatflowers/adyen-bridge/pkg/kafka"
	"github.com/fatflowers/adyen-bridge/pkg/logctx"
	"github.com/fatflowers/adyen-bridge/pkg/metrics"
	"github.com/fatflowers/adyen-bridge/pkg/types"
)

// Result is the outcome of a whole notification batch.
type Result struct {
	Success bool
	Pending bool
	Err     error
	Items   []ItemResult
}

type ItemResult struct {
	EventCode         adyen_notification.EventCode `json:"event_code"`
	MerchantReference string                       `json:"merchant_reference"`
	Outcome           string                       `json:"outcome"`
	Pending           bool                         `json:"pending,omitempty"`
	Error             string                       `json:"error,omitempty"`
}

// PaymentStatusChanged is published once a notification changed an order.
type PaymentStatusChanged struct {
	OrderNo       string              `json:"orderNo"`
	Status        types.OrderStatus   `json:"status"`
	PaymentStatus types.PaymentStatus `json:"paymentStatus"`
	EventCode     string              `json:"eventCode"`
	PspReference  string              `json:"pspReference"`
	OccurredAt    time.Time           `json:"occurredAt"`
}

// publishTimeout keeps a slow broker from holding the webhook acknowledgement.
const publishTimeout = 2 * time.Second

type Processor struct {
	registry       *Registry
	orders         *order.Store
	notifLog       *notificationlog.Service
	publisher      kafka.Publisher
	metrics        *metrics.Notifications
	log            *zap.SugaredLogger
	publishTimeout time.Duration
}

func NewProcessor(registry *Registry, orders *order.Store, notifLog *notificationlog.Service, publisher kafka.Publisher, m *metrics.Notifications, log *zap.SugaredLogger) *Processor {
	return &Processor{registry: registry, orders: orders, notifLog: notifLog, publisher: publisher, metrics: m, log: log, publishTimeout: publishTimeout}
}

// Process parses a raw webhook body and applies every item in delivery order,
// each in its own transaction. The batch succeeds only if all items do.
func (p *Processor) Process(ctx context.Context, raw []byte) *Result {
	req, err := adyen_notification.Parse(raw)
	if err != nil {
		logctx.FromCtx(ctx, p.log).Warnw("notification_parse_failed", "error", err.Error())
		return &Result{Err: apperr.Parse("invalid notification body", err)}
	}

	live := req.Live == "true"
	res := &Result{Items: make([]ItemResult, 0, len(req.NotificationItems))}
	var errs []error
	for _, item := range req.Items() {
		ir, err := p.processItem(ctx, item, live)
		if err != nil {
			errs = append(errs, err)
		}
		res.Pending = res.Pending || ir.Pending
		res.Items = append(res.Items, ir)
	}
	res.Err = errors.Join(errs...)
	res.Success = res.Err == nil
	return res
}

func (p *Processor) processItem(ctx context.Context, item *adyen_notification.NotificationRequestItem, live bool) (ItemResult, error) {
	start := time.Now()
	lg := logctx.FromCtx(ctx, p.log).With(
		"event_code", item.EventCode,
		"merchant_reference", item.MerchantReference,
		"psp_reference", item.PspReference,
		"success", item.Success,
	)
	ir := ItemResult{EventCode: item.EventCode, MerchantReference: item.MerchantReference}

	rec, err := p.notifLog.Received(ctx, item, live)
	if err != nil {
		lg.Errorw("notification_log_failed", "error", err.Error())
	}

	h, ok := p.registry.Lookup(item.EventCode)
	if !ok {
		lg.Infow("notification_skipped")
		ir.Outcome = metrics.OutcomeSkipped
		p.notifLog.Finish(ctx, rec, models.PaymentNotificationLogStatusSkipped, map[string]any{"reason": "unhandled event code"})
		p.metrics.Observe(string(item.EventCode), ir.Outcome, time.Since(start))
		return ir, nil
	}

	var (
		hr      *HandlerResult
		changed *PaymentStatusChanged
	)
	err = p.orders.RunInTx(ctx, func(tx *order.TxStore) error {
		o, err := tx.FindOrderForUpdate(ctx, item.MerchantReference)
		if err != nil {
			return err
		}
		status, paymentStatus := o.Status, o.PaymentStatus

		hr, err = h.Handle(ctx, &HandlerInput{Order: o, Item: item, Record: rec})
		if err != nil {
			return apperr.Transaction(fmt.Sprintf("failed to handle %s", item.EventCode), err)
		}
		if err := tx.SaveOrder(ctx, o); err != nil {
			return apperr.Transaction("failed to save order", err)
		}
		if o.Status != status || o.PaymentStatus != paymentStatus {
			changed = &PaymentStatusChanged{
				OrderNo:       o.OrderNo,
				Status:        o.Status,
				PaymentStatus: o.PaymentStatus,
				EventCode:     string(item.EventCode),
				PspReference:  item.PspReference,
				OccurredAt:    time.Now(),
			}
		}
		return nil
	})
	if err != nil {
		if _, typed := apperr.As(err); !typed {
			err = apperr.Transaction("notification transaction failed", err)
		}
		lg.Errorw("notification_failed", "error", err.Error())
		ir.Outcome = metrics.OutcomeFailed
		ir.Error = err.Error()
		p.notifLog.Finish(ctx, rec, models.PaymentNotificationLogStatusHandleFailed, map[string]any{"error": err.Error()})
		p.metrics.Observe(string(item.EventCode), ir.Outcome, time.Since(start))
		return ir, err
	}

	ir.Outcome = metrics.OutcomeHandled
	ir.Pending = hr != nil && hr.Pending
	p.notifLog.Finish(ctx, rec, models.PaymentNotificationLogStatusHandled, map[string]any{"pending": ir.Pending, "changed": changed})
	p.metrics.Observe(string(item.EventCode), ir.Outcome, time.Since(start))
	lg.Infow("notification_handled", "pending", ir.Pending, "order_changed", changed != nil)

	if changed != nil {
		p.publish(ctx, lg, changed)
	}
	return ir, nil
}

// publish sends the change event. Failures are logged only; the order change is
// already committed.
func (p *Processor) publish(ctx context.Context, lg *zap.SugaredLogger, changed *PaymentStatusChanged) {
	pctx, cancel := context.WithTimeout(ctx, p.publishTimeout)
	defer cancel()
	if err := p.publisher.Publish(pctx, changed.OrderNo, changed); err != nil {
		lg.Warnw("order_event_publish_failed", "error", err.Error())
	}
}
