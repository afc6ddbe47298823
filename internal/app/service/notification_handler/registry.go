package notification_handler

import (
	"context"
	"fmt"
	"sync"

	models "github.com/fatflowers/adyen-bridge/internal/models"
	"github.com/fatflowers/adyen-bridge/internal/platform/adyen/adyen_notification"
)

// HandlerInput is what an event handler works on. Handlers mutate Order only;
// the caller owns the transaction that persists it.
type HandlerInput struct {
	Order  *models.Order
	Item   *adyen_notification.NotificationRequestItem
	Record *models.PaymentNotificationLog
}

type HandlerResult struct {
	// Pending asks the responder to report the payment as still in progress.
	Pending bool `json:"pending,omitempty"`
}

// EventHandler applies one Adyen event code to an order. Implementations must
// be idempotent since Adyen redelivers notifications.
type EventHandler interface {
	EventCode() adyen_notification.EventCode
	Handle(ctx context.Context, in *HandlerInput) (*HandlerResult, error)
}

// Registry maps event codes to their handler. New codes are supported by
// registering a handler.
type Registry struct {
	mu       sync.RWMutex
	handlers map[adyen_notification.EventCode]EventHandler
}

func NewRegistry(handlers ...EventHandler) (*Registry, error) {
	r := &Registry{handlers: make(map[adyen_notification.EventCode]EventHandler, len(handlers))}
	for _, h := range handlers {
		if err := r.Register(h); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(h EventHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	code := h.EventCode()
	if _, dup := r.handlers[code]; dup {
		return fmt.Errorf("handler already registered for %s", code)
	}
	r.handlers[code] = h
	return nil
}

func (r *Registry) Lookup(code adyen_notification.EventCode) (EventHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[code]
	return h, ok
}

// DefaultHandlers returns one handler per supported event code.
func DefaultHandlers(deps HandlerDeps) []EventHandler {
	return []EventHandler{
		&authorisationHandler{deps},
		&cancelOrRefundHandler{deps},
		&cancellationHandler{deps},
		&refundHandler{deps},
		&captureHandler{deps},
		&captureFailedHandler{deps},
		&offerClosedHandler{deps},
		&orderClosedHandler{deps},
		&pendingHandler{deps},
		&orderOpenedHandler{deps},
	}
}
