package models

import (
	"time"

	"github.com/fatflowers/adyen-bridge/pkg/types"
)

// Order is the storefront order a notification's merchant reference points at.
type Order struct {
	OrderNo    string `gorm:"column:order_no;primary_key;type:varchar(64)" json:"order_no"`
	CustomerID string `gorm:"column:customer_id;type:varchar(64);index" json:"customer_id"`
	BasketID   string `gorm:"column:basket_id;type:varchar(64);not null" json:"basket_id"`
	Currency   string `gorm:"column:currency;type:varchar(3);not null" json:"currency"`
	// Total is stored in minor units of Currency.
	Total         int64               `gorm:"column:total;type:bigint;not null" json:"total"`
	Status        types.OrderStatus   `gorm:"column:status;type:varchar(32);not null" json:"status"`
	PaymentStatus types.PaymentStatus `gorm:"column:payment_status;type:varchar(32);not null" json:"payment_status"`
	PspReference  *string             `gorm:"column:psp_reference;type:varchar(64)" json:"psp_reference"`
	PaymentMethod *string             `gorm:"column:payment_method;type:varchar(64)" json:"payment_method"`
	PlacedAt      *time.Time          `gorm:"column:placed_at;default:null" json:"placed_at"`
	FailedAt      *time.Time          `gorm:"column:failed_at;default:null" json:"failed_at"`

	History   []*OrderHistory `gorm:"foreignKey:OrderNo;references:OrderNo" json:"history,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// Place moves a created order to NEW. Placing an already placed order is a no-op.
func (o *Order) Place(at time.Time) error {
	if o.Status.Terminal() {
		return ErrOrderNotPlaceable
	}
	switch o.Status {
	case types.OrderStatusNew:
		return nil
	case types.OrderStatusCreated:
		o.Status = types.OrderStatusNew
		o.PlacedAt = &at
		return nil
	default:
		return ErrOrderNotPlaceable
	}
}

// Fail moves a created order to FAILED. Orders already placed are left alone and
// reported as false.
func (o *Order) Fail(at time.Time) bool {
	switch o.Status {
	case types.OrderStatusFailed:
		return true
	case types.OrderStatusCreated:
		o.Status = types.OrderStatusFailed
		o.FailedAt = &at
		return true
	default:
		return false
	}
}

func (o *Order) SetPaymentStatus(s types.PaymentStatus) {
	o.PaymentStatus = s
}

// AppendHistory records a tracking entry unless an identical one already exists,
// which keeps redelivered notifications from growing the log.
func (o *Order) AppendHistory(eventCode, pspReference, message string) *OrderHistory {
	for _, h := range o.History {
		if h.EventCode == eventCode && h.PspReference == pspReference && h.Message == message {
			return h
		}
	}
	h := &OrderHistory{
		OrderNo:      o.OrderNo,
		EventCode:    eventCode,
		PspReference: pspReference,
		Message:      message,
	}
	o.History = append(o.History, h)
	return h
}

// OwnedBy reports whether the order belongs to customerID. Orders without a
// customer belong to nobody.
func (o *Order) OwnedBy(customerID string) bool {
	return customerID != "" && o.CustomerID == customerID
}

// Cancel moves the order to CANCELLED. Failed orders stay failed and report false.
func (o *Order) Cancel() bool {
	if o.Status == types.OrderStatusFailed {
		return false
	}
	o.Status = types.OrderStatusCancelled
	return true
}
