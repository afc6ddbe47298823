package models

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentNotificationLogStatus string

const (
	PaymentNotificationLogStatusReceived     PaymentNotificationLogStatus = "received"
	PaymentNotificationLogStatusHandled      PaymentNotificationLogStatus = "handled"
	PaymentNotificationLogStatusSkipped      PaymentNotificationLogStatus = "skipped"
	PaymentNotificationLogStatusHandleFailed PaymentNotificationLogStatus = "handle_failed"
)

// PaymentNotificationLog is stored for every received notification item and
// is handed to event handlers alongside the order.
type PaymentNotificationLog struct {
	ID                string                       `gorm:"column:id;type:uuid;primary_key" json:"id"`
	EventCode         string                       `gorm:"column:event_code;type:varchar(64);not null;index" json:"event_code"`
	MerchantReference string                       `gorm:"column:merchant_reference;type:varchar(64);index" json:"merchant_reference"`
	PspReference      string                       `gorm:"column:psp_reference;type:varchar(64)" json:"psp_reference"`
	Success           bool                         `gorm:"column:success" json:"success"`
	Live              bool                         `gorm:"column:live" json:"live"`
	TraceID           string                       `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	NotificationTime  time.Time                    `gorm:"column:notification_time" json:"notification_time"`
	Data              datatypes.JSON               `gorm:"column:data;type:jsonb" json:"data"`
	Result            *datatypes.JSON              `gorm:"column:result;type:jsonb" json:"result"`
	Status            PaymentNotificationLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	CreatedAt         time.Time                    `json:"created_at"`
	UpdatedAt         time.Time                    `json:"updated_at"`
}

func (PaymentNotificationLog) TableName() string { return "payment_notification_log" }
