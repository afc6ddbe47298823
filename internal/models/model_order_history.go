package models

import "time"

// OrderHistory is an append-only tracking entry on an order.
type OrderHistory struct {
	ID           string    `gorm:"column:id;primary_key;type:uuid" json:"id"`
	OrderNo      string    `gorm:"column:order_no;type:varchar(64);not null;index" json:"order_no"`
	EventCode    string    `gorm:"column:event_code;type:varchar(64)" json:"event_code"`
	PspReference string    `gorm:"column:psp_reference;type:varchar(64)" json:"psp_reference"`
	Message      string    `gorm:"column:message;type:text;not null" json:"message"`
	CreatedAt    time.Time `json:"created_at"`
}

func (OrderHistory) TableName() string { return "order_history" }
