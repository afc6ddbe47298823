package models

import "time"

// Basket is the storefront basket an order is created from.
type Basket struct {
	BasketID   string `gorm:"column:basket_id;primary_key;type:varchar(64)" json:"basket_id"`
	CustomerID string `gorm:"column:customer_id;type:varchar(64);index" json:"customer_id"`
	Currency   string `gorm:"column:currency;type:varchar(3)" json:"currency"`
	// Total is stored in minor units of Currency.
	Total     int64     `gorm:"column:total;type:bigint;not null" json:"total"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Basket) TableName() string { return "baskets" }
