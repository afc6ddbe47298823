package order

import (
	models "github.com/fatflowers/adyen-bridge/internal/models"
	types "github.com/fatflowers/adyen-bridge/pkg/types"
)

type CreateOrderRequest struct {
	CustomerID string `json:"customerId"`
	BasketID   string `json:"basketId"`
	OrderNo    string `json:"orderNo"`
	Currency   string `json:"currency"`
}

type CreateOrderResponse struct {
	OrderNo string `json:"orderNo"`
}

// OrderSummary is what the storefront needs to start a payment for an order.
type OrderSummary struct {
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
}

type PlaceOrderRequest struct {
	ResultCode types.ResultCode `json:"resultCode"`
}

type PlaceOrderResult struct {
	OrderNo string            `json:"orderNo"`
	Status  types.OrderStatus `json:"status"`
	Error   bool              `json:"error"`
	Message string            `json:"message,omitempty"`
}

type ScanOrdersRequest struct {
	Filters   types.CommonFilters `json:"filters"`
	From      int                 `json:"from"`
	Size      int                 `json:"size"`
	SortBy    string              `json:"sort_by"`
	SortOrder string              `json:"sort_order"`
}

type ScanOrdersResponse struct {
	Items []*models.Order `json:"items"`
	Total int64           `json:"total"`
}
