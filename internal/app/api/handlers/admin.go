package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/fatflowers/adyen-bridge/internal/app/service/order"
	"github.com/fatflowers/adyen-bridge/internal/app/service/statistics"
	models "github.com/fatflowers/adyen-bridge/internal/models"
	"github.com/fatflowers/adyen-bridge/pkg/currency"
	"github.com/fatflowers/adyen-bridge/pkg/response"
	"github.com/fatflowers/adyen-bridge/pkg/types"
)

type ScanOrdersRequest struct {
	Filters   types.CommonFilters `json:"filters"`
	From      int                 `json:"from"`
	Size      int                 `json:"size"`
	SortBy    string              `json:"sort_by"`
	SortOrder string              `json:"sort_order"`
}

type OrderItem struct {
	OrderNo       string              `json:"order_no"`
	CustomerID    string              `json:"customer_id"`
	BasketID      string              `json:"basket_id"`
	Currency      string              `json:"currency"`
	Total         int64               `json:"total"`
	TotalMajor    float64             `json:"total_major"`
	Status        types.OrderStatus   `json:"status"`
	PaymentStatus types.PaymentStatus `json:"payment_status"`
	PspReference  *string             `json:"psp_reference"`
	PaymentMethod *string             `json:"payment_method"`
	CreatedAt     string              `json:"created_at"`
	UpdatedAt     string              `json:"updated_at"`
}

func toOrderItem(m *models.Order) *OrderItem {
	major, _ := currency.ToMajorUnits(m.Total, m.Currency)
	return &OrderItem{
		OrderNo:       m.OrderNo,
		CustomerID:    m.CustomerID,
		BasketID:      m.BasketID,
		Currency:      m.Currency,
		Total:         m.Total,
		TotalMajor:    major,
		Status:        m.Status,
		PaymentStatus: m.PaymentStatus,
		PspReference:  m.PspReference,
		PaymentMethod: m.PaymentMethod,
		CreatedAt:     m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:     m.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

type ScanOrdersResponse struct {
	Items []*OrderItem `json:"items"`
	Total int64        `json:"total"`
}

// @Summary      Scan Orders (Admin)
// @Description  Retrieves a paginated and filterable list of orders.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ScanOrdersRequest true "Filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespScanOrders
// @Router       /api/v1/admin/orders/scan [post]
func ApiScanOrders(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ScanOrdersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.ScanOrders(c.Request.Context(), &order.ScanOrdersRequest{Filters: req.Filters, From: req.From, Size: req.Size, SortBy: req.SortBy, SortOrder: req.SortOrder})
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		items := lo.Map(res.Items, func(it *models.Order, _ int) *OrderItem { return toOrderItem(it) })
		c.JSON(http.StatusOK, response.OKT(&ScanOrdersResponse{Items: items, Total: res.Total}))
	}
}

// @Summary      Order Statistics (Admin)
// @Description  Computes daily order counts, paid amounts and status breakdowns.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.OrderStatisticRequest true "Data items and filters"
// @Success      200  {object}  handlers.RespOrderStatistic
// @Router       /api/v1/admin/orders/statistics [post]
func ApiOrderStatistic(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.OrderStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.GetOrderStatistic(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, orders *order.Service, stats *statistics.Service) {
	r.POST("/orders/scan", ApiScanOrders(orders))
	r.POST("/orders/statistics", ApiOrderStatistic(stats))
}
