package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/fatflowers/adyen-bridge/internal/app/api/middleware"
	"github.com/fatflowers/adyen-bridge/internal/app/service/order"
	"github.com/fatflowers/adyen-bridge/internal/app/service/session"
	"github.com/fatflowers/adyen-bridge/pkg/apperr"
)

func bindError(err error) error {
	return apperr.Validation("invalid request body: "+err.Error(), nil)
}

// @Summary      Create payment session
// @Description  Opens an Adyen Checkout session. Responds with [sessionPayload, orderReference].
// @Tags         Storefront
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body session.CreateSessionRequest true "Amount in minor units"
// @Success      200  {array}   interface{}
// @Failure      400  {object}  handlers.RespOK
// @Router       /api/v1/sessions [post]
func ApiCreateSession(svc *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req session.CreateSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(bindError(err))
			return
		}
		payload, reference, err := svc.CreateSession(c.Request.Context(), c.GetString(mw.CustomerIDKey), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, []any{payload, reference})
	}
}

// @Summary      Get order
// @Description  Returns the order total in major units and its currency. Orders of other customers are not found.
// @Tags         Storefront
// @Produce      json
// @Security     BearerAuth
// @Param        orderNo path string true "Order number"
// @Success      200  {object}  order.OrderSummary
// @Failure      404  {object}  handlers.RespOK
// @Router       /api/v1/orders/{orderNo} [get]
func ApiGetOrder(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.GetOrder(c.Request.Context(), c.GetString(mw.CustomerIDKey), c.Param("orderNo"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// @Summary      Create order
// @Description  Creates an order from a basket.
// @Tags         Storefront
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body order.CreateOrderRequest true "Order creation request"
// @Success      200  {object}  order.CreateOrderResponse
// @Failure      400  {object}  handlers.RespOK
// @Failure      404  {object}  handlers.RespOK
// @Failure      409  {object}  handlers.RespOK
// @Router       /api/v1/orders [post]
func ApiCreateOrder(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(bindError(err))
			return
		}
		customerID := c.GetString(mw.CustomerIDKey)
		if req.CustomerID == "" {
			req.CustomerID = customerID
		} else if customerID != "" && req.CustomerID != customerID {
			_ = c.Error(apperr.Auth("customer does not match token").WithStatus(http.StatusForbidden))
			return
		}
		res, err := svc.CreateOrder(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// @Summary      Place order
// @Description  Places the order after the Drop-in reported its result code. Unsuccessful codes fail the order.
// @Tags         Storefront
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orderNo path string true "Order number"
// @Param        request body order.PlaceOrderRequest true "Drop-in result"
// @Success      200  {object}  order.PlaceOrderResult
// @Failure      404  {object}  handlers.RespOK
// @Router       /api/v1/orders/{orderNo}/place [post]
func ApiPlaceOrder(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(bindError(err))
			return
		}
		res, err := svc.PlaceOrder(c.Request.Context(), c.GetString(mw.CustomerIDKey), c.Param("orderNo"), req.ResultCode)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func RegisterStorefrontRoutes(r gin.IRouter, orders *order.Service, sessions *session.Service) {
	r.POST("/sessions", ApiCreateSession(sessions))
	r.GET("/orders/:orderNo", ApiGetOrder(orders))
	r.POST("/orders", ApiCreateOrder(orders))
	r.POST("/orders/:orderNo/place", ApiPlaceOrder(orders))
}
