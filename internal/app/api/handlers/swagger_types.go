package handlers

import (
	"github.com/fatflowers/adyen-bridge/internal/app/service/statistics"
	"github.com/fatflowers/adyen-bridge/pkg/response"
)

// RespOK is a generic envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespScanOrders wraps ScanOrdersResponse in the standard envelope.
type RespScanOrders struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ScanOrdersResponse       `json:"data"`
}

type RespOrderStatistic struct {
	Code    response.APIResponseCode          `json:"code"`
	Message string                            `json:"message"`
	Data    statistics.OrderStatisticResponse `json:"data"`
}

// SwaggerNotificationRequest documents the Adyen notification batch.
type SwaggerNotificationRequest struct {
	Live              string `json:"live" example:"false"`
	NotificationItems []struct {
		NotificationRequestItem SwaggerNotificationItem `json:"NotificationRequestItem"`
	} `json:"notificationItems"`
}

type SwaggerNotificationItem struct {
	EventCode           string            `json:"eventCode" example:"AUTHORISATION"`
	MerchantReference   string            `json:"merchantReference" example:"ORD123"`
	PspReference        string            `json:"pspReference" example:"7914073381342284"`
	OriginalReference   string            `json:"originalReference"`
	MerchantAccountCode string            `json:"merchantAccountCode" example:"ShopECOM"`
	Success             string            `json:"success" example:"true"`
	Reason              string            `json:"reason"`
	PaymentMethod       string            `json:"paymentMethod" example:"visa"`
	EventDate           string            `json:"eventDate" example:"2024-05-01T12:00:00+02:00"`
	Amount              SwaggerAmount     `json:"amount"`
	AdditionalData      map[string]string `json:"additionalData"`
}

type SwaggerAmount struct {
	Value    int64  `json:"value" example:"1000"`
	Currency string `json:"currency" example:"EUR"`
}
