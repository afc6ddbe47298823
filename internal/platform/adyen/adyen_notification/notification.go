package adyen_notification

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type EventCode string

// https://docs.adyen.com/development-resources/webhooks/webhook-types
const (
	EventCodeAuthorisation  EventCode = "AUTHORISATION"
	EventCodeCancellation   EventCode = "CANCELLATION"
	EventCodeCancelOrRefund EventCode = "CANCEL_OR_REFUND"
	EventCodeCapture        EventCode = "CAPTURE"
	EventCodeCaptureFailed  EventCode = "CAPTURE_FAILED"
	EventCodeOfferClosed    EventCode = "OFFER_CLOSED"
	EventCodeOrderClosed    EventCode = "ORDER_CLOSED"
	EventCodeOrderOpened    EventCode = "ORDER_OPENED"
	EventCodePending        EventCode = "PENDING"
	EventCodeRefund         EventCode = "REFUND"
)

const AdditionalDataHMACSignature = "hmacSignature"

type Amount struct {
	Value    int64  `json:"value"`
	Currency string `json:"currency"`
}

// NotificationRequestItem is a single event inside an Adyen notification batch.
type NotificationRequestItem struct {
	AdditionalData      map[string]string `json:"additionalData,omitempty"`
	Amount              Amount            `json:"amount"`
	EventCode           EventCode         `json:"eventCode"`
	EventDate           string            `json:"eventDate,omitempty"`
	MerchantAccountCode string            `json:"merchantAccountCode"`
	MerchantReference   string            `json:"merchantReference"`
	OriginalReference   string            `json:"originalReference,omitempty"`
	PaymentMethod       string            `json:"paymentMethod,omitempty"`
	PspReference        string            `json:"pspReference"`
	Reason              string            `json:"reason,omitempty"`
	Success             string            `json:"success"`
	Operations          []string          `json:"operations,omitempty"`
}

// IsSuccess reports whether Adyen flagged the event as successful.
func (i *NotificationRequestItem) IsSuccess() bool {
	ok, err := strconv.ParseBool(i.Success)
	return err == nil && ok
}

// Signature returns the hmacSignature Adyen attached to the item, if any.
func (i *NotificationRequestItem) Signature() string {
	if i.AdditionalData == nil {
		return ""
	}
	return i.AdditionalData[AdditionalDataHMACSignature]
}

// Redacted returns a copy without the HMAC signature, suitable for logs and storage.
func (i NotificationRequestItem) Redacted() NotificationRequestItem {
	if len(i.AdditionalData) == 0 {
		return i
	}
	data := make(map[string]string, len(i.AdditionalData))
	for k, v := range i.AdditionalData {
		if k == AdditionalDataHMACSignature {
			continue
		}
		data[k] = v
	}
	i.AdditionalData = data
	return i
}

type NotificationItem struct {
	NotificationRequestItem NotificationRequestItem `json:"NotificationRequestItem"`
}

// NotificationRequest is the JSON body Adyen posts to the webhook endpoint.
type NotificationRequest struct {
	Live              string             `json:"live"`
	NotificationItems []NotificationItem `json:"notificationItems"`
}

// Items returns the request items in delivery order.
func (r *NotificationRequest) Items() []*NotificationRequestItem {
	res := make([]*NotificationRequestItem, 0, len(r.NotificationItems))
	for i := range r.NotificationItems {
		res = append(res, &r.NotificationItems[i].NotificationRequestItem)
	}
	return res
}

// Parse decodes a raw webhook body. A batch without items is rejected.
func Parse(body []byte) (*NotificationRequest, error) {
	var req NotificationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("failed to decode notification: %w", err)
	}
	if len(req.NotificationItems) == 0 {
		return nil, fmt.Errorf("notification contains no items")
	}
	return &req, nil
}
