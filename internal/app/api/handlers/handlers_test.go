package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	mw "github.com/fatflowers/adyen-bridge/internal/app/api/middleware"
	notificationauth "github.com/fatflowers/adyen-bridge/internal/app/service/notification_auth"
	nh "github.com/fatflowers/adyen-bridge/internal/app/service/notification_handler"
	notificationlog "github.com/fatflowers/adyen-bridge/internal/app/service/notification_log"
	"github.com/fatflowers/adyen-bridge/internal/app/service/order"
	"github.com/fatflowers/adyen-bridge/internal/app/service/session"
	"github.com/fatflowers/adyen-bridge/internal/app/service/statistics"
	models "github.com/fatflowers/adyen-bridge/internal/models"
	"github.com/fatflowers/adyen-bridge/internal/platform/adyen/adyen_checkout"
	"github.com/fatflowers/adyen-bridge/internal/platform/adyen/adyen_notification"
	"github.com/fatflowers/adyen-bridge/internal/platform/db/dbtest"
	"github.com/fatflowers/adyen-bridge/pkg/config"
	"github.com/fatflowers/adyen-bridge/pkg/kafka"
	"github.com/fatflowers/adyen-bridge/pkg/metrics"
	"github.com/fatflowers/adyen-bridge/pkg/types"
)

const (
	testHMACKey   = "44782DEF547AAA06C910C43932B1EB0C71FC68D9D0C057550C48EC2ACF6BA056"
	testJWTSecret = "storefront-secret"
)

type stubCheckout struct{}

func (stubCheckout) CreateSession(_ context.Context, req *adyen_checkout.CreateSessionRequest) (adyen_checkout.Session, error) {
	return adyen_checkout.Session{"id": "CS1", "sessionData": "data", "reference": req.Reference}, nil
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T, skipHMAC bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb := dbtest.New(t)
	log := zap.NewNop().Sugar()
	cfg := &config.Config{
		HostURL: "https://shop.example.com",
		Adyen:   config.AdyenConfig{Environment: "TEST", MerchantAccount: "ShopECOM", ClientKey: "test_KEY"},
		Webhook: config.WebhookConfig{User: "adyen", Password: "pw", HMACKey: testHMACKey, SkipHMAC: skipHMAC},
		Auth:    config.AuthConfig{JWTSecret: testJWTSecret},
	}

	auth, err := notificationauth.New(cfg, log)
	require.NoError(t, err)
	reg, err := nh.NewRegistry(nh.DefaultHandlers(nh.HandlerDeps{Log: log, Now: time.Now})...)
	require.NoError(t, err)
	m, err := metrics.NewNotifications(prometheus.NewRegistry())
	require.NoError(t, err)
	store := order.NewStore(gdb)
	proc := nh.NewProcessor(reg, store, notificationlog.New(gdb, log), kafka.NopPublisher{}, m, log)
	orders := order.NewService(store, log)
	sessions := session.NewService(stubCheckout{}, cfg, log)

	r := gin.New()
	r.Use(mw.RecoveryMiddleware(log), mw.TraceMiddleware(), mw.RequestLoggerMiddleware(log), mw.ErrorHandlerMiddleware(log))
	RegisterHealthRoutes(r, gdb)
	RegisterWebhookRoutes(r, auth, proc, log)
	RegisterStorefrontRoutes(r.Group("/api/v1", mw.BearerAuth(testJWTSecret)), orders, sessions)
	RegisterAdminRoutes(r.Group("/api/v1/admin", gin.BasicAuth(gin.Accounts{"ops": "ops-pw"})), orders, statistics.New(gdb))
	return &testServer{router: r, db: gdb}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) seedOrder(t *testing.T, no string, ps types.PaymentStatus) {
	t.Helper()
	require.NoError(t, s.db.Create(&models.Order{OrderNo: no, CustomerID: "cust-1", BasketID: "b-1", Currency: "EUR", Total: 1000, Status: types.OrderStatusNew, PaymentStatus: ps}).Error)
}

func (s *testServer) order(t *testing.T, no string) *models.Order {
	t.Helper()
	var o models.Order
	require.NoError(t, s.db.First(&o, "order_no = ?", no).Error)
	return &o
}

func basicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func bearer(t *testing.T, sub string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{Subject: sub, ExpiresAt: time.Now().Add(time.Hour).Unix()}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + tok
}

func webhookBody(t *testing.T, sign bool, items ...adyen_notification.NotificationRequestItem) []byte {
	t.Helper()
	key, err := adyen_notification.DecodeHMACKey(testHMACKey)
	require.NoError(t, err)
	req := adyen_notification.NotificationRequest{Live: "false"}
	for i := range items {
		if sign {
			items[i].AdditionalData = map[string]string{adyen_notification.AdditionalDataHMACSignature: adyen_notification.CalculateHMAC(&items[i], key)}
		}
		req.NotificationItems = append(req.NotificationItems, adyen_notification.NotificationItem{NotificationRequestItem: items[i]})
	}
	b, err := json.Marshal(req)
	require.NoError(t, err)
	return b
}

func cancelOrRefund() adyen_notification.NotificationRequestItem {
	return adyen_notification.NotificationRequestItem{
		EventCode:           adyen_notification.EventCodeCancelOrRefund,
		MerchantReference:   "ORD123",
		MerchantAccountCode: "ShopECOM",
		PspReference:        "PSP123",
		Amount:              adyen_notification.Amount{Value: 1000, Currency: "EUR"},
		Success:             "true",
	}
}

func webhookRequest(body []byte, authHeader string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/adyen/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	return req
}

func TestWebhook_CancelOrRefundAccepted(t *testing.T) {
	s := newTestServer(t, false)
	s.seedOrder(t, "ORD123", types.PaymentStatusPaid)

	w := s.do(webhookRequest(webhookBody(t, true, cancelOrRefund()), basicAuth("adyen", "pw")))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `"[accepted]"`, w.Body.String())
	require.Equal(t, types.PaymentStatusNotPaid, s.order(t, "ORD123").PaymentStatus)
}

func TestWebhook_UnsignedAcceptedWhenHMACSkipped(t *testing.T) {
	s := newTestServer(t, true)
	s.seedOrder(t, "ORD123", types.PaymentStatusPaid)

	w := s.do(webhookRequest([]byte(`{"notificationItems":[{"NotificationRequestItem":{"eventCode":"CANCEL_OR_REFUND","merchantReference":"ORD123","success":"true"}}]}`), basicAuth("adyen", "pw")))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `"[accepted]"`, w.Body.String())
	require.Equal(t, types.PaymentStatusNotPaid, s.order(t, "ORD123").PaymentStatus)
}

func TestWebhook_RejectsBeforeMutation(t *testing.T) {
	s := newTestServer(t, false)
	s.seedOrder(t, "ORD123", types.PaymentStatusPaid)

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"wrong password", webhookRequest(webhookBody(t, true, cancelOrRefund()), basicAuth("adyen", "nope"))},
		{"missing header", webhookRequest(webhookBody(t, true, cancelOrRefund()), "")},
		{"unsigned", webhookRequest(webhookBody(t, false, cancelOrRefund()), basicAuth("adyen", "pw"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(tt.req)
			require.Equal(t, http.StatusUnauthorized, w.Code)
			require.Contains(t, w.Body.String(), notificationauth.AccessDenied)
			require.Equal(t, types.PaymentStatusPaid, s.order(t, "ORD123").PaymentStatus)
		})
	}

	var n int64
	require.NoError(t, s.db.Model(&models.PaymentNotificationLog{}).Count(&n).Error)
	require.Zero(t, n)
}

func TestWebhook_Failures(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(webhookRequest(webhookBody(t, true, cancelOrRefund()), basicAuth("adyen", "pw")))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "order not found: ORD123")

	w = s.do(webhookRequest([]byte(`{"notificationItems":`), basicAuth("adyen", "pw")))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "invalid notification body")
}

func TestWebhook_UnknownEventCodeAccepted(t *testing.T) {
	s := newTestServer(t, false)

	item := cancelOrRefund()
	item.EventCode = "REPORT_AVAILABLE"
	item.MerchantReference = "unknown"
	w := s.do(webhookRequest(webhookBody(t, true, item), basicAuth("adyen", "pw")))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `"[accepted]"`, w.Body.String())
}

func jsonRequest(t *testing.T, method, path string, body any, auth string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	return req
}

func TestCreateSession(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(jsonRequest(t, http.MethodPost, "/api/v1/sessions", map[string]any{"amount": map[string]any{"value": 1000, "currency": "EUR"}}, bearer(t, "cust-1")))
	require.Equal(t, http.StatusOK, w.Code)

	var res []json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res, 2)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(res[0], &payload))
	var ref string
	require.NoError(t, json.Unmarshal(res[1], &ref))
	require.Equal(t, "CS1", payload["id"])
	require.Equal(t, "test_KEY", payload["clientKey"])
	require.Equal(t, "test", payload["environment"])
	require.Equal(t, ref, payload["reference"])

	w = s.do(jsonRequest(t, http.MethodPost, "/api/v1/sessions", map[string]any{"amount": map[string]any{"value": 1000, "currency": "ZZZ"}}, bearer(t, "cust-1")))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(jsonRequest(t, http.MethodPost, "/api/v1/sessions", map[string]any{"amount": map[string]any{"value": 1000, "currency": "EUR"}}, ""))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrderAPIs(t *testing.T) {
	s := newTestServer(t, false)
	require.NoError(t, s.db.Create(&models.Basket{BasketID: "b-1", CustomerID: "cust-1", Currency: "USD", Total: 2550}).Error)
	tok := bearer(t, "cust-1")

	w := s.do(jsonRequest(t, http.MethodPost, "/api/v1/orders", map[string]any{"basketId": "b-1", "orderNo": "ORD1", "currency": "EUR"}, tok))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"orderNo":"ORD1"}`, w.Body.String())

	w = s.do(jsonRequest(t, http.MethodPost, "/api/v1/orders", map[string]any{"basketId": "b-1", "orderNo": "ORD1", "currency": "EUR"}, tok))
	require.Equal(t, http.StatusConflict, w.Code)

	w = s.do(jsonRequest(t, http.MethodPost, "/api/v1/orders", map[string]any{"orderNo": "ORD2"}, tok))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "basketId, currency")

	w = s.do(jsonRequest(t, http.MethodPost, "/api/v1/orders", map[string]any{"basketId": "nope", "orderNo": "ORD3", "currency": "EUR"}, tok))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(jsonRequest(t, http.MethodPost, "/api/v1/orders", map[string]any{"customerId": "someone-else", "basketId": "b-1", "orderNo": "ORD4", "currency": "EUR"}, tok))
	require.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(jsonRequest(t, http.MethodGet, "/api/v1/orders/ORD1", nil, tok))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"total":25.5,"currency":"EUR"}`, w.Body.String())

	w = s.do(jsonRequest(t, http.MethodGet, "/api/v1/orders/missing", nil, tok))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(jsonRequest(t, http.MethodPost, "/api/v1/orders/ORD1/place", map[string]any{"resultCode": "Authorised"}, tok))
	require.Equal(t, http.StatusOK, w.Code)
	var placed order.PlaceOrderResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &placed))
	require.False(t, placed.Error)
	require.Equal(t, types.OrderStatusNew, s.order(t, "ORD1").Status)
}

func TestPlaceOrder_RefusedFailsOrder(t *testing.T) {
	s := newTestServer(t, false)
	require.NoError(t, s.db.Create(&models.Order{OrderNo: "ORD9", CustomerID: "cust-1", BasketID: "b", Currency: "EUR", Total: 100, Status: types.OrderStatusCreated, PaymentStatus: types.PaymentStatusNotPaid}).Error)

	w := s.do(jsonRequest(t, http.MethodPost, "/api/v1/orders/ORD9/place", map[string]any{"resultCode": "Refused"}, bearer(t, "cust-1")))
	require.Equal(t, http.StatusOK, w.Code)
	var res order.PlaceOrderResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.True(t, res.Error)
	require.Equal(t, types.OrderStatusFailed, s.order(t, "ORD9").Status)
}

func TestOrderAPIs_OtherCustomersOrderIsNotFound(t *testing.T) {
	s := newTestServer(t, false)
	require.NoError(t, s.db.Create(&models.Order{OrderNo: "ORD7", CustomerID: "owner", BasketID: "b", Currency: "EUR", Total: 100, Status: types.OrderStatusCreated, PaymentStatus: types.PaymentStatusNotPaid}).Error)
	tok := bearer(t, "someone-else")

	w := s.do(jsonRequest(t, http.MethodGet, "/api/v1/orders/ORD7", nil, tok))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.NotContains(t, w.Body.String(), "total")

	w = s.do(jsonRequest(t, http.MethodPost, "/api/v1/orders/ORD7/place", map[string]any{"resultCode": "Refused"}, tok))
	require.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(jsonRequest(t, http.MethodPost, "/api/v1/orders/ORD7/place", map[string]any{"resultCode": "Authorised"}, tok))
	require.Equal(t, http.StatusNotFound, w.Code)

	o := s.order(t, "ORD7")
	require.Equal(t, types.OrderStatusCreated, o.Status)
	require.Nil(t, o.FailedAt)

	w = s.do(jsonRequest(t, http.MethodGet, "/api/v1/orders/ORD7", nil, bearer(t, "owner")))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAdminScanOrders(t *testing.T) {
	s := newTestServer(t, false)
	s.seedOrder(t, "ORD1", types.PaymentStatusPaid)
	s.seedOrder(t, "ORD2", types.PaymentStatusNotPaid)

	body := map[string]any{"filters": []map[string]any{{"field": "payment_status", "operator": "eq", "values": []string{"PAID"}}}}
	req := jsonRequest(t, http.MethodPost, "/api/v1/admin/orders/scan", body, basicAuth("ops", "ops-pw"))
	w := s.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Code int                `json:"code"`
		Data ScanOrdersResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, 0, res.Code)
	require.Equal(t, int64(1), res.Data.Total)
	require.Equal(t, "ORD1", res.Data.Items[0].OrderNo)
	require.InDelta(t, 10.0, res.Data.Items[0].TotalMajor, 1e-9)

	w = s.do(jsonRequest(t, http.MethodPost, "/api/v1/admin/orders/scan", body, basicAuth("ops", "wrong")))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOrderStatistic(t *testing.T) {
	s := newTestServer(t, false)
	s.seedOrder(t, "ORD1", types.PaymentStatusPaid)
	s.seedOrder(t, "ORD2", types.PaymentStatusNotPaid)
	s.seedOrder(t, "ORD3", types.PaymentStatusNotPaid)

	body := map[string]any{"data_items": []map[string]any{{"id": "payment_status_count"}}}
	w := s.do(jsonRequest(t, http.MethodPost, "/api/v1/admin/orders/statistics", body, basicAuth("ops", "ops-pw")))
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Code int                               `json:"code"`
		Data statistics.OrderStatisticResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, 0, res.Code)
	require.Equal(t, []statistics.OrderStatisticResponseDataItem{
		{Label: "NOT_PAID", Value: 2},
		{Label: "PAID", Value: 1},
	}, res.Data.DataItems[statistics.StatisticTypePaymentStatusCount])

	w = s.do(jsonRequest(t, http.MethodPost, "/api/v1/admin/orders/statistics", map[string]any{"data_items": []any{nil}}, basicAuth("ops", "ops-pw")))
	require.Equal(t, http.StatusOK, w.Code)
	var failed struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failed))
	require.NotEqual(t, 0, failed.Code)
	require.Contains(t, w.Body.String(), "null entries")
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, false)
	w := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	w = s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
