package order

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	models "github.com/fatflowers/adyen-bridge/internal/models"
	"github.com/fatflowers/adyen-bridge/internal/platform/db/dbtest"
	"github.com/fatflowers/adyen-bridge/pkg/apperr"
	types "github.com/fatflowers/adyen-bridge/pkg/types"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	gdb := dbtest.New(t)
	svc := NewService(NewStore(gdb), zap.NewNop().Sugar())
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc, gdb
}

func seedBasket(t *testing.T, gdb *gorm.DB, b *models.Basket) {
	t.Helper()
	require.NoError(t, gdb.Create(b).Error)
}

func seedOrder(t *testing.T, gdb *gorm.DB, o *models.Order) {
	t.Helper()
	require.NoError(t, gdb.Create(o).Error)
}

func TestCreateOrder(t *testing.T) {
	svc, gdb := newTestService(t)
	seedBasket(t, gdb, &models.Basket{BasketID: "b-1", CustomerID: "c-1", Currency: "USD", Total: 2599})

	res, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{CustomerID: "c-1", BasketID: "b-1", OrderNo: "ORD1", Currency: "eur"})
	require.NoError(t, err)
	require.Equal(t, "ORD1", res.OrderNo)

	o, err := NewStore(gdb).GetOrder(context.Background(), "ORD1")
	require.NoError(t, err)
	require.Equal(t, types.OrderStatusCreated, o.Status)
	require.Equal(t, types.PaymentStatusNotPaid, o.PaymentStatus)
	require.Equal(t, "EUR", o.Currency)
	require.Equal(t, int64(2599), o.Total)
	require.Len(t, o.History, 1)

	var b models.Basket
	require.NoError(t, gdb.First(&b, "basket_id = ?", "b-1").Error)
	require.Equal(t, "EUR", b.Currency)
}

func TestCreateOrder_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{CustomerID: "c-1"})
	require.Equal(t, http.StatusBadRequest, apperr.HTTPStatus(err))
	ae, ok := apperr.As(err)
	require.True(t, ok)
	require.Equal(t, "missing required fields: basketId, currency, orderNo", ae.Message)
	require.Len(t, ae.Fields, 3)

	_, err = svc.CreateOrder(context.Background(), &CreateOrderRequest{BasketID: "b", OrderNo: "o", Currency: "ZZZ"})
	require.Equal(t, http.StatusBadRequest, apperr.HTTPStatus(err))
	require.ErrorContains(t, err, "invalid currency")
}

func TestCreateOrder_BasketNotFound(t *testing.T) {
	svc, gdb := newTestService(t)
	seedBasket(t, gdb, &models.Basket{BasketID: "b-1", CustomerID: "owner", Currency: "EUR", Total: 100})

	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{BasketID: "missing", OrderNo: "ORD1", Currency: "EUR"})
	require.Equal(t, http.StatusNotFound, apperr.HTTPStatus(err))

	_, err = svc.CreateOrder(context.Background(), &CreateOrderRequest{CustomerID: "intruder", BasketID: "b-1", OrderNo: "ORD1", Currency: "EUR"})
	require.Equal(t, http.StatusNotFound, apperr.HTTPStatus(err))
}

func TestCreateOrder_Duplicate(t *testing.T) {
	svc, gdb := newTestService(t)
	seedBasket(t, gdb, &models.Basket{BasketID: "b-1", Currency: "EUR", Total: 100})

	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{BasketID: "b-1", OrderNo: "ORD1", Currency: "EUR"})
	require.NoError(t, err)
	_, err = svc.CreateOrder(context.Background(), &CreateOrderRequest{BasketID: "b-1", OrderNo: "ORD1", Currency: "EUR"})
	require.Equal(t, http.StatusConflict, apperr.HTTPStatus(err))
}

func TestGetOrder(t *testing.T) {
	svc, gdb := newTestService(t)
	seedOrder(t, gdb, &models.Order{OrderNo: "ORD1", CustomerID: "c-1", BasketID: "b", Currency: "EUR", Total: 1050, Status: types.OrderStatusCreated, PaymentStatus: types.PaymentStatusNotPaid})

	got, err := svc.GetOrder(context.Background(), "c-1", "ORD1")
	require.NoError(t, err)
	require.InDelta(t, 10.5, got.Total, 1e-9)
	require.Equal(t, "EUR", got.Currency)

	_, err = svc.GetOrder(context.Background(), "c-1", "nope")
	require.Equal(t, http.StatusNotFound, apperr.HTTPStatus(err))

	_, err = svc.GetOrder(context.Background(), "c-2", "ORD1")
	require.Equal(t, http.StatusNotFound, apperr.HTTPStatus(err))
}

func TestPlaceOrder_Success(t *testing.T) {
	svc, gdb := newTestService(t)
	seedOrder(t, gdb, &models.Order{OrderNo: "ORD1", CustomerID: "c-1", BasketID: "b", Currency: "EUR", Total: 100, Status: types.OrderStatusCreated, PaymentStatus: types.PaymentStatusNotPaid})

	res, err := svc.PlaceOrder(context.Background(), "c-1", "ORD1", types.ResultCodeAuthorised)
	require.NoError(t, err)
	require.False(t, res.Error)
	require.Equal(t, types.OrderStatusNew, res.Status)

	o, err := NewStore(gdb).GetOrder(context.Background(), "ORD1")
	require.NoError(t, err)
	require.Equal(t, types.OrderStatusNew, o.Status)
	require.NotNil(t, o.PlacedAt)

	// placing twice is harmless
	res, err = svc.PlaceOrder(context.Background(), "c-1", "ORD1", types.ResultCodeAuthorised)
	require.NoError(t, err)
	require.False(t, res.Error)
	o, err = NewStore(gdb).GetOrder(context.Background(), "ORD1")
	require.NoError(t, err)
	require.Len(t, o.History, 1)
}

func TestPlaceOrder_RefusedFailsOrder(t *testing.T) {
	svc, gdb := newTestService(t)
	seedOrder(t, gdb, &models.Order{OrderNo: "ORD1", CustomerID: "c-1", BasketID: "b", Currency: "EUR", Total: 100, Status: types.OrderStatusCreated, PaymentStatus: types.PaymentStatusNotPaid})

	res, err := svc.PlaceOrder(context.Background(), "c-1", "ORD1", types.ResultCodeRefused)
	require.NoError(t, err)
	require.True(t, res.Error)
	require.Equal(t, types.OrderStatusFailed, res.Status)

	o, err := NewStore(gdb).GetOrder(context.Background(), "ORD1")
	require.NoError(t, err)
	require.Equal(t, types.OrderStatusFailed, o.Status)
	require.NotNil(t, o.FailedAt)
}

func TestPlaceOrder_FailedOrderCannotBePlaced(t *testing.T) {
	svc, gdb := newTestService(t)
	seedOrder(t, gdb, &models.Order{OrderNo: "ORD1", CustomerID: "c-1", BasketID: "b", Currency: "EUR", Total: 100, Status: types.OrderStatusFailed, PaymentStatus: types.PaymentStatusNotPaid})

	res, err := svc.PlaceOrder(context.Background(), "c-1", "ORD1", types.ResultCodeAuthorised)
	require.NoError(t, err)
	require.True(t, res.Error)
	require.Equal(t, types.OrderStatusFailed, res.Status)
	require.Contains(t, res.Message, models.ErrOrderNotPlaceable.Error())
}

func TestPlaceOrder_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.PlaceOrder(context.Background(), "c-1", "missing", types.ResultCodeAuthorised)
	require.True(t, apperr.IsKind(err, apperr.KindLookup))
}

func TestPlaceOrder_OtherCustomerLeavesOrderAlone(t *testing.T) {
	svc, gdb := newTestService(t)
	seedOrder(t, gdb, &models.Order{OrderNo: "ORD1", CustomerID: "c-1", BasketID: "b", Currency: "EUR", Total: 100, Status: types.OrderStatusCreated, PaymentStatus: types.PaymentStatusNotPaid})

	for _, code := range []types.ResultCode{types.ResultCodeAuthorised, types.ResultCodeRefused} {
		_, err := svc.PlaceOrder(context.Background(), "c-2", "ORD1", code)
		require.True(t, apperr.IsKind(err, apperr.KindLookup), string(code))
	}

	o, err := NewStore(gdb).GetOrder(context.Background(), "ORD1")
	require.NoError(t, err)
	require.Equal(t, types.OrderStatusCreated, o.Status)
	require.Empty(t, o.History)
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	svc, gdb := newTestService(t)
	seedOrder(t, gdb, &models.Order{OrderNo: "ORD1", BasketID: "b", Currency: "EUR", Total: 100, Status: types.OrderStatusCreated, PaymentStatus: types.PaymentStatusNotPaid})

	boom := errors.New("boom")
	err := svc.store.RunInTx(context.Background(), func(tx *TxStore) error {
		o, err := tx.FindOrderForUpdate(context.Background(), "ORD1")
		require.NoError(t, err)
		o.SetPaymentStatus(types.PaymentStatusPaid)
		o.AppendHistory("AUTHORISATION", "psp", "authorised")
		require.NoError(t, tx.SaveOrder(context.Background(), o))
		return boom
	})
	require.ErrorIs(t, err, boom)

	o, err := svc.store.GetOrder(context.Background(), "ORD1")
	require.NoError(t, err)
	require.Equal(t, types.PaymentStatusNotPaid, o.PaymentStatus)
	require.Empty(t, o.History)
}

func TestScanOrders(t *testing.T) {
	svc, gdb := newTestService(t)
	for _, no := range []string{"A", "B", "C"} {
		seedOrder(t, gdb, &models.Order{OrderNo: no, BasketID: "b", Currency: "EUR", Total: 100, Status: types.OrderStatusCreated, PaymentStatus: types.PaymentStatusNotPaid})
	}
	require.NoError(t, gdb.Model(&models.Order{}).Where("order_no = ?", "B").Update("payment_status", types.PaymentStatusPaid).Error)

	res, err := svc.ScanOrders(context.Background(), &ScanOrdersRequest{
		Filters: []*types.CommonFilter{{Field: "payment_status", Operator: types.CommonFilterOperatorEq, Values: []any{string(types.PaymentStatusPaid)}}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Total)
	require.Equal(t, "B", res.Items[0].OrderNo)

	res, err = svc.ScanOrders(context.Background(), &ScanOrdersRequest{Size: 2, SortBy: "order_no", SortOrder: "asc"})
	require.NoError(t, err)
	require.Equal(t, int64(3), res.Total)
	require.Len(t, res.Items, 2)
	require.Equal(t, "A", res.Items[0].OrderNo)
}

func TestScanOrders_RejectsUnknownColumns(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ScanOrders(context.Background(), &ScanOrdersRequest{
		Filters: []*types.CommonFilter{{Field: "data->>'x'", Operator: types.CommonFilterOperatorEq, Values: []any{"1"}}},
	})
	require.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.ScanOrders(context.Background(), &ScanOrdersRequest{SortBy: "1; drop table orders"})
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
}
