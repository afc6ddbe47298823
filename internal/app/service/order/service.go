package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	models "github.com/fatflowers/adyen-bridge/internal/models"
	"github.com/fatflowers/adyen-bridge/pkg/apperr"
	"github.com/fatflowers/adyen-bridge/pkg/currency"
	"github.com/fatflowers/adyen-bridge/pkg/logctx"
	types "github.com/fatflowers/adyen-bridge/pkg/types"
)

type Service struct {
	store *Store
	log   *zap.SugaredLogger
	now   func() time.Time
}

func NewService(store *Store, log *zap.SugaredLogger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

func orderNotFound(orderNo string) error {
	return apperr.Lookup(fmt.Sprintf("order not found: %s", orderNo))
}

// GetOrder returns the order total in major units. Orders of other customers
// are reported as not found.
func (s *Service) GetOrder(ctx context.Context, customerID, orderNo string) (*OrderSummary, error) {
	o, err := s.store.GetOrder(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if !o.OwnedBy(customerID) {
		return nil, orderNotFound(orderNo)
	}
	total, err := currency.ToMajorUnits(o.Total, o.Currency)
	if err != nil {
		return nil, fmt.Errorf("order %s has invalid currency: %w", orderNo, err)
	}
	return &OrderSummary{Total: total, Currency: o.Currency}, nil
}

func validateCreateOrder(req *CreateOrderRequest) error {
	missing := map[string]string{}
	if strings.TrimSpace(req.BasketID) == "" {
		missing["basketId"] = "required"
	}
	if strings.TrimSpace(req.OrderNo) == "" {
		missing["orderNo"] = "required"
	}
	if strings.TrimSpace(req.Currency) == "" {
		missing["currency"] = "required"
	}
	if len(missing) > 0 {
		fields := make([]string, 0, len(missing))
		for f := range missing {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		return apperr.Validation("missing required fields: "+strings.Join(fields, ", "), missing)
	}
	if !currency.IsSupported(req.Currency) {
		return apperr.Validation("invalid currency: "+req.Currency, map[string]string{"currency": "unsupported"})
	}
	return nil
}

// CreateOrder creates a CREATED/NOT_PAID order from a basket.
func (s *Service) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	if req == nil {
		return nil, apperr.Validation("empty request", nil)
	}
	if err := validateCreateOrder(req); err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(req.Currency))

	err := s.store.RunInTx(ctx, func(tx *TxStore) error {
		basket, err := tx.FindBasket(ctx, req.BasketID)
		if err != nil {
			return err
		}
		if req.CustomerID != "" && basket.CustomerID != "" && basket.CustomerID != req.CustomerID {
			return apperr.Lookup(fmt.Sprintf("basket not found: %s", req.BasketID))
		}
		exists, err := tx.OrderExists(ctx, req.OrderNo)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Validation("order already exists: "+req.OrderNo, map[string]string{"orderNo": "duplicate"}).WithStatus(http.StatusConflict)
		}

		if basket.Currency != code {
			basket.Currency = code
			if err := tx.SaveBasket(ctx, basket); err != nil {
				return err
			}
		}

		o := &models.Order{
			OrderNo:       req.OrderNo,
			CustomerID:    req.CustomerID,
			BasketID:      basket.BasketID,
			Currency:      code,
			Total:         basket.Total,
			Status:        types.OrderStatusCreated,
			PaymentStatus: types.PaymentStatusNotPaid,
		}
		o.AppendHistory("", "", "order created from basket "+basket.BasketID)
		return tx.CreateOrder(ctx, o)
	})
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("create_order_failed", "order_no", req.OrderNo, "basket_id", req.BasketID, "error", err.Error())
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("order_created", "order_no", req.OrderNo, "basket_id", req.BasketID)
	return &CreateOrderResponse{OrderNo: req.OrderNo}, nil
}

var errPlacementRefused = errors.New("payment result does not allow placing the order")

// PlaceOrder places the customer's order when the Drop-in reported a placeable
// result code. Any other outcome fails the order, so it never stays half placed.
func (s *Service) PlaceOrder(ctx context.Context, customerID, orderNo string, resultCode types.ResultCode) (*PlaceOrderResult, error) {
	lg := logctx.FromCtx(ctx, s.log).With("order_no", orderNo, "result_code", resultCode)

	var status types.OrderStatus
	placeErr := s.store.RunInTx(ctx, func(tx *TxStore) error {
		o, err := tx.FindOrderForUpdate(ctx, orderNo)
		if err != nil {
			return err
		}
		if !o.OwnedBy(customerID) {
			return orderNotFound(orderNo)
		}
		if !resultCode.Placeable() {
			return errPlacementRefused
		}
		if err := o.Place(s.now()); err != nil {
			return err
		}
		o.AppendHistory("", "", "order placed")
		status = o.Status
		return tx.SaveOrder(ctx, o)
	})
	if placeErr == nil {
		lg.Infow("order_placed")
		return &PlaceOrderResult{OrderNo: orderNo, Status: status}, nil
	}
	if apperr.IsKind(placeErr, apperr.KindLookup) {
		return nil, placeErr
	}

	lg.Warnw("order_place_failed", "error", placeErr.Error())
	failErr := s.store.RunInTx(ctx, func(tx *TxStore) error {
		o, err := tx.FindOrderForUpdate(ctx, orderNo)
		if err != nil {
			return err
		}
		if !o.OwnedBy(customerID) {
			return orderNotFound(orderNo)
		}
		if o.Fail(s.now()) {
			o.AppendHistory("", "", "order failed: "+placeErr.Error())
		}
		status = o.Status
		return tx.SaveOrder(ctx, o)
	})
	if failErr != nil {
		lg.Errorw("order_fail_failed", "error", failErr.Error())
		return nil, apperr.Transaction("failed to fail order", failErr)
	}
	return &PlaceOrderResult{OrderNo: orderNo, Status: status, Error: true, Message: placeErr.Error()}, nil
}

func (s *Service) ScanOrders(ctx context.Context, req *ScanOrdersRequest) (*ScanOrdersResponse, error) {
	return s.store.Scan(ctx, req)
}
