package statistics

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/adyen-bridge/internal/models"
	"github.com/fatflowers/adyen-bridge/pkg/apperr"
	"github.com/fatflowers/adyen-bridge/pkg/types"
)

type StatisticType string

const (
	StatisticTypeDailyOrderCount    StatisticType = "daily_order_count"
	StatisticTypeDailyPaidAmount    StatisticType = "daily_paid_amount"
	StatisticTypePaymentStatusCount StatisticType = "payment_status_count"
	StatisticTypeOrderStatusCount   StatisticType = "order_status_count"
)

var statisticTypes = []StatisticType{
	StatisticTypeDailyOrderCount,
	StatisticTypeDailyPaidAmount,
	StatisticTypePaymentStatusCount,
	StatisticTypeOrderStatusCount,
}

// Columns a statistic request may filter on.
var filterColumns = []string{"currency", "status", "payment_status", "customer_id", "created_at", "payment_method"}

type OrderStatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type OrderStatisticRequest struct {
	Filters   types.CommonFilters       `json:"filters"`
	DataItems []*OrderStatisticDataItem `json:"data_items"`
}

func (r *OrderStatisticRequest) validate() error {
	if r == nil || len(r.DataItems) == 0 {
		return apperr.Validation("data_items is required", map[string]string{"data_items": "required"})
	}
	for _, di := range r.DataItems {
		if di == nil {
			return apperr.Validation("data_items must not contain null entries", map[string]string{"data_items": "null entry"})
		}
		if !lo.Contains(statisticTypes, di.ID) {
			return apperr.Validation(fmt.Sprintf("invalid data item id: %s", di.ID), map[string]string{"data_items": "unsupported"})
		}
	}
	if err := r.Filters.Validate(filterColumns); err != nil {
		return apperr.Validation(err.Error(), map[string]string{"filters": "invalid"})
	}
	return nil
}

type OrderStatisticResponseDataItem struct {
	Date  string `json:"date,omitempty"`
	Label string `json:"label,omitempty"`
	Value int64  `json:"value"`
}

type OrderStatisticResponse struct {
	DataItems map[StatisticType][]OrderStatisticResponseDataItem `json:"data_items"`
}

// Service computes admin statistics over orders.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) orders(ctx context.Context, request *OrderStatisticRequest) *gorm.DB {
	return s.db.WithContext(ctx).Table((models.Order{}).TableName()).
		Where(clause.Where{Exprs: []clause.Expression{request.Filters}})
}

func (s *Service) getDailyOrderCount(ctx context.Context, request *OrderStatisticRequest) ([]OrderStatisticResponseDataItem, error) {
	var results []OrderStatisticResponseDataItem
	q := s.orders(ctx, request).
		Select("CAST(DATE(created_at) AS TEXT) as date, count(*) as value").
		Group("DATE(created_at)").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// getDailyPaidAmount sums paid order totals per day and currency, in minor units.
func (s *Service) getDailyPaidAmount(ctx context.Context, request *OrderStatisticRequest) ([]OrderStatisticResponseDataItem, error) {
	var results []OrderStatisticResponseDataItem
	q := s.orders(ctx, request).
		Select("CAST(DATE(created_at) AS TEXT) as date, currency AS label, sum(total) as value").
		Where("payment_status = ?", types.PaymentStatusPaid).
		Group("DATE(created_at)").
		Group("currency").
		Order("date").
		Order("label")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) countBy(ctx context.Context, request *OrderStatisticRequest, column string) ([]OrderStatisticResponseDataItem, error) {
	var results []OrderStatisticResponseDataItem
	q := s.orders(ctx, request).
		Select(column + " AS label, count(*) as value").
		Group(column).
		Order("label")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getOrderStatistic(ctx context.Context, request *OrderStatisticRequest, dataItem *OrderStatisticDataItem) ([]OrderStatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailyOrderCount:
		return s.getDailyOrderCount(ctx, request)
	case StatisticTypeDailyPaidAmount:
		return s.getDailyPaidAmount(ctx, request)
	case StatisticTypePaymentStatusCount:
		return s.countBy(ctx, request, "payment_status")
	case StatisticTypeOrderStatusCount:
		return s.countBy(ctx, request, "status")
	default:
		return nil, apperr.Validation(fmt.Sprintf("invalid data item id: %s", dataItem.ID), map[string]string{"data_items": "unsupported"})
	}
}

// GetOrderStatistic computes every requested data item concurrently. The first
// failing item cancels the rest.
func (s *Service) GetOrderStatistic(ctx context.Context, request *OrderStatisticRequest) (*OrderStatisticResponse, error) {
	if err := request.validate(); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	results := make(map[StatisticType][]OrderStatisticResponseDataItem, len(request.DataItems))
	g, gctx := errgroup.WithContext(ctx)
	for _, item := range lo.UniqBy(request.DataItems, func(di *OrderStatisticDataItem) StatisticType { return di.ID }) {
		g.Go(func() error {
			res, err := s.getOrderStatistic(gctx, request, item)
			if err != nil {
				return err
			}
			mu.Lock()
			results[item.ID] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &OrderStatisticResponse{DataItems: results}, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
