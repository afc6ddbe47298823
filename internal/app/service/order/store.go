package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	models "github.com/fatflowers/adyen-bridge/internal/models"
	"github.com/fatflowers/adyen-bridge/pkg/apperr"
	"github.com/fatflowers/adyen-bridge/pkg/tool"
)

// Store owns order persistence. Every mutation goes through RunInTx.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

// TxStore is the scoped handle handed to RunInTx callbacks. It must not
// escape the callback.
type TxStore struct {
	db *gorm.DB
}

// RunInTx commits when fn returns nil and rolls back on error or panic.
func (s *Store) RunInTx(ctx context.Context, fn func(tx *TxStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return fn(&TxStore{db: gtx})
	})
}

// FindOrderForUpdate loads an order with its history and locks the order row.
func (t *TxStore) FindOrderForUpdate(ctx context.Context, orderNo string) (*models.Order, error) {
	var o models.Order
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_no = ?", orderNo).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Lookup(fmt.Sprintf("order not found: %s", orderNo))
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if err := t.db.WithContext(ctx).
		Where("order_no = ?", orderNo).
		Order("created_at asc, id asc").
		Find(&o.History).Error; err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}
	return &o, nil
}

// SaveOrder writes the order row and inserts history entries not yet persisted.
func (t *TxStore) SaveOrder(ctx context.Context, o *models.Order) error {
	if err := t.db.WithContext(ctx).Omit(clause.Associations).Save(o).Error; err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return t.insertHistory(ctx, o)
}

func (t *TxStore) insertHistory(ctx context.Context, o *models.Order) error {
	for _, h := range o.History {
		if h.ID != "" {
			continue
		}
		h.ID = tool.NewID()
		h.OrderNo = o.OrderNo
		if err := t.db.WithContext(ctx).Create(h).Error; err != nil {
			return fmt.Errorf("failed to append order history: %w", err)
		}
	}
	return nil
}

func (t *TxStore) OrderExists(ctx context.Context, orderNo string) (bool, error) {
	var n int64
	if err := t.db.WithContext(ctx).Model(&models.Order{}).Where("order_no = ?", orderNo).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check order: %w", err)
	}
	return n > 0, nil
}

func (t *TxStore) CreateOrder(ctx context.Context, o *models.Order) error {
	if err := t.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return t.insertHistory(ctx, o)
}

func (t *TxStore) FindBasket(ctx context.Context, basketID string) (*models.Basket, error) {
	var b models.Basket
	if err := t.db.WithContext(ctx).Where("basket_id = ?", basketID).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Lookup(fmt.Sprintf("basket not found: %s", basketID))
		}
		return nil, fmt.Errorf("failed to load basket: %w", err)
	}
	return &b, nil
}

func (t *TxStore) SaveBasket(ctx context.Context, b *models.Basket) error {
	if err := t.db.WithContext(ctx).Save(b).Error; err != nil {
		return fmt.Errorf("failed to save basket: %w", err)
	}
	return nil
}

// GetOrder reads an order with its history outside of a transaction.
func (s *Store) GetOrder(ctx context.Context, orderNo string) (*models.Order, error) {
	var o models.Order
	err := s.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc, id asc") }).
		Where("order_no = ?", orderNo).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Lookup(fmt.Sprintf("order not found: %s", orderNo))
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &o, nil
}

var scanColumns = []string{
	"order_no", "customer_id", "basket_id", "currency", "total", "status",
	"payment_status", "psp_reference", "payment_method", "created_at", "updated_at",
}

func validateScan(req *ScanOrdersRequest) error {
	if err := req.Filters.Validate(scanColumns); err != nil {
		return apperr.Validation(err.Error(), map[string]string{"filters": "invalid"})
	}
	if req.SortBy != "" && !lo.Contains(scanColumns, req.SortBy) {
		return apperr.Validation("unsupported sort field: "+req.SortBy, map[string]string{"sort_by": "unsupported"})
	}
	return nil
}

// Scan lists orders for the admin API. Only order columns may be filtered or sorted on.
func (s *Store) Scan(ctx context.Context, req *ScanOrdersRequest) (*ScanOrdersResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if err := validateScan(req); err != nil {
		return nil, err
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.Order{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{req.Filters}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	}

	var rows []*models.Order
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return &ScanOrdersResponse{Items: rows, Total: total}, nil
}
