package notification_log

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fatflowers/adyen-bridge/internal/models"
	"github.com/fatflowers/adyen-bridge/internal/platform/adyen/adyen_notification"
	"github.com/fatflowers/adyen-bridge/pkg/logctx"
	"github.com/fatflowers/adyen-bridge/pkg/tool"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	now func() time.Time
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log, now: time.Now}
}

// Received stores the record for a freshly received notification item. The
// signature is stripped before the payload is persisted.
func (s *Service) Received(ctx context.Context, item *adyen_notification.NotificationRequestItem, live bool) (*models.PaymentNotificationLog, error) {
	if item == nil {
		return nil, fmt.Errorf("nil notification item")
	}
	data, err := json.Marshal(item.Redacted())
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification: %w", err)
	}
	rec := &models.PaymentNotificationLog{
		ID:                tool.NewID(),
		EventCode:         string(item.EventCode),
		MerchantReference: item.MerchantReference,
		PspReference:      item.PspReference,
		Success:           item.IsSuccess(),
		Live:              live,
		TraceID:           logctx.TraceID(ctx),
		NotificationTime:  notificationTime(item, s.now()),
		Data:              datatypes.JSON(data),
		Status:            models.PaymentNotificationLogStatusReceived,
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("failed to save notification log: %w", err)
	}
	return rec, nil
}

// Finish records the outcome of handling rec. Failures are logged and swallowed
// so a log write never changes the webhook answer.
func (s *Service) Finish(ctx context.Context, rec *models.PaymentNotificationLog, status models.PaymentNotificationLogStatus, result map[string]any) {
	if rec == nil {
		return
	}
	rec.Status = status
	if result != nil {
		if b, err := json.Marshal(result); err == nil {
			j := datatypes.JSON(b)
			rec.Result = &j
		}
	}
	if err := s.db.WithContext(ctx).Save(rec).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to save notification log: %v", err)
	}
}

func notificationTime(item *adyen_notification.NotificationRequestItem, fallback time.Time) time.Time {
	if item.EventDate == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339, item.EventDate)
	if err != nil {
		return fallback
	}
	return t
}

var Module = fx.Options(
	fx.Provide(New),
)
