package db

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fatflowers/adyen-bridge/internal/models"
	cfgpkg "github.com/fatflowers/adyen-bridge/pkg/config"
	gormzap "github.com/fatflowers/adyen-bridge/pkg/gormlog"
)

func NewDB(l *zap.SugaredLogger, cfg *cfgpkg.Config) (*gorm.DB, error) {
	dbc := cfg.Database
	if dbc.DSN == "" {
		l.Error("database DSN is empty")
		return nil, gorm.ErrInvalidDB
	}
	var opts []gormzap.Option
	if dbc.SlowThreshold > 0 {
		opts = append(opts, gormzap.WithSlowThreshold(dbc.SlowThreshold))
	}
	db, err := gorm.Open(postgres.Open(dbc.DSN), &gorm.Config{Logger: gormzap.New(l, opts...)})
	if err != nil {
		l.Errorf("failed to connect database: %v", err)
		return nil, err
	}
	if err := configurePool(db, dbc); err != nil {
		return nil, err
	}
	l.Infow("connected to postgres", "max_open_conns", dbc.MaxOpenConns, "max_idle_conns", dbc.MaxIdleConns)
	return db, nil
}

func configurePool(db *gorm.DB, dbc cfgpkg.DBConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if dbc.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbc.MaxOpenConns)
	}
	if dbc.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbc.MaxIdleConns)
	}
	if dbc.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(dbc.ConnMaxLifetime)
	}
	return nil
}

var Module = fx.Options(
	fx.Provide(NewDB),
	fx.Invoke(AutoMigrate),
	fx.Invoke(registerDBClose),
)

// Models lists every table the service owns, in migration order. Order history
// rows reference orders, so orders migrate first.
func Models() []any {
	return []any{
		&models.Basket{},
		&models.Order{},
		&models.OrderHistory{},
		&models.PaymentNotificationLog{},
	}
}

// AutoMigrate runs GORM migrations on startup
func AutoMigrate(l *zap.SugaredLogger, db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		l.Errorf("automigrate failed: %v", err)
		return err
	}
	l.Infow("automigrate completed")
	return nil
}

// registerDBClose ensures the underlying *sql.DB is closed on shutdown
func registerDBClose(lc fx.Lifecycle, l *zap.SugaredLogger, gdb *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				l.Warnw("gorm: get sql.DB failed", "err", err)
				return nil
			}
			l.Infow("closing postgres connection pool")
			return sqlDB.Close()
		},
	})
}
