package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/adyen-bridge/internal/app/api/server"
	notificationauth "github.com/fatflowers/adyen-bridge/internal/app/service/notification_auth"
	notificationhandler "github.com/fatflowers/adyen-bridge/internal/app/service/notification_handler"
	notificationlog "github.com/fatflowers/adyen-bridge/internal/app/service/notification_log"
	"github.com/fatflowers/adyen-bridge/internal/app/service/order"
	"github.com/fatflowers/adyen-bridge/internal/app/service/session"
	"github.com/fatflowers/adyen-bridge/internal/app/service/statistics"
	"github.com/fatflowers/adyen-bridge/internal/platform/db"
	"github.com/fatflowers/adyen-bridge/pkg/config"
	"github.com/fatflowers/adyen-bridge/pkg/kafka"
	"github.com/fatflowers/adyen-bridge/pkg/logger"
	"github.com/fatflowers/adyen-bridge/pkg/metrics"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	metrics.Module,
	kafka.Module,
	server.Module,
	order.Module,
	session.Module,
	statistics.Module,
	notificationlog.Module,
	notificationauth.Module,
	notificationhandler.Module,
)
