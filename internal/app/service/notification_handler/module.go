package notification_handler

import (
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newRegistry(log *zap.SugaredLogger) (*Registry, error) {
	return NewRegistry(DefaultHandlers(HandlerDeps{Log: log, Now: time.Now})...)
}

var Module = fx.Options(
	fx.Provide(newRegistry),
	fx.Provide(NewProcessor),
)
