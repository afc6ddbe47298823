package order

import "go.uber.org/fx"

// Module exposes the order store and service via Fx.
var Module = fx.Options(
	fx.Provide(NewStore),
	fx.Provide(NewService),
)
