package activitylog

import (
	"go.uber.org/fx"
)

var Module = fx.Module("activitylog.module",
	fx.Provide(
		NewLogger,
	),
)
