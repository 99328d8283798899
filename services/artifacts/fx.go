package artifacts

import (
	"go.uber.org/fx"
)

var Module = fx.Module("artifacts.module",
	fx.Provide(
		NewWriter,
	),
)
