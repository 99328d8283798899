package taskstore

import (
	"go.uber.org/fx"
)

var Module = fx.Module("taskstore.module",
	fx.Provide(
		NewStore,
	),
)
