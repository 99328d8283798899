package genclient

import (
	"go.uber.org/fx"
)

var Module = fx.Module("genclient.module",
	fx.Provide(
		fx.Annotate(NewClient, fx.As(new(Generator))),
	),
)
