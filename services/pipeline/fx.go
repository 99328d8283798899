package pipeline

import (
	"chronobot-controlplane/services/extractor"
	"chronobot-controlplane/services/sanitizer"

	"go.uber.org/fx"
)

var Module = fx.Module("pipeline.module",
	fx.Provide(
		extractor.New,
		sanitizer.New,
		NewService,
	),
)
