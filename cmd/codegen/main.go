package main

import (
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"chronobot-controlplane/internal/httpapi"
	"chronobot-controlplane/pkg/config"
	"chronobot-controlplane/pkg/db"
	"chronobot-controlplane/pkg/health"
	"chronobot-controlplane/pkg/logger"
	"chronobot-controlplane/pkg/server"
	"chronobot-controlplane/services/activitylog"
	"chronobot-controlplane/services/artifacts"
	"chronobot-controlplane/services/genclient"
	"chronobot-controlplane/services/pipeline"
	"chronobot-controlplane/services/taskstore"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		taskstore.Module,
		genclient.Module,
		artifacts.Module,
		activitylog.Module,
		pipeline.Module,
		health.Module,
		httpapi.Module,
		server.ProvideHTTPServer,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})
