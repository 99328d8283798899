package db

import (
	"context"
	"os"

	"chronobot-controlplane/pkg/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var Module = fx.Module("database",
	fx.Provide(
		Dialect,
		New,
	),
	fx.Invoke(RegisterLifecycle),
)

// Dialect picks the gorm dialector from configuration. SQLite is the default
// so the service runs with zero external infrastructure.
func Dialect(cfg *config.Config) gorm.Dialector {
	switch cfg.Database.Type {
	case "postgres":
		return postgres.Open(cfg.Database.DSN)
	default:
		return sqlite.Open(cfg.Database.DSN)
	}
}

func New(cfg *config.Config, dialector gorm.Dialector) *gorm.DB {
	var logLevel logger.LogLevel
	if cfg.AppEnv == "production" {
		logLevel = logger.Warn
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewZapGormLogger(zap.L(), logLevel),
	})
	if err != nil {
		zap.L().Error("[DB] Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}

	zap.L().Info("[DB] Database connection successfully configured.")

	return db
}

type lifecycleParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	DB        *gorm.DB
}

func RegisterLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := p.DB.DB()
			if err != nil {
				return err
			}
			zap.L().Info("[DB] Closing connection pool...")
			return sqlDB.Close()
		},
	})
}
