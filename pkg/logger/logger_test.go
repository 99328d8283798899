package logger

import (
	"testing"

	"chronobot-controlplane/pkg/config"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestNewInstallsGlobalAndSyncsOnStop(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	cfg := &config.Config{AppEnv: "development", AppName: "test"}

	log := New(ConfigParams{Lc: lc, Cfg: cfg})
	require.NotNil(t, log)
	require.Same(t, log, zap.L())

	lc.RequireStart()
	lc.RequireStop()
}
