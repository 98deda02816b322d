package bridgebuilder

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/bridge"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/config"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/credentials"
)

// Open resolves settings from v, loads credentials.toml from configDir and
// builds a Bridge.
func Open(ctx context.Context, v *viper.Viper, configDir string, logger *zap.Logger) (*bridge.Bridge, *config.Settings, error) {
	settings, err := config.Load(v)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading credentials: %w", err)
	}

	b, err := Build(ctx, settings, mgr, logger)
	if err != nil {
		return nil, nil, err
	}

	return b, settings, nil
}
