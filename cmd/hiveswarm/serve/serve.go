// Package servecmder provides the serve command that runs the HTTP API,
// the websocket stream and the MCP endpoint on one listener.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/api"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/cmd/hiveswarm/bridgebuilder"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/bridge"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/config"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/logger"
)

type ServeCommander struct {
	flags ServeFlags

	debug     bool
	configDir string
	viper     *viper.Viper
	logger    *zap.Logger
}

// ServeFlags holds the flag targets for serve.
type ServeFlags struct {
	Listen           string
	BaseID           string
	Table            string
	Provider         string
	Model            string
	MaxTokens        int
	CacheDriver      string
	SQLitePath       string
	PostgresDSN      string
	EventStream      string
	KafkaBrokers     string
	KafkaTopic       string
	SyncTimeout      string
	HarmonizeTimeout string

	SkipInitialSync bool
	DisableMCP      bool
}

var serveFlagKeys = []string{
	config.FlagListen,
	config.FlagBaseID,
	config.FlagTable,
	config.FlagProvider,
	config.FlagModel,
	config.FlagMaxTokens,
	config.FlagCacheDriver,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagEventStream,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
	config.FlagSyncTimeout,
	config.FlagHarmonizeTimeout,
}

const serveLongDesc string = `Run the HiveSwarm server.

Serves the REST API under /api, the memory sync websocket at
/ws/memory-sync and the MCP tools at /mcp. Unless --skip-initial-sync is
given (or sync.on_start is false), one sync runs before the listener starts;
a failed initial sync is logged and the server still starts.`

const serveShortDesc string = "Run the HiveSwarm server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.viper, err = config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(cmder.viper, cmd, config.Flags, serveFlagKeys)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	f := &cmder.flags
	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &f.Listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagBaseID, &f.BaseID)
	config.AddStringFlag(cmd, config.Flags, config.FlagTable, &f.Table)
	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &f.Provider)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &f.Model)
	config.AddIntFlag(cmd, config.Flags, config.FlagMaxTokens, &f.MaxTokens)
	config.AddStringFlag(cmd, config.Flags, config.FlagCacheDriver, &f.CacheDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &f.SQLitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &f.PostgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventStream, &f.EventStream)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaBrokers, &f.KafkaBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaTopic, &f.KafkaTopic)
	config.AddStringFlag(cmd, config.Flags, config.FlagSyncTimeout, &f.SyncTimeout)
	config.AddStringFlag(cmd, config.Flags, config.FlagHarmonizeTimeout, &f.HarmonizeTimeout)
	cmd.Flags().BoolVar(&f.SkipInitialSync, "skip-initial-sync", false, "Do not sync before starting the listener")
	cmd.Flags().BoolVar(&f.DisableMCP, "disable-mcp", false, "Do not mount the MCP endpoint")

	return cmd
}

func (c *ServeCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	b, settings, err := bridgebuilder.Open(ctx, c.viper, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer b.Close()

	if settings.SyncOnStart && !c.flags.SkipInitialSync {
		c.initialSync(ctx, b)
	}

	server, err := api.NewServer(api.Config{
		ListenAddr: settings.Listen,
		DisableMCP: c.flags.DisableMCP,
	}, b, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	c.logger.Info("starting hiveswarm server",
		zap.String("listen", settings.Listen),
		zap.Bool("mcp", !c.flags.DisableMCP),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}

// initialSync runs one sync. Failures are logged and do not stop the server.
func (c *ServeCommander) initialSync(ctx context.Context, b *bridge.Bridge) {
	summary, err := b.Sync(ctx)
	if err != nil {
		c.logger.Warn("initial sync failed", zap.Error(err))
		return
	}
	c.logger.Info("initial sync complete",
		zap.Int("synchronized_nodes", summary.SynchronizedNodes),
		zap.Float64("total_spectral_frequency", summary.TotalSpectralFrequency),
	)
}
