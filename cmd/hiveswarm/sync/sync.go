// Package synccmder provides the `hiveswarm sync` CLI command.
package synccmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/cmd/hiveswarm/bridgebuilder"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/bridge"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/cliui"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/config"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/logger"
)

type syncCommander struct {
	baseID       string
	table        string
	cacheDriver  string
	sqlitePath   string
	postgresDSN  string
	eventStream  string
	kafkaBrokers string
	kafkaTopic   string
	syncTimeout  string
	jsonOut      bool

	debug     bool
	configDir string
	viper     *viper.Viper
}

var syncFlagKeys = []string{
	config.FlagBaseID,
	config.FlagTable,
	config.FlagCacheDriver,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagEventStream,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
	config.FlagSyncTimeout,
}

const syncLongDesc string = `Run one sync against the Airtable memory table.

Every record is analyzed, aligned by spectral frequency, cached and written
back with its spectral frequency, resonance threads, status and sync time.

Examples:
  hiveswarm sync
  hiveswarm sync --base-id appXXXX --table MarleyMemory
  hiveswarm sync --cache sqlite --sqlite ./hiveswarm.sqlite --json`

// NewSyncCmd creates the sync cobra command.
func NewSyncCmd() *cobra.Command {
	cmder := &syncCommander{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync memory records from Airtable",
		Long:  syncLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.viper, err = config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(cmder.viper, cmd, config.Flags, syncFlagKeys)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			return cmder.run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBaseID, &cmder.baseID)
	config.AddStringFlag(cmd, config.Flags, config.FlagTable, &cmder.table)
	config.AddStringFlag(cmd, config.Flags, config.FlagCacheDriver, &cmder.cacheDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventStream, &cmder.eventStream)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaTopic, &cmder.kafkaTopic)
	config.AddStringFlag(cmd, config.Flags, config.FlagSyncTimeout, &cmder.syncTimeout)
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print the sync summary as JSON")

	return cmd
}

func (c *syncCommander) run(ctx context.Context, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log := logger.NewPlainLogger(c.debug, os.Stderr)
	defer func() { _ = log.Sync() }()

	b, _, err := bridgebuilder.Open(ctx, c.viper, c.configDir, log)
	if err != nil {
		return err
	}
	defer b.Close()

	var summary *bridge.SyncSummary
	if c.jsonOut {
		summary, err = b.Sync(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	if err := cliui.Step(w, "Syncing memory records", func() error {
		var runErr error
		summary, runErr = b.Sync(ctx)
		return runErr
	}); err != nil {
		return err
	}

	fmt.Fprintln(w)
	cliui.KeyValues(w, "Sync summary", []cliui.KeyValue{
		{Key: "synchronized_nodes", Value: strconv.Itoa(summary.SynchronizedNodes)},
		{Key: "total_spectral_frequency", Value: strconv.FormatFloat(summary.TotalSpectralFrequency, 'f', 4, 64)},
		{Key: "unique_resonance_threads", Value: strconv.Itoa(summary.UniqueResonanceThreads)},
		{Key: "timestamp", Value: summary.Timestamp.Format(time.RFC3339)},
	})
	fmt.Fprintln(w)
	return nil
}
