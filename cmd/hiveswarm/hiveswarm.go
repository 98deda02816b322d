// Package hiveswarmcmder is the root hiveswarm command.
package hiveswarmcmder

import (
	"github.com/spf13/cobra"

	analyzecmder "github.com/IraBond/ClaudeCodeV2-HiveSwarm/cmd/hiveswarm/analyze"
	authcmder "github.com/IraBond/ClaudeCodeV2-HiveSwarm/cmd/hiveswarm/auth"
	configcmder "github.com/IraBond/ClaudeCodeV2-HiveSwarm/cmd/hiveswarm/config"
	harmonizecmder "github.com/IraBond/ClaudeCodeV2-HiveSwarm/cmd/hiveswarm/harmonize"
	initcmder "github.com/IraBond/ClaudeCodeV2-HiveSwarm/cmd/hiveswarm/init"
	nodescmder "github.com/IraBond/ClaudeCodeV2-HiveSwarm/cmd/hiveswarm/nodes"
	servecmder "github.com/IraBond/ClaudeCodeV2-HiveSwarm/cmd/hiveswarm/serve"
	synccmder "github.com/IraBond/ClaudeCodeV2-HiveSwarm/cmd/hiveswarm/sync"
	versioncmder "github.com/IraBond/ClaudeCodeV2-HiveSwarm/cmd/version"
)

const hiveswarmLongDesc string = `HiveSwarm bridges a Marley memory table in Airtable with Claude.

Memory records are scored for structural density, aligned by spectral
frequency and written back with their resonance threads.

Run services using:
  hiveswarm serve              Run the API, websocket and MCP server
  hiveswarm sync               Run one sync against Airtable
  hiveswarm analyze [file]     Score a note without syncing
  hiveswarm harmonize [file]   Convert a note to another markdown dialect`

const hiveswarmShortDesc string = "HiveSwarm - Marley memory sync bridge"

func NewHiveSwarmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hiveswarm",
		Short:         hiveswarmShortDesc,
		Long:          hiveswarmLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .hiveswarm/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(synccmder.NewSyncCmd())
	cmd.AddCommand(analyzecmder.NewAnalyzeCmd())
	cmd.AddCommand(harmonizecmder.NewHarmonizeCmd())
	cmd.AddCommand(nodescmder.NewNodesCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
