// Package nodescmder provides the nodes command that lists cached memory
// nodes and their resonance map.
package nodescmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/cmd/hiveswarm/bridgebuilder"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/bridge"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/cliui"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/config"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/logger"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/memory"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/utils"
)

const previewLen = 48

const nodesLongDesc string = `List cached memory nodes, highest spectral frequency first.

Reads the node cache selected by cache.driver. The in-memory cache is empty
in a fresh process, so use --sync or a sqlite/postgres cache shared with a
running server.

Examples:
  hiveswarm nodes --cache sqlite --sqlite ./hiveswarm.sqlite
  hiveswarm nodes --sync --resonance`

const nodesShortDesc string = "List cached memory nodes"

type nodesCommander struct {
	cacheDriver string
	sqlitePath  string
	postgresDSN string
	sync        bool
	resonance   bool
	jsonOut     bool

	debug     bool
	configDir string
	viper     *viper.Viper
}

var nodesFlagKeys = []string{
	config.FlagCacheDriver,
	config.FlagSQLite,
	config.FlagPostgres,
}

func NewNodesCmd() *cobra.Command {
	cmder := &nodesCommander{}

	cmd := &cobra.Command{
		Use:   "nodes",
		Short: nodesShortDesc,
		Long:  nodesLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.viper, err = config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(cmder.viper, cmd, config.Flags, nodesFlagKeys)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			return cmder.run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagCacheDriver, &cmder.cacheDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	cmd.Flags().BoolVar(&cmder.sync, "sync", false, "Sync from Airtable before listing")
	cmd.Flags().BoolVar(&cmder.resonance, "resonance", false, "Print the resonance map instead of the node list")
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print JSON")

	return cmd
}

func (c *nodesCommander) run(ctx context.Context, w io.Writer) error {
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

	if c.sync {
		if _, err := b.Sync(ctx); err != nil {
			return err
		}
	}

	if c.resonance {
		return c.printResonance(ctx, w, b)
	}
	return c.printNodes(ctx, w, b)
}

func (c *nodesCommander) printNodes(ctx context.Context, w io.Writer, b *bridge.Bridge) error {
	nodes, err := b.Nodes(ctx)
	if err != nil {
		return err
	}

	if c.jsonOut {
		return encode(w, map[string]any{"nodes": nodes, "count": len(nodes)})
	}

	if len(nodes) == 0 {
		fmt.Fprintf(w, "\n  %s No cached nodes.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}

	fmt.Fprintf(w, "\n  %s\n\n", cliui.HeaderStyle.Render(fmt.Sprintf("Memory nodes (%d)", len(nodes))))
	for _, n := range nodes {
		fmt.Fprintf(w, "  %s  %s  %s\n",
			cliui.KeyStyle.Render(n.ID),
			cliui.ValueStyle.Render(fmt.Sprintf("%.4f", n.SpectralFrequency)),
			cliui.DimStyle.Render(preview(n)),
		)
	}
	fmt.Fprintln(w)
	return nil
}

func (c *nodesCommander) printResonance(ctx context.Context, w io.Writer, b *bridge.Bridge) error {
	resonance, err := b.ResonanceMap(ctx)
	if err != nil {
		return err
	}

	if c.jsonOut {
		return encode(w, map[string]any{"resonance_map": resonance})
	}

	ids := make([]string, 0, len(resonance))
	for id := range resonance {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	rows := make([]cliui.KeyValue, 0, len(ids))
	for _, id := range ids {
		entry := resonance[id]
		rows = append(rows, cliui.KeyValue{
			Key:   id,
			Value: strings.Join(entry.ConnectedNodes, ", "),
		})
	}

	fmt.Fprintln(w)
	cliui.KeyValues(w, "Resonance map", rows)
	fmt.Fprintln(w)
	return nil
}

func preview(n memory.MemoryNode) string {
	line, _, _ := strings.Cut(n.Content, "\n")
	return utils.Truncate(line, previewLen)
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
