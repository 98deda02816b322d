package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/cliui"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/config"
)

const listLongDesc string = `List all configuration values.

Displays all configuration keys and their current values from the
config.toml file stored in the .hiveswarm/ directory, with defaults
filled in for keys the file does not set.

Examples:
  hiveswarm config list`

const listShortDesc string = "List all configuration values"

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runList(cmd.OutOrStdout(), configDir)
		},
	}

	return cmd
}

func runList(w io.Writer, configDir string) error {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	keys := config.ValidConfigKeys()
	rows := make([]cliui.KeyValue, 0, len(keys))
	for _, key := range keys {
		value, err := cfger.GetConfigValue(key)
		if err != nil {
			return err
		}
		rows = append(rows, cliui.KeyValue{Key: key, Value: value})
	}

	header := "Config (defaults)"
	if target := cfger.GetTarget(); target != "" {
		header = "Config " + target
	}
	cliui.KeyValues(w, header, rows)

	return nil
}
