// Package configcmder provides the config command for managing persistent
// hiveswarm configuration stored in the .hiveswarm/ directory.
package configcmder

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/config"
)

const configLongDesc string = `Manage persistent hiveswarm configuration.

Configuration is stored as config.toml in the .hiveswarm/ directory and
provides default values for command flags. CLI flags and HIVESWARM_
environment variables always take precedence over config file values.
API keys are never stored here; use 'hiveswarm auth' or the environment.

Use subcommands to get, set, or list configuration values:
  hiveswarm config set <key> <value>    Set a configuration value
  hiveswarm config get <key>            Get a configuration value
  hiveswarm config list                 List all configuration values

Examples:
  hiveswarm config set airtable.base_id appXXXXXXXX
  hiveswarm config set cache.driver sqlite
  hiveswarm config get sync.timeout
  hiveswarm config list`

const configShortDesc string = "Manage persistent hiveswarm configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func validKeysHelp() string {
	return strings.Join(config.ValidConfigKeys(), ", ")
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
