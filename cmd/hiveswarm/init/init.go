// Package initcmder provides the init command for initializing a local
// .hiveswarm directory in the current working directory.
package initcmder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/cliui"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/config"
)

const (
	dirName = ".hiveswarm"
)

const initLongDesc string = `Initialize a new .hiveswarm/ directory in the current working directory.

Creates a local .hiveswarm/ directory that takes precedence over
~/.hiveswarm/ and writes a config.toml. An existing config.toml is kept
unless --preset is given.

Presets: anthropic (default), ollama

Examples:
  hiveswarm init
  hiveswarm init --preset ollama`

const initShortDesc string = "Initialize a local .hiveswarm/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.OutOrStdout(), preset, cmd.Flags().Changed("preset"))
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "anthropic", "Config preset to write (anthropic, ollama)")

	return cmd
}

func runInit(w io.Writer, preset string, overwrite bool) error {
	cfg, err := config.PresetConfig(preset)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .hiveswarm directory: %w", err)
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return err
	}

	_, statErr := os.Stat(cfger.GetTarget())
	switch {
	case statErr == nil && !overwrite:
		fmt.Fprintf(w, "  %s Already initialized: %s\n", cliui.DimStyle.Render("●"), dir)
		return nil
	case statErr != nil && !errors.Is(statErr, os.ErrNotExist):
		return fmt.Errorf("checking config: %w", statErr)
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "  %s Initialized %s %s\n",
		cliui.SuccessMark,
		dir,
		cliui.DimStyle.Render("(preset "+preset+")"),
	)
	return nil
}
