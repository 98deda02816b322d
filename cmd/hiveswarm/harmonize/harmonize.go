// Package harmonizecmder provides the harmonize command that rewrites a note
// into another markdown dialect through the configured generation provider.
package harmonizecmder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/cmd/hiveswarm/bridgebuilder"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/cmd/hiveswarm/internal/input"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/bridge"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/cliui"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/config"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/logger"
)

const harmonizeLongDesc string = `Harmonize a note into a target markdown dialect.

Reads the named file, or stdin when no file (or "-") is given, and asks the
configured generation provider to convert it. On failure the original
content is printed and the command exits non-zero.

Examples:
  hiveswarm harmonize note.md --target logseq
  cat note.md | hiveswarm harmonize --raw > converted.md`

const harmonizeShortDesc string = "Harmonize a note into a target markdown dialect"

// ErrHarmonizeFailed is returned after the fallback content was printed.
var ErrHarmonizeFailed = errors.New("harmonization failed")

type harmonizeCommander struct {
	target           string
	raw              bool
	jsonOut          bool
	provider         string
	model            string
	harmonizeTimeout string

	debug     bool
	configDir string
	viper     *viper.Viper
}

var harmonizeFlagKeys = []string{
	config.FlagProvider,
	config.FlagModel,
	config.FlagHarmonizeTimeout,
}

func NewHarmonizeCmd() *cobra.Command {
	cmder := &harmonizeCommander{}

	cmd := &cobra.Command{
		Use:   "harmonize [file]",
		Short: harmonizeShortDesc,
		Long:  harmonizeLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.viper, err = config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(cmder.viper, cmd, config.Flags, harmonizeFlagKeys)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			content, err := input.Read(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), content)
		},
	}

	cmd.Flags().StringVar(&cmder.target, "target", bridge.DefaultTargetFormat, "Target markdown dialect")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the harmonized markdown without terminal rendering")
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print the full harmonization result as JSON")
	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &cmder.provider)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagHarmonizeTimeout, &cmder.harmonizeTimeout)

	return cmd
}

func (c *harmonizeCommander) run(ctx context.Context, w io.Writer, content string) error {
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

	result := b.Harmonize(ctx, content, c.target)

	if c.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		if !result.OK() {
			cliui.Warn(os.Stderr, "%s: %s", ErrHarmonizeFailed, result.Failure.Error)
		}
		c.print(w, result.Content())
	}

	if !result.OK() {
		return ErrHarmonizeFailed
	}
	return nil
}

func (c *harmonizeCommander) print(w io.Writer, content string) {
	if c.raw {
		fmt.Fprint(w, content)
		return
	}

	rendered, err := cliui.RenderMarkdown(content)
	if err != nil {
		fmt.Fprint(w, content)
		return
	}
	fmt.Fprint(w, rendered)
}
