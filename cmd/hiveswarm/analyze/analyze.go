// Package analyzecmder provides the analyze command that scores a note
// without touching Airtable.
package analyzecmder

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/cmd/hiveswarm/internal/input"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/cliui"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/spectral"
)

const analyzeLongDesc string = `Compute the spectral analysis of a note.

Reads the named file, or stdin when no file (or "-") is given, and prints
its line, heading, link and tag counts, spectral frequency and resonance
threads.

Examples:
  hiveswarm analyze note.md
  cat note.md | hiveswarm analyze --json`

const analyzeShortDesc string = "Compute the spectral analysis of a note"

type analyzeCommander struct {
	jsonOut bool
}

func NewAnalyzeCmd() *cobra.Command {
	cmder := &analyzeCommander{}

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: analyzeShortDesc,
		Long:  analyzeLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := input.Read(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return cmder.run(cmd.OutOrStdout(), content)
		},
	}

	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print the analysis as JSON")

	return cmd
}

func (c *analyzeCommander) run(w io.Writer, content string) error {
	a := spectral.Analyze(content)

	if c.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	}

	threads := strings.Join(a.ResonanceThreads, ", ")

	fmt.Fprintln(w)
	cliui.KeyValues(w, "Spectral analysis", []cliui.KeyValue{
		{Key: "line_count", Value: strconv.Itoa(a.LineCount)},
		{Key: "heading_count", Value: strconv.Itoa(a.HeadingCount)},
		{Key: "link_count", Value: strconv.Itoa(a.LinkCount)},
		{Key: "tag_count", Value: strconv.Itoa(a.TagCount)},
		{Key: "spectral_frequency", Value: strconv.FormatFloat(a.SpectralFrequency, 'f', 4, 64)},
		{Key: "structural_depth", Value: strconv.Itoa(a.StructuralDepth)},
		{Key: "connection_density", Value: strconv.FormatFloat(a.ConnectionDensity, 'f', 4, 64)},
		{Key: "resonance_threads", Value: threads},
	})
	fmt.Fprintln(w)
	return nil
}
