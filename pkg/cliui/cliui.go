// Package cliui provides terminal UI helpers (spinners, step indicators,
// key/value listings, markdown rendering) for hiveswarm CLI commands.
package cliui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	SuccessMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	StepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	NameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	KeyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
	ValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	DimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	WarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Step prints an animated spinner while fn runs, then replaces it with
// a ✓ or ✗ checkmark and elapsed time.
func Step(w io.Writer, msg string, fn func() error) error {
	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Go(func() {
		frame := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			fmt.Fprintf(w, "\r  %s %s",
				spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]),
				msg,
			)

			select {
			case <-done:
				return
			case <-ticker.C:
				frame++
			}
		}
	})

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	// The spinner must be gone before the final line is written.
	close(done)
	wg.Wait()

	fmt.Fprintf(w, "\r  %s %s %s\n",
		Mark(err),
		msg,
		StepStyle.Render(fmt.Sprintf("(%s)", FormatDuration(elapsed))),
	)

	return err
}

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// KeyValue is one row of a KeyValues listing.
type KeyValue struct {
	Key   string
	Value string
}

// KeyValues writes a header followed by aligned key/value rows.
func KeyValues(w io.Writer, header string, rows []KeyValue) {
	if header != "" {
		fmt.Fprintln(w, HeaderStyle.Render(header))
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r.Key))
	}

	for _, r := range rows {
		value := r.Value
		if value == "" {
			value = DimStyle.Render("(unset)")
		} else {
			value = ValueStyle.Render(value)
		}
		pad := strings.Repeat(" ", width-len(r.Key))
		fmt.Fprintf(w, "  %s%s  %s\n", KeyStyle.Render(r.Key), pad, value)
	}
}

// Warn writes a highlighted warning line.
func Warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", WarnStyle.Render(fmt.Sprintf(format, args...)))
}

// RenderMarkdown renders markdown content for terminal display using glamour.
// The unrendered content is returned alongside any error.
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}
