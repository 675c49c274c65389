// Package output renders visible entries to a terminal with severity-based
// colors. It implements the coordinator's render surface contract.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/rkot1/rtt-viewer/internal/model"
)

var (
	styleRaw   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	styleInfo  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleDebug = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleTag   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	styleMeta  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Faint(true)
)

// TermRenderer prints entries as colorized terminal lines. RebuildAll simply
// reprints the visible sequence; a scrollback terminal has no incremental
// DOM to patch.
type TermRenderer struct {
	w io.Writer
}

// NewTermRenderer returns a renderer writing to stdout.
func NewTermRenderer() *TermRenderer {
	return &TermRenderer{w: os.Stdout}
}

// NewTermRendererTo returns a renderer writing to w.
func NewTermRendererTo(w io.Writer) *TermRenderer {
	return &TermRenderer{w: w}
}

// RebuildAll reprints the whole visible sequence.
func (r *TermRenderer) RebuildAll(entries []model.LogEntry) {
	for _, e := range entries {
		r.AppendOne(e)
	}
}

// AppendOne prints one entry.
func (r *TermRenderer) AppendOne(e model.LogEntry) {
	fmt.Fprintln(r.w, formatLine(e))
}

// ScrollToBottom is a no-op; the terminal already follows appended output.
func (r *TermRenderer) ScrollToBottom() {}

func formatLine(e model.LogEntry) string {
	meta := fmt.Sprintf("T%d", e.Terminal)
	if e.DeviceTimestamp != "" {
		meta += " " + e.DeviceTimestamp
	}

	line := styleMeta.Render(meta) + " " + levelTag(e.Level)
	if e.Tag != "" {
		line += " " + styleTag.Render(e.Tag+":")
	}
	return line + " " + e.Message
}

func levelTag(level string) string {
	padded := fmt.Sprintf("%-5s", model.ExpandLevel(level))
	switch model.ExpandLevel(level) {
	case model.LevelDebug:
		return styleDebug.Render(padded)
	case model.LevelWarn:
		return styleWarn.Render(padded)
	case model.LevelError:
		return styleError.Render(padded)
	case model.LevelInfo:
		return styleInfo.Render(padded)
	}
	return styleRaw.Render(padded)
}
