// Package report renders CLI tables and diffs.
package report

import (
	"bytes"
	"os"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"

	"github.com/smykla-skalski/enforcer/internal/color"
)

const (
	// minTableW is the narrowest terminal that gets fitted column widths.
	minTableW = 40

	// colOverhead is one border char plus left and right padding per column.
	colOverhead = 3

	// minLastColW is the minimum width left for the last (wrapping) column.
	minLastColW = 20
)

// RenderTable builds a rounded table. When stdout or stderr is a terminal
// the last column is wrapped to fit its width.
func RenderTable(headers []string, rows [][]string, theme color.Theme) string {
	return RenderTableWidth(termWidth(), headers, rows, theme)
}

// RenderTableWidth is RenderTable with an explicit terminal width. A width of
// zero disables fitting.
func RenderTableWidth(width int, headers []string, rows [][]string, theme color.Theme) string {
	if len(rows) == 0 {
		return ""
	}

	colWidths := calcColumnWidths(width, headers, rows)

	var buf bytes.Buffer

	opts := []tablewriter.Option{
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleRounded),
		})),
		tablewriter.WithPadding(tw.Padding{Left: " ", Right: " "}),
		tablewriter.WithConfig(tablewriter.NewConfigBuilder().
			WithTrimSpace(tw.Off).
			Row().Formatting().WithAutoWrap(tw.WrapNormal).Build().
			Build().Build()),
	}

	if colWidths != nil {
		opts = append(opts, tablewriter.WithColumnWidths(toCellWidths(colWidths)))
	}

	t := tablewriter.NewTable(&buf, opts...)

	styled := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = theme.Header.Render(h)
	}

	t.Header(styled)

	for _, row := range rows {
		cells := make([]string, len(row))

		for i, cell := range row {
			cells[i] = ShortenPath(cell)
			if w, ok := colWidths[i]; ok {
				cells[i] = padToWidth(cells[i], w)
			}
		}

		_ = t.Append(cells)
	}

	_ = t.Render()

	return dimBorders(strings.TrimRight(buf.String(), "\n"), theme)
}

// calcColumnWidths sizes every column but the last to its widest visible
// cell and gives the rest of the terminal to the last column. Returns nil when
// the terminal is unknown or too narrow.
func calcColumnWidths(width int, headers []string, rows [][]string) map[int]int {
	if width < minTableW || len(headers) == 0 {
		return nil
	}

	last := len(headers) - 1
	widths := make(map[int]int, len(headers))

	used := len(headers)*colOverhead + 1

	for col := range last {
		w := visibleWidth(headers[col])

		for _, row := range rows {
			if col < len(row) {
				w = max(w, visibleWidth(row[col]))
			}
		}

		widths[col] = w
		used += w
	}

	remaining := width - used
	if remaining < minLastColW {
		return nil
	}

	widths[last] = remaining

	return widths
}

// toCellWidths converts content widths to cell widths (content + padding).
func toCellWidths(contentWidths map[int]int) tw.Mapper[int, int] {
	const padW = 2

	m := make(tw.Mapper[int, int], len(contentWidths))
	for col, w := range contentWidths {
		m[col] = w + padW
	}

	return m
}

func visibleWidth(s string) int {
	return runewidth.StringWidth(ansi.Strip(s))
}

// padToWidth right-pads s with spaces so its display width reaches w.
func padToWidth(s string, w int) string {
	visible := visibleWidth(s)
	if visible >= w {
		return s
	}

	return s + strings.Repeat(" ", w-visible)
}

// dimBorders applies the muted style to box-drawing border characters.
func dimBorders(s string, theme color.Theme) string {
	for _, ch := range []string{
		"╭", "╮", "╰", "╯", "│", "─", "┬", "┴", "├", "┤", "┼",
	} {
		s = strings.ReplaceAll(s, ch, theme.Muted.Render(ch))
	}

	return s
}

// termWidth returns the terminal width or 0 if not a terminal.
func termWidth() int {
	for _, f := range []*os.File{os.Stdout, os.Stderr} {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 { //nolint:gosec // fd fits int
			return w
		}
	}

	return 0
}

// homeDir caches the user's home directory for path shortening.
var homeDir, _ = os.UserHomeDir()

// ShortenPath replaces the user's home directory prefix with ~.
func ShortenPath(s string) string {
	if homeDir == "" {
		return s
	}

	return strings.ReplaceAll(s, homeDir, "~")
}
