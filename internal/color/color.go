// Package color provides color detection and theming for CLI output.
package color

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Profile reports whether color output should be enabled.
//
// Color is disabled when any of:
//   - NO_COLOR env is set (any value, per https://no-color.org)
//   - CLICOLOR=0
//   - TERM=dumb
//   - noColorFlag is true (--no-color CLI flag)
func Profile(noColorFlag bool) bool {
	if noColorFlag {
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	if os.Getenv("CLICOLOR") == "0" {
		return false
	}

	if os.Getenv("TERM") == "dumb" {
		return false
	}

	return true
}

// IsTerminal returns true if the given file is a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}

	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits int
}

// Enabled combines Profile with a terminal check on f.
func Enabled(noColorFlag bool, f *os.File) bool {
	return Profile(noColorFlag) && IsTerminal(f)
}

// Theme holds lipgloss styles for verdict output.
type Theme struct {
	Allow     lipgloss.Style
	Annotated lipgloss.Style
	Block     lipgloss.Style
	Fault     lipgloss.Style
	Header    lipgloss.Style
	Name      lipgloss.Style
	Muted     lipgloss.Style
}

// NewTheme creates a Theme. When color is false, all styles are empty (no ANSI codes).
func NewTheme(color bool) Theme {
	if !color {
		return Theme{}
	}

	return Theme{
		Allow:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")), // bright green
		Annotated: lipgloss.NewStyle().Foreground(lipgloss.Color("11")), // bright yellow
		Block:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Fault:     lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
		Header:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Name:      lipgloss.NewStyle().Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")), // gray
	}
}

// ForAction returns the style for a verdict action name
// ("allow", "allowannotated", "block"). Unknown names are treated as faults.
func (t Theme) ForAction(action string) lipgloss.Style {
	switch action {
	case "allow":
		return t.Allow
	case "allowannotated":
		return t.Annotated
	case "block":
		return t.Block
	default:
		return t.Fault
	}
}
