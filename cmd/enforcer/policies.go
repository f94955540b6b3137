package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smykla-skalski/enforcer/internal/color"
	internalconfig "github.com/smykla-skalski/enforcer/internal/config"
	"github.com/smykla-skalski/enforcer/internal/config/factory"
	"github.com/smykla-skalski/enforcer/internal/report"
	"github.com/smykla-skalski/enforcer/pkg/config"
)

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List policies and their effective settings",
	Long: `List every policy with its severity, the events it applies to and
whether it is enabled after configuration is loaded.

Examples:
  enforcer policies
  enforcer policies --disable bypass`,
	Args: cobra.NoArgs,
	RunE: runPolicies,
}

func init() {
	rootCmd.AddCommand(policiesCmd)
}

func runPolicies(cmd *cobra.Command, _ []string) error {
	cfg, log, closeLog, err := setupCommand("policies")
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	registry, err := factory.NewRegistryBuilder(log).Build(cfg)
	if err != nil {
		return err
	}

	theme := color.NewTheme(color.Enabled(noColorFlag, os.Stdout))

	active := make(map[string]bool, registry.Count())
	rows := make([][]string, 0, len(internalconfig.PolicyNames))

	for _, reg := range registry.All() {
		active[reg.Evaluator.Name()] = true
		rows = append(rows, []string{
			theme.Name.Render(reg.Evaluator.Name()),
			theme.ForAction(severityAction(reg.Severity)).Render(
				reg.Severity.String()+" ("+reg.Severity.Violation()+")",
			),
			"yes",
			reg.Scope,
		})
	}

	for _, name := range internalconfig.PolicyNames {
		if !active[name] {
			rows = append(rows, []string{name, "-", theme.Muted.Render("no"), "-"})
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), report.RenderTable(
		[]string{"Policy", "Severity", "Enabled", "Applies to"},
		rows,
		theme,
	))

	return nil
}

func severityAction(s config.Severity) string {
	if s.ShouldBlock() {
		return "block"
	}

	return "allowannotated"
}
