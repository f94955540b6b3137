package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/enforcer/internal/color"
	internalconfig "github.com/smykla-skalski/enforcer/internal/config"
	"github.com/smykla-skalski/enforcer/internal/doctor"
	"github.com/smykla-skalski/enforcer/internal/report"
)

var (
	doctorVerbose    bool
	doctorFix        bool
	doctorCategories []string
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose enforcer setup and configuration",
	Long: `Diagnose enforcer setup and configuration issues.

Checks:
- Configuration loads and validates
- Config files are not world-writable
- hook_version_constraint is satisfied
- Policies build and at least one is enabled
- Log, audit and crash dump directories are writable

Exits 1 when any check reports an error.

Examples:
  enforcer doctor
  enforcer doctor --verbose
  enforcer doctor --fix
  enforcer doctor --category config,paths`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().BoolVar(
		&doctorVerbose,
		"verbose",
		false,
		"Show details for every check",
	)

	doctorCmd.Flags().BoolVar(
		&doctorFix,
		"fix",
		false,
		"Apply available fixes and re-run the checks",
	)

	doctorCmd.Flags().StringSliceVar(
		&doctorCategories,
		"category",
		nil,
		"Filter checks by category (config, paths, policies)",
	)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	categories, err := parseCategories(doctorCategories)
	if err != nil {
		return err
	}

	log, closeLog := openLogger()
	defer func() { _ = closeLog() }()

	log.Info("doctor command invoked", "fix", doctorFix, "categories", doctorCategories)

	loader, err := internalconfig.NewKoanfLoader()
	if err != nil {
		return errors.Wrap(err, "failed to create config loader")
	}

	flags := buildFlagsMap()

	cfg, err := loader.Load(flags)
	if err != nil {
		log.Debug("configuration did not load", "error", err)
	}

	registry := doctor.NewStandardRegistry(doctor.Environment{
		Loader:  loader,
		Flags:   flags,
		Config:  cfg,
		Version: version,
		Logger:  log,
	})

	ctx := context.Background()
	out := cmd.OutOrStdout()
	theme := color.NewTheme(color.Enabled(noColorFlag, os.Stdout))

	results := registry.RunCategories(ctx, categories)

	if doctorFix {
		outcomes := registry.ApplyFixes(ctx, results)
		for _, o := range outcomes {
			if o.Err != nil {
				fmt.Fprintf(out, "fix %s failed: %v\n", o.FixID, o.Err)
				log.Error("fix failed", "fix", o.FixID, "error", o.Err)

				continue
			}

			fmt.Fprintf(out, "fixed %s (%s)\n", o.Check, o.FixID)
		}

		if len(outcomes) > 0 {
			results = registry.RunCategories(ctx, categories)
		}
	}

	fmt.Fprintln(out, report.RenderTable(
		[]string{"Check", "Status", "Message"},
		doctorRows(results, doctorVerbose, theme),
		theme,
	))

	summary := doctor.Summarize(results)
	fmt.Fprintf(out, "%d passed, %d warnings, %d errors, %d skipped\n",
		summary.Passed, summary.Warnings, summary.Errors, summary.Skipped)

	if summary.Errors > 0 {
		exitCode = 1
	}

	return nil
}

func parseCategories(names []string) ([]doctor.Category, error) {
	known := []doctor.Category{doctor.CategoryConfig, doctor.CategoryPaths, doctor.CategoryPolicies}
	categories := make([]doctor.Category, 0, len(names))

outer:
	for _, n := range names {
		for _, c := range known {
			if strings.EqualFold(n, string(c)) {
				categories = append(categories, c)

				continue outer
			}
		}

		return nil, errors.Newf("unknown category %q", n)
	}

	return categories, nil
}

func doctorRows(results []doctor.CheckResult, verbose bool, theme color.Theme) [][]string {
	rows := make([][]string, 0, len(results))

	for _, r := range results {
		message := r.Message
		if (verbose || !r.IsPassed()) && len(r.Details) > 0 {
			message += "\n" + strings.Join(r.Details, "\n")
		}

		if !r.IsPassed() && r.HasFix() && !doctorFix {
			message += "\n" + theme.Muted.Render("fixable with --fix")
		}

		rows = append(rows, []string{
			theme.Name.Render(r.Name),
			statusStyle(r, theme).Render(statusLabel(r)),
			message,
		})
	}

	return rows
}

func statusLabel(r doctor.CheckResult) string {
	switch {
	case r.IsPassed():
		return "ok"
	case r.IsError():
		return "error"
	case r.IsWarning():
		return "warning"
	default:
		return "skipped"
	}
}

func statusStyle(r doctor.CheckResult, theme color.Theme) lipgloss.Style {
	switch {
	case r.IsPassed():
		return theme.Allow
	case r.IsError():
		return theme.Block
	case r.IsWarning():
		return theme.Annotated
	default:
		return theme.Muted
	}
}
