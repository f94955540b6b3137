package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/enforcer/internal/audit"
	"github.com/smykla-skalski/enforcer/internal/color"
	"github.com/smykla-skalski/enforcer/internal/report"
)

const defaultAuditLimit = 20

var (
	auditLimit int
	auditJSON  bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the decision audit log",
	Long: `Inspect the decision audit log.

Decisions are recorded when audit.enabled is true or --audit-log is passed
to the hook.

Subcommands:
  list  List recent decisions`,
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent decisions",
	Long: `List recent decisions, newest first.

Examples:
  enforcer audit list              # Last 20 decisions
  enforcer audit list --limit 0    # All decisions
  enforcer audit list --json       # Output as JSON lines`,
	Args: cobra.NoArgs,
	RunE: runAuditList,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditListCmd)

	auditListCmd.Flags().IntVar(
		&auditLimit,
		"limit",
		defaultAuditLimit,
		"Limit number of entries to show (0 = all)",
	)

	auditListCmd.Flags().BoolVar(
		&auditJSON,
		"json",
		false,
		"Output entries as JSON lines",
	)
}

func runAuditList(cmd *cobra.Command, _ []string) error {
	cfg, log, closeLog, err := setupCommand("audit list")
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	auditLog := audit.NewLogger(cfg.GetAudit().GetLogFile(""), audit.WithLogger(log))

	entries, err := auditLog.Recent(auditLimit)
	if err != nil {
		return errors.Wrap(err, "reading audit log")
	}

	out := cmd.OutOrStdout()

	if auditJSON {
		enc := json.NewEncoder(out)
		for _, e := range entries {
			if err := enc.Encode(e); err != nil {
				return errors.Wrap(err, "encoding audit entry")
			}
		}

		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintf(out, "No audit entries in %s\n", auditLog.Path())

		return nil
	}

	theme := color.NewTheme(color.Enabled(noColorFlag, os.Stdout))
	rows := make([][]string, 0, len(entries))

	for _, e := range entries {
		rows = append(rows, []string{
			humanize.Time(e.Timestamp),
			e.Kind,
			orDash(e.Tool),
			theme.ForAction(e.Action).Render(e.Action),
			orDash(strings.Join(e.ReasonCodes, ", ")),
		})
	}

	fmt.Fprintln(out, report.RenderTable(
		[]string{"When", "Kind", "Tool", "Action", "Reasons"},
		rows,
		theme,
	))

	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
