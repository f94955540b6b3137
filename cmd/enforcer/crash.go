package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/enforcer/internal/crashdump"
	"github.com/smykla-skalski/enforcer/internal/xdg"
	"github.com/smykla-skalski/enforcer/pkg/config"
)

const (
	unlimitedStr         = "unlimited"
	durationDisplayUnits = 2
)

var dryRun bool

var debugCrashCmd = &cobra.Command{
	Use:   "crash",
	Short: "Manage crash dumps",
	Long: `Manage crash dumps created by enforcer on panic.

Subcommands:
  list   List crash dumps
  view   View crash dump details
  clean  Remove old crash dumps`,
}

var debugCrashListCmd = &cobra.Command{
	Use:   "list",
	Short: "List crash dumps",
	Long: `List all crash dumps, newest first.

Examples:
  enforcer debug crash list`,
	Args: cobra.NoArgs,
	RunE: runDebugCrashList,
}

var debugCrashViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View crash dump details",
	Long: `View the full content of one crash dump: stack trace, runtime,
the event being evaluated and the sanitized configuration.

Examples:
  enforcer debug crash view crash-20260104T160432-a1b2c3d4`,
	Args: cobra.ExactArgs(1),
	RunE: runDebugCrashView,
}

var debugCrashCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove old crash dumps",
	Long: `Remove crash dumps exceeding crash_dump.max_dumps or crash_dump.max_age.

Examples:
  enforcer debug crash clean            # Clean based on config
  enforcer debug crash clean --dry-run  # Show what would be removed`,
	Args: cobra.NoArgs,
	RunE: runDebugCrashClean,
}

func init() {
	debugCrashCleanCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Show what would be removed without actually deleting",
	)
}

func crashStorage(name string) (*config.CrashDumpConfig, *crashdump.FilesystemStorage, error) {
	cfg, _, closeLog, err := setupCommand(name)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = closeLog() }()

	crashCfg := cfg.GetCrashDump()

	storage, err := crashdump.NewFilesystemStorage(crashCfg.GetDumpDir(xdg.CrashDumpDir()))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create storage")
	}

	return crashCfg, storage, nil
}

func runDebugCrashList(cmd *cobra.Command, _ []string) error {
	_, storage, err := crashStorage("debug crash list")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if !storage.Exists() {
		fmt.Fprintln(out, "No crash dumps found.")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Crash dumps will be stored in: %s\n", storage.Dir())

		return nil
	}

	summaries, err := storage.List()
	if err != nil {
		return errors.Wrap(err, "failed to list crash dumps")
	}

	if len(summaries) == 0 {
		fmt.Fprintln(out, "No crash dumps found.")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Directory: %s\n", storage.Dir())

		return nil
	}

	fmt.Fprintln(out, "Crash Dumps")
	fmt.Fprintln(out, "===========")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Directory: %s\n", storage.Dir())
	fmt.Fprintf(out, "Total: %d\n", len(summaries))
	fmt.Fprintln(out)

	for i := range summaries {
		displaySummary(out, i+1, &summaries[i])
	}

	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  enforcer debug crash view <id>    # View full details")
	fmt.Fprintln(out, "  enforcer debug crash clean        # Remove old dumps")

	return nil
}

func displaySummary(out io.Writer, index int, summary *crashdump.DumpSummary) {
	size := "unknown"
	if summary.Size >= 0 {
		size = humanize.Bytes(uint64(summary.Size))
	}

	fmt.Fprintf(out, "%d. %s\n", index, summary.ID)
	fmt.Fprintf(out, "   Time: %s (%s)\n",
		summary.Timestamp.Format("2006-01-02 15:04:05"),
		humanize.Time(summary.Timestamp),
	)
	fmt.Fprintf(out, "   Panic: %s\n", summary.PanicValue)

	if summary.EventKind != "" {
		fmt.Fprintf(out, "   Event: %s\n", summary.EventKind)
	}

	fmt.Fprintf(out, "   Size: %s\n", size)
	fmt.Fprintln(out)
}

func runDebugCrashView(cmd *cobra.Command, args []string) error {
	_, storage, err := crashStorage("debug crash view")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	info, err := storage.Get(args[0])
	if err != nil {
		if errors.Is(err, crashdump.ErrDumpNotFound) {
			fmt.Fprintf(out, "Crash dump not found: %s\n", args[0])
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Use 'enforcer debug crash list' to see available dumps.")

			return nil
		}

		return errors.Wrap(err, "failed to get crash dump")
	}

	fmt.Fprintln(out, "Crash Dump Details")
	fmt.Fprintln(out, "==================")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "ID: %s\n", info.ID)
	fmt.Fprintf(out, "Timestamp: %s\n", info.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(out, "Panic Value: %s\n", info.PanicValue)
	fmt.Fprintln(out)

	displayRuntimeInfo(out, &info.Runtime)
	displayMetadata(out, &info.Metadata)

	if info.Event != nil {
		displayEventInfo(out, info.Event)
	}

	if len(info.Config) > 0 {
		displayConfigSnapshot(out, info.Config)
	}

	displayStackTrace(out, info.StackTrace)

	return nil
}

func displayRuntimeInfo(out io.Writer, rt *crashdump.RuntimeInfo) {
	fmt.Fprintln(out, "Runtime")
	fmt.Fprintln(out, "-------")
	fmt.Fprintf(out, "  Go Version: %s\n", rt.GoVersion)
	fmt.Fprintf(out, "  OS/Arch: %s/%s\n", rt.GOOS, rt.GOARCH)
	fmt.Fprintf(out, "  NumCPU: %d\n", rt.NumCPU)
	fmt.Fprintf(out, "  NumGoroutine: %d\n", rt.NumGoroutine)
	fmt.Fprintln(out)
}

func displayMetadata(out io.Writer, metadata *crashdump.DumpMetadata) {
	fmt.Fprintln(out, "Metadata")
	fmt.Fprintln(out, "--------")

	printIfSet(out, "Version", metadata.Version)
	printIfSet(out, "User", metadata.User)
	printIfSet(out, "Hostname", metadata.Hostname)
	printIfSet(out, "Working Dir", metadata.WorkingDir)

	fmt.Fprintln(out)
}

func displayEventInfo(out io.Writer, ev *crashdump.EventInfo) {
	fmt.Fprintln(out, "Event")
	fmt.Fprintln(out, "-----")
	fmt.Fprintf(out, "  Kind: %s\n", ev.Kind)

	printIfSet(out, "Tool", ev.Tool)
	printIfSet(out, "Session", ev.SessionID)
	printIfSet(out, "Command", ev.Command)
	printIfSet(out, "File Path", ev.FilePath)
	printIfSet(out, "Prompt", ev.Prompt)

	if len(ev.Fields) > 0 {
		fmt.Fprintf(out, "  Fields: %s\n", strings.Join(ev.Fields, ", "))
	}

	fmt.Fprintln(out)
}

func printIfSet(out io.Writer, label, value string) {
	if value != "" {
		fmt.Fprintf(out, "  %s: %s\n", label, value)
	}
}

func displayConfigSnapshot(out io.Writer, cfg map[string]any) {
	fmt.Fprintln(out, "Configuration Snapshot")
	fmt.Fprintln(out, "----------------------")

	data, err := json.MarshalIndent(cfg, "  ", "  ")
	if err != nil {
		fmt.Fprintf(out, "  (failed to format config: %v)\n", err)
	} else {
		fmt.Fprintf(out, "  %s\n", data)
	}

	fmt.Fprintln(out)
}

func displayStackTrace(out io.Writer, stackTrace string) {
	fmt.Fprintln(out, "Stack Trace")
	fmt.Fprintln(out, "-----------")

	for line := range strings.SplitSeq(stackTrace, "\n") {
		if line != "" {
			fmt.Fprintf(out, "  %s\n", line)
		}
	}

	fmt.Fprintln(out)
}

func runDebugCrashClean(cmd *cobra.Command, _ []string) error {
	crashCfg, storage, err := crashStorage("debug crash clean")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if !storage.Exists() {
		fmt.Fprintln(out, "No crash dumps directory found.")

		return nil
	}

	retention := crashCfg.GetRetention()

	if dryRun {
		return dryRunClean(out, storage, retention)
	}

	removed, err := storage.Prune(retention)
	if err != nil {
		return errors.Wrap(err, "failed to prune crash dumps")
	}

	fmt.Fprintln(out, "Crash Dumps Cleanup")
	fmt.Fprintln(out, "===================")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Directory: %s\n", storage.Dir())
	fmt.Fprintln(out, formatRetention(retention))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Removed: %d dump(s)\n", removed)

	return nil
}

func dryRunClean(out io.Writer, storage crashdump.Storage, retention config.Retention) error {
	summaries, err := storage.List()
	if err != nil {
		return errors.Wrap(err, "failed to list crash dumps")
	}

	if len(summaries) == 0 {
		fmt.Fprintln(out, "No crash dumps found.")

		return nil
	}

	now := time.Now()
	toRemove := crashdump.Removable(summaries, retention, now)

	fmt.Fprintln(out, "Crash Dumps Cleanup (Dry Run)")
	fmt.Fprintln(out, "=============================")
	fmt.Fprintln(out)
	fmt.Fprintln(out, formatRetention(retention))
	fmt.Fprintln(out)

	if len(toRemove) == 0 {
		fmt.Fprintln(out, "No crash dumps would be removed.")

		return nil
	}

	fmt.Fprintf(out, "Would remove %d dump(s):\n", len(toRemove))

	for _, summary := range toRemove {
		fmt.Fprintf(out, "  - %s (age: %s)\n", summary.ID, formatDuration(now.Sub(summary.Timestamp)))
	}

	return nil
}

func formatRetention(r config.Retention) string {
	return fmt.Sprintf("Retention: %s dumps, %s age", formatCount(r.MaxDumps), formatDuration(r.MaxAge))
}

func formatCount(n int) string {
	if n <= 0 {
		return unlimitedStr
	}

	return fmt.Sprintf("%d", n)
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return unlimitedStr
	}

	return durafmt.Parse(d).LimitFirstN(durationDisplayUnits).String()
}
