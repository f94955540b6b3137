// Package main provides the CLI entry point for enforcer.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/smykla-skalski/enforcer/internal/adapter"
	"github.com/smykla-skalski/enforcer/internal/audit"
	"github.com/smykla-skalski/enforcer/internal/crashdump"
	"github.com/smykla-skalski/enforcer/internal/parser"
	"github.com/smykla-skalski/enforcer/pkg/config"
	"github.com/smykla-skalski/enforcer/pkg/hook"
)

var (
	hookType     string
	debugMode    bool
	traceMode    bool
	disableList  []string
	auditLogFlag string
	noColorFlag  bool

	// exitCode is the status set by the hook command.
	exitCode int

	// crashEvent stores the event being evaluated for crash recovery.
	crashEvent *hook.Event

	// crashConfig stores the loaded configuration for crash recovery.
	crashConfig *config.Config
)

func main() {
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() (code int) {
	defer func() {
		if r := recover(); r != nil {
			handlePanic(r)

			code = adapter.ExitFault
		}
	}()

	exitCode = adapter.ExitAllow

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		return adapter.ExitFault
	}

	return exitCode
}

var rootCmd = &cobra.Command{
	Use:   "enforcer",
	Short: "Agent hook policy enforcer",
	Long: `Agent hook policy enforcer - reads one hook event as JSON from stdin and
allows it, allows it with an annotation, or blocks it.

Exit codes:
  0  allowed (the possibly annotated event is written to stdout)
  1  malformed input or internal fault (diagnostic on stderr)
  2  blocked (errors on stdout and stderr)`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		checkVersionFlag()
	},
	RunE:              runHook,
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

func init() {
	rootCmd.Flags().StringVarP(
		&hookType,
		"hook-type",
		"T",
		"",
		"Hook event kind (UserPromptSubmit, PreToolUse, PostToolUse, SessionStart)",
	)
	rootCmd.Flags().StringVar(
		&auditLogFlag,
		"audit-log",
		"",
		"Append the decision to this JSONL audit log",
	)

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", true, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&traceMode, "trace", false, "Enable trace logging")
	rootCmd.PersistentFlags().StringSliceVar(
		&disableList,
		"disable",
		[]string{},
		"Comma-separated list of policies to disable (e.g., bypass,todo_tracking)",
	)
	rootCmd.PersistentFlags().BoolVar(
		&noColorFlag,
		"no-color",
		false,
		"Disable colored output",
	)
}

func runHook(cmd *cobra.Command, _ []string) error {
	if term.IsTerminal(int(os.Stdin.Fd())) { //nolint:gosec // fd fits int
		_ = cmd.Usage()
		exitCode = adapter.ExitFault

		return nil
	}

	kind, err := parser.ParseKind(hookType)
	if err != nil {
		return errors.Wrap(err, "invalid --hook-type")
	}

	log, closeLog := openLogger()
	defer func() { _ = closeLog() }()

	log.Info("hook invoked", "hook_type", hookType, "debug", debugMode, "trace", traceMode)

	cfg, err := loadConfig(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "enforcer: %v\n", err)
		exitCode = adapter.ExitFault

		return nil
	}

	crashConfig = cfg

	opts := []adapter.Option{
		adapter.WithKindHint(kind),
		adapter.WithConfig(cfg),
		adapter.WithLogger(log),
		adapter.WithVersion(version),
		adapter.WithEventObserver(func(ev *hook.Event) { crashEvent = ev }),
	}

	if auditCfg := cfg.GetAudit(); auditCfg.IsEnabled() {
		opts = append(opts, adapter.WithAudit(audit.NewLogger(
			auditCfg.GetLogFile(""),
			audit.WithLogger(log),
		)))
	}

	exitCode = adapter.New(opts...).Run(context.Background(), os.Stdin, os.Stdout, os.Stderr)

	return nil
}

// handlePanic writes a crash dump for a recovered panic.
func handlePanic(recovered any) {
	fmt.Fprintf(os.Stderr, "panic: %v\n", recovered)

	path, err := crashdump.Handle(version, recovered, crashEvent, crashConfig)
	if err != nil {
		if !errors.Is(err, crashdump.ErrDisabled) {
			fmt.Fprintf(os.Stderr, "failed to write crash dump: %v\n", err)
		}

		return
	}

	fmt.Fprintf(os.Stderr, "crash dump saved to: %s\n", path)
}
