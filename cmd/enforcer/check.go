package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/smykla-skalski/enforcer/internal/adapter"
	"github.com/smykla-skalski/enforcer/internal/color"
	"github.com/smykla-skalski/enforcer/internal/config/factory"
	"github.com/smykla-skalski/enforcer/internal/parser"
	"github.com/smykla-skalski/enforcer/internal/report"
)

const (
	defaultCheckGlob = "**/*.json"
	faultAction      = "fault"
)

var (
	checkGlob     string
	checkDiff     bool
	checkJobs     int
	checkHookType string
)

var checkCmd = &cobra.Command{
	Use:   "check <file|dir>...",
	Short: "Evaluate recorded hook payloads",
	Long: `Evaluate recorded hook payloads without acting as a hook.

Each argument is a JSON payload file or a directory searched with --glob.
Payloads are evaluated concurrently with the loaded configuration and a
summary table is printed.

Exit codes:
  0  every payload was allowed
  1  a payload could not be decoded or an evaluator failed
  2  at least one payload was blocked

Examples:
  enforcer check testdata/events
  enforcer check --diff prompt.json
  enforcer check -T PreToolUse --glob '**/*.event' recordings/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(
		&checkGlob,
		"glob",
		defaultCheckGlob,
		"Pattern used to find payloads inside directories",
	)
	checkCmd.Flags().BoolVar(
		&checkDiff,
		"diff",
		false,
		"Print a diff between each payload and the enforced output",
	)
	checkCmd.Flags().IntVarP(
		&checkJobs,
		"jobs",
		"j",
		runtime.NumCPU(),
		"Number of payloads evaluated concurrently",
	)
	checkCmd.Flags().StringVarP(
		&checkHookType,
		"hook-type",
		"T",
		"",
		"Hook event kind applied to every payload",
	)
}

// checkResult is the evaluation of one payload file.
type checkResult struct {
	path    string
	raw     []byte
	outcome *adapter.Outcome
	err     error
}

func (r *checkResult) action() string {
	if r.err != nil || r.outcome == nil || r.outcome.ExitCode == adapter.ExitFault {
		return faultAction
	}

	return r.outcome.Verdict.Action.String()
}

func (r *checkResult) kind() string {
	if r.outcome == nil {
		return "-"
	}

	return r.outcome.Event.Kind.String()
}

func (r *checkResult) reasons() string {
	if r.err != nil {
		return r.err.Error()
	}

	codes := slices.Clone(r.outcome.Verdict.ReasonCodes)
	for _, f := range r.outcome.Report.Faults {
		codes = append(codes, "fault: "+f.Evaluator)
	}

	return orDash(strings.Join(codes, ", "))
}

func runCheck(cmd *cobra.Command, args []string) error {
	kind, err := parser.ParseKind(checkHookType)
	if err != nil {
		return errors.Wrap(err, "invalid --hook-type")
	}

	if !doublestar.ValidatePattern(checkGlob) {
		return errors.Newf("invalid --glob pattern %q", checkGlob)
	}

	cfg, log, closeLog, err := setupCommand("check")
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	files, err := collectPayloads(args, checkGlob)
	if err != nil {
		return err
	}

	registry, err := factory.NewRegistryBuilder(log).Build(cfg)
	if err != nil {
		return err
	}

	a := adapter.New(
		adapter.WithKindHint(kind),
		adapter.WithConfig(cfg),
		adapter.WithRegistry(registry),
		adapter.WithLogger(log),
		adapter.WithVersion(version),
	)

	results := evaluateAll(cmd.Context(), a, files, checkJobs)

	out := cmd.OutOrStdout()
	printCheckResults(out, results)

	exitCode = checkExitCode(results)

	return nil
}

// collectPayloads expands arguments into a sorted, de-duplicated file list.
func collectPayloads(args []string, pattern string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read %s", arg)
		}

		if !info.IsDir() {
			files = append(files, arg)

			continue
		}

		matches, err := doublestar.Glob(os.DirFS(arg), pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to search %s", arg)
		}

		for _, m := range matches {
			files = append(files, filepath.Join(arg, filepath.FromSlash(m)))
		}
	}

	slices.Sort(files)

	return slices.Compact(files), nil
}

// evaluateAll evaluates every file with at most jobs concurrent evaluations.
// Results keep the order of files.
func evaluateAll(ctx context.Context, a *adapter.Adapter, files []string, jobs int) []*checkResult {
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]*checkResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))

	for i, path := range files {
		g.Go(func() error {
			res := &checkResult{path: path}
			results[i] = res

			res.raw, res.err = os.ReadFile(path) //nolint:gosec // user-supplied payload
			if res.err != nil {
				return nil
			}

			res.outcome, res.err = a.Evaluate(gctx, res.raw)

			return nil
		})
	}

	_ = g.Wait()

	return results
}

func printCheckResults(out io.Writer, results []*checkResult) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No payloads found.")

		return
	}

	theme := color.NewTheme(color.Enabled(noColorFlag, os.Stdout))
	rows := make([][]string, 0, len(results))

	for _, r := range results {
		action := r.action()
		rows = append(rows, []string{
			report.ShortenPath(r.path),
			r.kind(),
			theme.ForAction(action).Render(action),
			r.reasons(),
		})
	}

	fmt.Fprintln(out, report.RenderTable(
		[]string{"Payload", "Kind", "Action", "Reasons"},
		rows,
		theme,
	))

	if !checkDiff {
		return
	}

	for _, r := range results {
		if r.outcome == nil || len(r.outcome.Output) == 0 {
			continue
		}

		diff, err := report.JSONDiff(r.raw, r.outcome.Output, r.path, r.path+" (enforced)")
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", r.path, err)

			continue
		}

		if diff != "" {
			fmt.Fprint(out, "\n"+diff)
		}
	}
}

// checkExitCode returns 2 if any payload was blocked, else 1 if any failed.
func checkExitCode(results []*checkResult) int {
	code := adapter.ExitAllow

	for _, r := range results {
		switch r.action() {
		case "block":
			return adapter.ExitBlock
		case faultAction:
			code = adapter.ExitFault
		}
	}

	return code
}
