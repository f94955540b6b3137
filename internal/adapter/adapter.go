// Package adapter is the hook transport boundary: it reads one event,
// evaluates it and writes the verdict.
package adapter

import (
	"context"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/enforcer/internal/audit"
	internalconfig "github.com/smykla-skalski/enforcer/internal/config"
	"github.com/smykla-skalski/enforcer/internal/config/factory"
	"github.com/smykla-skalski/enforcer/internal/decision"
	"github.com/smykla-skalski/enforcer/internal/dispatcher"
	"github.com/smykla-skalski/enforcer/internal/evaluator"
	"github.com/smykla-skalski/enforcer/internal/hookresponse"
	"github.com/smykla-skalski/enforcer/internal/parser"
	"github.com/smykla-skalski/enforcer/pkg/config"
	"github.com/smykla-skalski/enforcer/pkg/hook"
	"github.com/smykla-skalski/enforcer/pkg/logger"
)

// Exit codes.
const (
	// ExitAllow is returned for Allow and AllowAnnotated verdicts.
	ExitAllow = 0

	// ExitFault is returned for malformed input and internal faults.
	ExitFault = 1

	// ExitBlock is returned for Block verdicts.
	ExitBlock = 2
)

// DevVersion is the version reported by development builds.
const DevVersion = "dev"

// Adapter evaluates events against a registry of policies.
type Adapter struct {
	kindHint hook.EventKind
	cfg      *config.Config
	registry *evaluator.Registry
	logger   logger.Logger
	audit    *audit.Logger
	version  string
	observe  func(*hook.Event)
}

// Option configures the Adapter.
type Option func(*Adapter)

// WithKindHint forces the event kind instead of classifying the payload.
func WithKindHint(kind hook.EventKind) Option {
	return func(a *Adapter) {
		a.kindHint = kind
	}
}

// WithConfig sets the configuration. Defaults apply when unset.
func WithConfig(cfg *config.Config) Option {
	return func(a *Adapter) {
		if cfg != nil {
			a.cfg = cfg
		}
	}
}

// WithRegistry sets a prebuilt registry instead of building one from config.
func WithRegistry(registry *evaluator.Registry) Option {
	return func(a *Adapter) {
		a.registry = registry
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(a *Adapter) {
		if log != nil {
			a.logger = log
		}
	}
}

// WithAudit records every decision to the given audit log.
func WithAudit(log *audit.Logger) Option {
	return func(a *Adapter) {
		a.audit = log
	}
}

// WithVersion sets the version reported in metadata.hook_version.
func WithVersion(version string) Option {
	return func(a *Adapter) {
		if version != "" {
			a.version = version
		}
	}
}

// WithEventObserver registers a callback invoked with each decoded event
// before evaluation.
func WithEventObserver(fn func(*hook.Event)) Option {
	return func(a *Adapter) {
		a.observe = fn
	}
}

// New creates an Adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		cfg:     internalconfig.DefaultConfig(),
		logger:  logger.NewNoOpLogger(),
		version: DevVersion,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Run evaluates one event with the default configuration.
func Run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) int {
	return New().Run(ctx, stdin, stdout, stderr)
}

// Outcome is the full result of evaluating one payload.
type Outcome struct {
	// Event is the decoded event.
	Event *hook.Event

	// Verdict is the aggregated decision.
	Verdict *decision.Verdict

	// Report holds the evaluator outcomes and faults.
	Report *dispatcher.Report

	// Output is the encoded stdout payload. Empty for faults.
	Output []byte

	// ExitCode is the process exit status.
	ExitCode int
}

// Evaluate decodes and evaluates a raw payload. Decode errors and
// configuration faults are returned as errors.
func (a *Adapter) Evaluate(ctx context.Context, raw []byte) (*Outcome, error) {
	ev, err := parser.Parse(raw, a.kindHint)
	if err != nil {
		return nil, err
	}

	if a.observe != nil {
		a.observe(ev)
	}

	if err := internalconfig.CheckHookVersion(a.cfg, a.version); err != nil {
		return nil, err
	}

	registry, err := a.getRegistry()
	if err != nil {
		return nil, err
	}

	report := dispatcher.NewDispatcher(registry, a.logger).Dispatch(ctx, ev)
	verdict := decision.Decide(ev, report.Outcomes)

	out := &Outcome{
		Event:    ev,
		Verdict:  verdict,
		Report:   report,
		ExitCode: verdict.Action.ExitCode(),
	}

	if report.HasFaults() && !verdict.IsBlocked() {
		out.ExitCode = ExitFault

		return out, nil
	}

	out.Output, err = hookresponse.Build(ev, verdict, a.version)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Run reads one event from stdin, writes the verdict to stdout and returns
// the exit code. Diagnostics go to stderr. Stdout stays empty on faults.
func (a *Adapter) Run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) int {
	raw, err := io.ReadAll(stdin)
	if err != nil {
		return a.fail(stderr, errors.Wrap(err, "failed to read stdin"))
	}

	out, err := a.Evaluate(ctx, raw)
	if err != nil {
		return a.fail(stderr, err)
	}

	a.record(out)

	faults := make([]error, 0, len(out.Report.Faults))
	for _, f := range out.Report.Faults {
		faults = append(faults, f)
	}

	if msg := hookresponse.FormatFaults(faults); msg != "" {
		fmt.Fprint(stderr, msg)
	}

	if out.ExitCode == ExitFault {
		a.logger.Error("evaluation faulted", "faults", len(faults))

		return ExitFault
	}

	if _, err := stdout.Write(out.Output); err != nil {
		a.logger.Error("failed to write response", "error", err)

		return ExitFault
	}

	if out.Verdict.IsBlocked() {
		fmt.Fprint(stderr, hookresponse.FormatBlockMessage(out.Verdict))
		a.logger.Info("event blocked", "blocked_by", out.Verdict.BlockedBy)
	} else {
		a.logger.Info("event allowed", "action", out.Verdict.Action, "flags", out.Verdict.Flags)
	}

	return out.ExitCode
}

func (a *Adapter) fail(stderr io.Writer, err error) int {
	a.logger.Error("hook failed", "error", err)
	fmt.Fprintf(stderr, "enforcer: %v\n", err)

	return ExitFault
}

func (a *Adapter) record(out *Outcome) {
	if a.audit == nil {
		return
	}

	if err := a.audit.Record(out.Event, out.Verdict, len(out.Report.Faults)); err != nil {
		a.logger.Error("failed to record audit entry", "error", err)
	}
}

func (a *Adapter) getRegistry() (*evaluator.Registry, error) {
	if a.registry != nil {
		return a.registry, nil
	}

	registry, err := factory.NewRegistryBuilder(a.logger).Build(a.cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build policy registry")
	}

	a.registry = registry

	return registry, nil
}
