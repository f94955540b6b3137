// Package evaluator provides the policy evaluator contract, its results and
// the registry that selects evaluators for an event.
package evaluator

//go:generate mockgen -source=evaluator.go -destination=evaluator_mock.go -package=evaluator

import (
	"context"

	"github.com/smykla-skalski/enforcer/pkg/hook"
	"github.com/smykla-skalski/enforcer/pkg/logger"
)

// Evaluator inspects one event and reports whether its policy is violated.
//
// Implementations must be pure: the same event always yields the same
// result, with no I/O, clock or randomness involved.
type Evaluator interface {
	// Name returns the policy name (e.g. "bypass").
	Name() string

	// Evaluate evaluates the event. An error means the evaluator could not
	// reach a decision and is reported as an internal fault.
	Evaluate(ctx context.Context, ev *hook.Event) (*Result, error)
}

// Result represents the outcome of one evaluator.
type Result struct {
	// Triggered indicates whether the policy was violated.
	Triggered bool

	// ReasonCode identifies the violated policy (e.g. "research-bypass").
	ReasonCode string

	// Message is the human-readable explanation. Empty when not triggered.
	Message string

	// Annotation is the text appended to the outgoing payload on a soft
	// violation. Defaults to Message when empty.
	Annotation string

	// Flag is the metadata flag raised on a soft violation, if any.
	Flag string

	// Details contains additional details about the evaluation.
	Details map[string]string
}

// Pass creates a non-triggered result.
func Pass() *Result {
	return &Result{}
}

// Trigger creates a triggered result.
func Trigger(reasonCode, message string) *Result {
	return &Result{
		Triggered:  true,
		ReasonCode: reasonCode,
		Message:    message,
	}
}

// WithAnnotation sets the annotation text.
func (r *Result) WithAnnotation(annotation string) *Result {
	r.Annotation = annotation

	return r
}

// WithFlag sets the metadata flag raised by the result.
func (r *Result) WithFlag(flag string) *Result {
	r.Flag = flag

	return r
}

// AddDetail adds a detail to the result.
func (r *Result) AddDetail(key, value string) *Result {
	if r.Details == nil {
		r.Details = make(map[string]string)
	}

	r.Details[key] = value

	return r
}

// GetAnnotation returns the annotation, falling back to the message.
func (r *Result) GetAnnotation() string {
	if r.Annotation != "" {
		return r.Annotation
	}

	return r.Message
}

func (r *Result) String() string {
	if !r.Triggered {
		return "PASS"
	}

	return "TRIGGERED(" + r.ReasonCode + ")"
}

// BaseEvaluator provides common evaluator functionality.
type BaseEvaluator struct {
	name   string
	logger logger.Logger
}

// NewBaseEvaluator creates a new BaseEvaluator.
func NewBaseEvaluator(name string, log logger.Logger) *BaseEvaluator {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &BaseEvaluator{
		name:   name,
		logger: log,
	}
}

// Name returns the evaluator name.
func (e *BaseEvaluator) Name() string {
	return e.name
}

// Logger returns the logger.
//
//nolint:ireturn // interface for polymorphism
func (e *BaseEvaluator) Logger() logger.Logger {
	return e.logger
}

// LogResult logs the evaluation result.
func (e *BaseEvaluator) LogResult(ev *hook.Event, result *Result) {
	if !result.Triggered {
		e.logger.Debug("policy passed",
			"evaluator", e.name,
			"kind", ev.Kind.String(),
			"tool", ev.ToolName(),
		)

		return
	}

	kvs := []any{
		"evaluator", e.name,
		"kind", ev.Kind.String(),
		"tool", ev.ToolName(),
		"reason", result.ReasonCode,
	}

	for k, v := range result.Details {
		kvs = append(kvs, k, v)
	}

	e.logger.Info("policy triggered", kvs...)
}
