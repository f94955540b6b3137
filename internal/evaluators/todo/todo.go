// Package todo detects complex edits made without task tracking.
package todo

import (
	"context"
	"strconv"
	"strings"

	"github.com/smykla-skalski/enforcer/internal/evaluator"
	"github.com/smykla-skalski/enforcer/internal/vocabulary"
	"github.com/smykla-skalski/enforcer/pkg/config"
	"github.com/smykla-skalski/enforcer/pkg/hook"
	"github.com/smykla-skalski/enforcer/pkg/logger"
)

const (
	// Name is the policy name.
	Name = "todo_tracking"

	// FlagTodoTracking is the metadata flag raised when the policy triggers.
	FlagTodoTracking = "todo_tracking_required"

	// DefaultMessage is the annotation added for complex untracked edits.
	DefaultMessage = "This change spans several components. Track the work with " +
		"TodoWrite before continuing so each step stays visible."
)

// Evaluator is the task-tracking detector.
type Evaluator struct {
	*evaluator.BaseEvaluator

	heuristic ComplexityHeuristic
	markers   []string
	reason    string
	message   string
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithHeuristic replaces the default complexity heuristic.
func WithHeuristic(h ComplexityHeuristic) Option {
	return func(e *Evaluator) {
		e.heuristic = h
	}
}

// New creates the detector from the vocabulary table and policy config.
func New(
	table *vocabulary.Table,
	cfg *config.TodoTrackingPolicyConfig,
	log logger.Logger,
	opts ...Option,
) *Evaluator {
	var policy *config.PolicyConfig
	if cfg != nil {
		policy = &cfg.PolicyConfig
	}

	e := &Evaluator{
		BaseEvaluator: evaluator.NewBaseEvaluator(Name, log),
		heuristic: NewCapabilityHeuristic(
			table.TodoTracking.CapabilityNouns,
			cfg.GetMinEditUnits(),
			cfg.GetMinCapabilities(),
		),
		markers: table.TodoTracking.TrackingMarkers,
		reason:  table.TodoTracking.Reason,
		message: policy.GetMessage(DefaultMessage),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Evaluate triggers when the operation is complex and the conversation
// context does not mention task tracking.
func (e *Evaluator) Evaluate(_ context.Context, ev *hook.Event) (*evaluator.Result, error) {
	if !ev.IsFileTool() {
		return evaluator.Pass(), nil
	}

	if marker, ok := vocabulary.ContainsPhrase(ev.ConversationContext, e.markers); ok {
		e.Logger().Debug("task tracking already referenced", "marker", marker)

		return evaluator.Pass(), nil
	}

	complexity := e.heuristic.Classify(ev)
	if !complexity.Complex {
		return evaluator.Pass(), nil
	}

	result := evaluator.Trigger(e.reason, "complex operation without task tracking").
		WithAnnotation(e.message).
		WithFlag(FlagTodoTracking).
		AddDetail("edit_units", strconv.Itoa(complexity.EditUnits))

	if len(complexity.Capabilities) > 0 {
		result.AddDetail("capabilities", strings.Join(complexity.Capabilities, ","))
	}

	e.LogResult(ev, result)

	return result, nil
}
