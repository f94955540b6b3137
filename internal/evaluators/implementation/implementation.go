// Package implementation detects prompts that ask the agent to implement
// something directly instead of delegating to a specialized agent.
package implementation

import (
	"context"

	"github.com/smykla-skalski/enforcer/internal/evaluator"
	"github.com/smykla-skalski/enforcer/internal/vocabulary"
	"github.com/smykla-skalski/enforcer/pkg/config"
	"github.com/smykla-skalski/enforcer/pkg/hook"
	"github.com/smykla-skalski/enforcer/pkg/logger"
)

const (
	// Name is the policy name.
	Name = "implementation"

	// FlagAgentEnforcement is the metadata flag raised when the prompt is annotated.
	FlagAgentEnforcement = "agent_enforcement_applied"

	// DefaultMessage is the mandatory-usage text appended to the prompt.
	DefaultMessage = "MANDATORY: Use the Task tool to delegate this implementation " +
		"to a specialized agent. Do not implement it directly."
)

// Evaluator is the implementation-request detector.
type Evaluator struct {
	*evaluator.BaseEvaluator

	verbs     *vocabulary.WordMatcher
	overrides []string
	reason    string
	message   string
}

// New creates the detector from the vocabulary table and policy config.
func New(table *vocabulary.Table, cfg *config.ImplementationPolicyConfig, log logger.Logger) *Evaluator {
	var policy *config.PolicyConfig
	if cfg != nil {
		policy = &cfg.PolicyConfig
	}

	return &Evaluator{
		BaseEvaluator: evaluator.NewBaseEvaluator(Name, log),
		verbs:         vocabulary.NewWordMatcher(table.Implementation.AllVerbs()),
		overrides:     table.Implementation.OverridePhrases,
		reason:        table.Implementation.Reason,
		message:       policy.GetMessage(DefaultMessage),
	}
}

// Evaluate checks the prompt for implementation-intent verbs. A prompt that
// already mentions an override phrase never triggers.
func (e *Evaluator) Evaluate(_ context.Context, ev *hook.Event) (*evaluator.Result, error) {
	if ev.Kind != hook.EventKindPromptSubmit {
		return evaluator.Pass(), nil
	}

	if phrase, ok := vocabulary.ContainsPhrase(ev.Prompt, e.overrides); ok {
		e.Logger().Debug("override phrase present", "phrase", phrase)

		return evaluator.Pass(), nil
	}

	verb, ok := e.verbs.First(ev.Prompt)
	if !ok {
		return evaluator.Pass(), nil
	}

	result := evaluator.Trigger(e.reason, "implementation request detected: \""+verb+"\"").
		WithAnnotation(e.message).
		WithFlag(FlagAgentEnforcement).
		AddDetail("keyword", verb)

	e.LogResult(ev, result)

	return result, nil
}
