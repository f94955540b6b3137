// Package factory builds the evaluator registry from configuration.
package factory

import (
	"github.com/smykla-skalski/enforcer/internal/evaluator"
	"github.com/smykla-skalski/enforcer/internal/evaluators/bypass"
	"github.com/smykla-skalski/enforcer/internal/evaluators/implementation"
	"github.com/smykla-skalski/enforcer/internal/evaluators/todo"
	"github.com/smykla-skalski/enforcer/internal/vocabulary"
	"github.com/smykla-skalski/enforcer/pkg/config"
	"github.com/smykla-skalski/enforcer/pkg/hook"
	"github.com/smykla-skalski/enforcer/pkg/logger"
)

// Default severities per policy.
const (
	DefaultImplementationSeverity = config.SeverityWarning
	DefaultTodoTrackingSeverity   = config.SeverityWarning
	DefaultBypassSeverity         = config.SeverityError
)

// PolicyFactory creates evaluator registrations from configuration.
type PolicyFactory struct {
	log logger.Logger
}

// NewPolicyFactory creates a new PolicyFactory.
func NewPolicyFactory(log logger.Logger) *PolicyFactory {
	return &PolicyFactory{log: log}
}

// extension collects configured vocabulary additions.
func extension(cfg *config.PoliciesConfig) vocabulary.Extension {
	impl := cfg.GetImplementation()
	tracking := cfg.GetTodoTracking()
	byp := cfg.GetBypass()

	return vocabulary.Extension{
		ImplementationVerbs: impl.ExtraKeywords,
		OverridePhrases:     impl.OverridePhrases,
		TrackingMarkers:     tracking.TrackingMarkers,
		CapabilityNouns:     tracking.CapabilityNouns,
		EvidenceMarkers:     byp.EvidenceMarkers,
		EvidenceFields:      byp.EvidenceFields,
	}
}

// CreateImplementation creates the implementation-request registration.
func (f *PolicyFactory) CreateImplementation(
	table *vocabulary.Table,
	cfg *config.ImplementationPolicyConfig,
) evaluator.Registration {
	return evaluator.Registration{
		Evaluator: implementation.New(table, cfg, f.log),
		Predicate: evaluator.EventKindIs(hook.EventKindPromptSubmit),
		Severity:  cfg.GetSeverity(DefaultImplementationSeverity),
		Scope:     "PromptSubmit",
	}
}

// CreateTodoTracking creates the task-tracking registration.
func (f *PolicyFactory) CreateTodoTracking(
	table *vocabulary.Table,
	cfg *config.TodoTrackingPolicyConfig,
) evaluator.Registration {
	return evaluator.Registration{
		Evaluator: todo.New(table, cfg, f.log),
		Predicate: evaluator.And(
			evaluator.EventKindIs(hook.EventKindPreToolUse),
			evaluator.ToolTypeIn(hook.ToolTypeWrite, hook.ToolTypeEdit, hook.ToolTypeMultiEdit),
		),
		Severity: cfg.GetSeverity(DefaultTodoTrackingSeverity),
		Scope:    "PreToolUse: Write, Edit, MultiEdit",
	}
}

// CreateBypass creates the research-bypass registration.
func (f *PolicyFactory) CreateBypass(
	table *vocabulary.Table,
	cfg *config.BypassPolicyConfig,
) evaluator.Registration {
	fileTools := evaluator.ToolTypeIn(hook.ToolTypeWrite, hook.ToolTypeEdit, hook.ToolTypeMultiEdit)
	predicate := evaluator.And(evaluator.EventKindIs(hook.EventKindPreToolUse), fileTools)
	scope := "PreToolUse: Write, Edit, MultiEdit"

	if cfg.IsCheckBashWrites() {
		predicate = evaluator.And(
			evaluator.EventKindIs(hook.EventKindPreToolUse),
			evaluator.Or(fileTools, evaluator.BashWritesFile()),
		)
		scope += ", Bash (file writes)"
	}

	return evaluator.Registration{
		Evaluator: bypass.New(table, cfg, f.log),
		Predicate: predicate,
		Severity:  cfg.GetSeverity(DefaultBypassSeverity),
		Scope:     scope,
	}
}
