package evaluator

import (
	"slices"

	"github.com/smykla-skalski/enforcer/pkg/config"
	"github.com/smykla-skalski/enforcer/pkg/hook"
	"github.com/smykla-skalski/enforcer/pkg/parser"
)

// Predicate determines if an evaluator applies to an event.
type Predicate func(*hook.Event) bool

// Registration is an evaluator with its selection predicate and severity.
type Registration struct {
	Evaluator Evaluator
	Predicate Predicate

	// Severity classifies a triggered result as hard (error) or soft (warning).
	Severity config.Severity

	// Scope is a human-readable description of the events the predicate selects.
	Scope string
}

// IsHard reports whether a triggered result of this registration blocks.
func (r Registration) IsHard() bool {
	return r.Severity.ShouldBlock()
}

// Registry manages evaluator registrations and selection. Registration order
// is evaluation order.
type Registry struct {
	registrations []Registration
}

// NewRegistry creates a new empty evaluator registry.
func NewRegistry() *Registry {
	return &Registry{
		registrations: make([]Registration, 0),
	}
}

// Register adds an evaluator to the registry.
func (r *Registry) Register(reg Registration) {
	if reg.Predicate == nil {
		reg.Predicate = Always()
	}

	r.registrations = append(r.registrations, reg)
}

// Find returns the registrations whose predicates match the event, in
// registration order.
func (r *Registry) Find(ev *hook.Event) []Registration {
	matched := make([]Registration, 0, len(r.registrations))

	for _, reg := range r.registrations {
		if reg.Predicate(ev) {
			matched = append(matched, reg)
		}
	}

	return matched
}

// All returns every registration in registration order.
func (r *Registry) All() []Registration {
	return slices.Clone(r.registrations)
}

// Count returns the number of registered evaluators.
func (r *Registry) Count() int {
	return len(r.registrations)
}

// Common Predicates

// EventKindIs returns a predicate that matches the given event kind.
func EventKindIs(kind hook.EventKind) Predicate {
	return func(ev *hook.Event) bool {
		return ev.Kind == kind
	}
}

// ToolTypeIn returns a predicate that matches any of the given tool types.
func ToolTypeIn(toolTypes ...hook.ToolType) Predicate {
	return func(ev *hook.Event) bool {
		return slices.Contains(toolTypes, ev.ToolType())
	}
}

// BashWritesFile returns a predicate that matches Bash commands writing at
// least one file.
func BashWritesFile() Predicate {
	return func(ev *hook.Event) bool {
		if ev.ToolType() != hook.ToolTypeBash {
			return false
		}

		return len(parser.FileWrites(ev.GetCommand())) > 0
	}
}

// Predicate Combinators

// And returns a predicate that matches if all predicates match.
func And(predicates ...Predicate) Predicate {
	return func(ev *hook.Event) bool {
		for _, p := range predicates {
			if !p(ev) {
				return false
			}
		}

		return true
	}
}

// Or returns a predicate that matches if any predicate matches.
func Or(predicates ...Predicate) Predicate {
	return func(ev *hook.Event) bool {
		for _, p := range predicates {
			if p(ev) {
				return true
			}
		}

		return false
	}
}

// Not returns a predicate that inverts the given predicate.
func Not(predicate Predicate) Predicate {
	return func(ev *hook.Event) bool {
		return !predicate(ev)
	}
}

// Always returns a predicate that always matches.
func Always() Predicate {
	return func(*hook.Event) bool {
		return true
	}
}

// Never returns a predicate that never matches.
func Never() Predicate {
	return func(*hook.Event) bool {
		return false
	}
}
