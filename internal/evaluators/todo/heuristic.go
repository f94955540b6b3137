package todo

import (
	"strings"

	"github.com/smykla-skalski/enforcer/internal/vocabulary"
	"github.com/smykla-skalski/enforcer/pkg/hook"
)

// Complexity is a heuristic's classification of one operation.
type Complexity struct {
	Complex      bool
	EditUnits    int
	Capabilities []string
}

// ComplexityHeuristic decides whether an operation is complex enough to
// require task tracking.
type ComplexityHeuristic interface {
	Classify(ev *hook.Event) Complexity
}

// CapabilityHeuristic classifies an operation as complex when it performs at
// least MinEditUnits edits, or when the conversation context and the written
// text together mention at least MinCapabilities distinct capability nouns.
type CapabilityHeuristic struct {
	nouns           *vocabulary.WordMatcher
	MinEditUnits    int
	MinCapabilities int
}

// NewCapabilityHeuristic creates a CapabilityHeuristic.
func NewCapabilityHeuristic(nouns []string, minEditUnits, minCapabilities int) *CapabilityHeuristic {
	return &CapabilityHeuristic{
		nouns:           vocabulary.NewWordMatcher(nouns),
		MinEditUnits:    minEditUnits,
		MinCapabilities: minCapabilities,
	}
}

// Classify implements ComplexityHeuristic.
func (h *CapabilityHeuristic) Classify(ev *hook.Event) Complexity {
	text := strings.Join([]string{ev.ConversationContext, ev.WrittenText()}, "\n")

	c := Complexity{
		EditUnits:    ev.EditUnits(),
		Capabilities: h.nouns.Distinct(text),
	}

	c.Complex = (h.MinEditUnits > 0 && c.EditUnits >= h.MinEditUnits) ||
		(h.MinCapabilities > 0 && len(c.Capabilities) >= h.MinCapabilities)

	return c
}
