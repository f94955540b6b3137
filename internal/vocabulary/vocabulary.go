// Package vocabulary provides the keyword tables consulted by the policy evaluators.
//
// The built-in tables are embedded YAML parsed once per process. A Table is
// never mutated after construction; Extend returns a new Table.
package vocabulary

import (
	_ "embed"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var builtin []byte

// Reason codes of the built-in policies.
const (
	ReasonAgentEnforcement    = "agent-enforcement"
	ReasonMissingTodoTracking = "missing-todo-tracking"
	ReasonResearchBypass      = "research-bypass"
)

// ErrInvalidVocabulary is returned when a vocabulary document cannot be used.
var ErrInvalidVocabulary = errors.New("invalid vocabulary")

// Table is the immutable set of keyword lists, grouped by policy.
type Table struct {
	Implementation ImplementationTable `yaml:"implementation"`
	TodoTracking   TodoTrackingTable   `yaml:"todo_tracking"`
	Bypass         BypassTable         `yaml:"bypass"`
}

// ImplementationTable holds the implementation-request vocabulary.
type ImplementationTable struct {
	Reason string `yaml:"reason"`

	// Verbs maps a language code to its implementation-intent verbs.
	Verbs map[string][]string `yaml:"verbs"`

	OverridePhrases []string `yaml:"override_phrases"`
}

// AllVerbs returns the verbs of every language, sorted and deduplicated.
func (t ImplementationTable) AllVerbs() []string {
	var all []string

	for _, verbs := range t.Verbs {
		all = append(all, verbs...)
	}

	return normalize(all)
}

// TodoTrackingTable holds the task-tracking vocabulary.
type TodoTrackingTable struct {
	Reason          string   `yaml:"reason"`
	TrackingMarkers []string `yaml:"tracking_markers"`
	CapabilityNouns []string `yaml:"capability_nouns"`
}

// BypassTable holds the research-evidence vocabulary.
type BypassTable struct {
	Reason          string   `yaml:"reason"`
	EvidenceMarkers []string `yaml:"evidence_markers"`
	EvidenceFields  []string `yaml:"evidence_fields"`
}

// Extension lists user-supplied additions to the built-in table.
type Extension struct {
	ImplementationVerbs []string
	OverridePhrases     []string
	TrackingMarkers     []string
	CapabilityNouns     []string
	EvidenceMarkers     []string
	EvidenceFields      []string
}

var loadBuiltin = sync.OnceValues(func() (*Table, error) {
	return Parse(builtin)
})

// Default returns the built-in table. It is parsed on first use.
func Default() (*Table, error) {
	return loadBuiltin()
}

// Parse decodes a vocabulary YAML document.
func Parse(data []byte) (*Table, error) {
	var t Table

	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(ErrInvalidVocabulary, err.Error())
	}

	if len(t.Implementation.AllVerbs()) == 0 {
		return nil, errors.Wrap(ErrInvalidVocabulary, "implementation verbs are empty")
	}

	if t.Implementation.Reason == "" || t.TodoTracking.Reason == "" || t.Bypass.Reason == "" {
		return nil, errors.Wrap(ErrInvalidVocabulary, "every policy needs a reason code")
	}

	return &t, nil
}

// Extend returns a copy of t with the extension's entries added.
func (t *Table) Extend(ext Extension) *Table {
	out := &Table{
		Implementation: ImplementationTable{
			Reason:          t.Implementation.Reason,
			Verbs:           make(map[string][]string, len(t.Implementation.Verbs)+1),
			OverridePhrases: merge(t.Implementation.OverridePhrases, ext.OverridePhrases),
		},
		TodoTracking: TodoTrackingTable{
			Reason:          t.TodoTracking.Reason,
			TrackingMarkers: merge(t.TodoTracking.TrackingMarkers, ext.TrackingMarkers),
			CapabilityNouns: merge(t.TodoTracking.CapabilityNouns, ext.CapabilityNouns),
		},
		Bypass: BypassTable{
			Reason:          t.Bypass.Reason,
			EvidenceMarkers: merge(t.Bypass.EvidenceMarkers, ext.EvidenceMarkers),
			EvidenceFields:  merge(t.Bypass.EvidenceFields, ext.EvidenceFields),
		},
	}

	for lang, verbs := range t.Implementation.Verbs {
		out.Implementation.Verbs[lang] = slices.Clone(verbs)
	}

	if len(ext.ImplementationVerbs) > 0 {
		out.Implementation.Verbs["custom"] = normalize(ext.ImplementationVerbs)
	}

	return out
}

func merge(base, extra []string) []string {
	return normalize(append(slices.Clone(base), extra...))
}

// normalize trims entries, drops blanks and duplicates (case-insensitively)
// and sorts the result.
func normalize(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))

	for _, w := range words {
		w = strings.TrimSpace(w)
		key := strings.ToLower(w)

		if w == "" || seen[key] {
			continue
		}

		seen[key] = true

		out = append(out, w)
	}

	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})

	return out
}
