// Package bypass detects code writes that were not preceded by research.
package bypass

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/smykla-skalski/enforcer/internal/evaluator"
	"github.com/smykla-skalski/enforcer/internal/vocabulary"
	"github.com/smykla-skalski/enforcer/pkg/config"
	"github.com/smykla-skalski/enforcer/pkg/hook"
	"github.com/smykla-skalski/enforcer/pkg/logger"
	"github.com/smykla-skalski/enforcer/pkg/parser"
)

const (
	// Name is the policy name.
	Name = "bypass"

	// DefaultMessage explains a blocked write.
	DefaultMessage = "Research required before writing code: no evidence of prior research " +
		"(for example a Context7 documentation lookup) was found in the conversation context. " +
		"Research the relevant framework first or provide research_evidence."
)

// Evaluator is the research-bypass detector.
type Evaluator struct {
	*evaluator.BaseEvaluator

	markers    []string
	fields     []string
	exempt     []string
	checkBash  bool
	reason     string
	message    string
	bashParser *parser.BashParser
}

// New creates the detector from the vocabulary table and policy config.
func New(table *vocabulary.Table, cfg *config.BypassPolicyConfig, log logger.Logger) *Evaluator {
	var (
		policy *config.PolicyConfig
		exempt []string
	)

	if cfg != nil {
		policy = &cfg.PolicyConfig
		exempt = cfg.ExemptPaths
	}

	return &Evaluator{
		BaseEvaluator: evaluator.NewBaseEvaluator(Name, log),
		markers:       table.Bypass.EvidenceMarkers,
		fields:        table.Bypass.EvidenceFields,
		exempt:        exempt,
		checkBash:     cfg.IsCheckBashWrites(),
		reason:        table.Bypass.Reason,
		message:       policy.GetMessage(DefaultMessage),
		bashParser:    parser.NewBashParser(),
	}
}

// Evaluate triggers when a write happens without research evidence in the
// conversation context or an evidence field.
func (e *Evaluator) Evaluate(_ context.Context, ev *hook.Event) (*evaluator.Result, error) {
	paths := e.targets(ev)
	if len(paths) == 0 {
		return evaluator.Pass(), nil
	}

	if e.allExempt(paths) {
		e.Logger().Debug("all written paths are exempt", "paths", strings.Join(paths, ","))

		return evaluator.Pass(), nil
	}

	if marker, ok := vocabulary.ContainsPhrase(ev.ConversationContext, e.markers); ok {
		e.Logger().Debug("research evidence in context", "marker", marker)

		return evaluator.Pass(), nil
	}

	if field, ok := e.evidenceField(ev); ok {
		e.Logger().Debug("research evidence field present", "field", field)

		return evaluator.Pass(), nil
	}

	result := evaluator.Trigger(e.reason, e.message).
		AddDetail("paths", strings.Join(paths, ","))

	e.LogResult(ev, result)

	return result, nil
}

// targets returns the paths written by the event.
func (e *Evaluator) targets(ev *hook.Event) []string {
	switch {
	case ev.IsFileTool():
		if path := ev.GetFilePath(); path != "" {
			return []string{path}
		}

		// A write without a path is still a write.
		return []string{""}

	case ev.ToolType() == hook.ToolTypeBash && e.checkBash:
		result, err := e.bashParser.Parse(ev.GetCommand())
		if err != nil {
			e.Logger().Debug("bash command not parsed", "error", err)

			return nil
		}

		for i := range result.FileWrites {
			e.Logger().Debug("bash file write", "write", result.FileWrites[i].Describe())
		}

		return result.WrittenPaths()

	default:
		return nil
	}
}

func (e *Evaluator) allExempt(paths []string) bool {
	if len(e.exempt) == 0 {
		return false
	}

	for _, path := range paths {
		if !e.isExempt(path) {
			return false
		}
	}

	return true
}

func (e *Evaluator) isExempt(path string) bool {
	if path == "" {
		return false
	}

	path = filepath.ToSlash(filepath.Clean(path))
	candidates := []string{path, strings.TrimPrefix(path, "/")}

	for _, pattern := range e.exempt {
		for _, candidate := range candidates {
			if ok, err := doublestar.Match(pattern, candidate); err == nil && ok {
				return true
			}
		}
	}

	return false
}

// evidenceField returns the first configured evidence field holding a
// non-empty value.
func (e *Evaluator) evidenceField(ev *hook.Event) (string, bool) {
	for _, name := range e.fields {
		raw, ok := ev.Field(name)
		if !ok {
			continue
		}

		if hasValue(raw) {
			return name, true
		}
	}

	return "", false
}

func hasValue(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}

	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	case bool:
		return val
	default:
		return true
	}
}
