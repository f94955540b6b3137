// Package hookresponse encodes verdicts as hook output.
package hookresponse

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/enforcer/internal/decision"
	"github.com/smykla-skalski/enforcer/pkg/hook"
)

const (
	// MetadataKey is the top-level field carrying enforcement metadata.
	MetadataKey = "metadata"

	// FlagAgentEnforcement is surfaced as a dedicated metadata field.
	FlagAgentEnforcement = "agent_enforcement_applied"

	// annotationSeparator separates the prompt from appended annotations.
	annotationSeparator = "\n\n"
)

// Metadata is attached to every allowed payload. Fields are declared in key
// order.
type Metadata struct {
	AgentEnforcementApplied bool     `json:"agent_enforcement_applied"`
	Annotations             []string `json:"annotations,omitempty"`
	Flags                   []string `json:"flags,omitempty"`
	HookVersion             string   `json:"hook_version"`
	OriginalPrompt          *string  `json:"original_prompt,omitempty"`
}

// BlockResponse is written when the event is blocked.
type BlockResponse struct {
	Errors []string `json:"errors"`
}

// Build encodes the verdict for the event. Allowed events are echoed with all
// original fields and a metadata object. Keys are sorted so the output is
// canonical.
func Build(ev *hook.Event, v *decision.Verdict, version string) ([]byte, error) {
	if v.IsBlocked() {
		return encode(BlockResponse{Errors: v.BlockReasons})
	}

	fields := make(map[string]json.RawMessage, len(ev.Fields)+1)
	for k, raw := range ev.Fields {
		fields[k] = raw
	}

	meta := Metadata{
		AgentEnforcementApplied: v.HasFlag(FlagAgentEnforcement),
		HookVersion:             version,
	}

	for _, f := range v.Flags {
		if f != FlagAgentEnforcement {
			meta.Flags = append(meta.Flags, f)
		}
	}

	if ev.Kind == hook.EventKindPromptSubmit {
		prompt := ev.Prompt
		meta.OriginalPrompt = &prompt
	}

	if v.Action == decision.ActionAllowAnnotated {
		if ev.Kind == hook.EventKindPromptSubmit {
			annotated, err := encode(AnnotatePrompt(ev.Prompt, v.Annotations))
			if err != nil {
				return nil, err
			}

			fields["prompt"] = bytes.TrimSpace(annotated)
		} else {
			meta.Annotations = v.Annotations
		}
	}

	rawMeta, err := encode(meta)
	if err != nil {
		return nil, err
	}

	fields[MetadataKey] = bytes.TrimSpace(rawMeta)

	return encode(fields)
}

// AnnotatePrompt appends annotations to the prompt, each separated by a blank line.
func AnnotatePrompt(prompt string, annotations []string) string {
	if len(annotations) == 0 {
		return prompt
	}

	return prompt + annotationSeparator + strings.Join(annotations, annotationSeparator)
}

// encode marshals v without HTML escaping, followed by a newline.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "failed to encode response")
	}

	return buf.Bytes(), nil
}
