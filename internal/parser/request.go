// Package parser decodes raw hook input into a hook.Event.
package parser

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/enforcer/pkg/hook"
)

var (
	// ErrDecode is returned when the input is not a well-formed JSON object.
	ErrDecode = errors.New("failed to decode event")

	// ErrUnknownKind is returned for an unrecognized event kind name.
	ErrUnknownKind = errors.New("unknown event kind")
)

// eventNames maps hook_event_name values to event kinds.
var eventNames = map[string]hook.EventKind{
	"UserPromptSubmit": hook.EventKindPromptSubmit,
	"PromptSubmit":     hook.EventKindPromptSubmit,
	"PreToolUse":       hook.EventKindPreToolUse,
	"PostToolUse":      hook.EventKindPostToolUse,
	"SessionStart":     hook.EventKindSessionStart,
}

// ParseKind maps an event kind name, as accepted in hook_event_name, to its
// kind. An empty name yields EventKindUnknown, which leaves classification to
// the payload.
func ParseKind(name string) (hook.EventKind, error) {
	if name == "" {
		return hook.EventKindUnknown, nil
	}

	if kind, ok := eventNames[name]; ok {
		return kind, nil
	}

	return hook.EventKindUnknown, errors.Wrapf(ErrUnknownKind, "%q", name)
}

// nestedTool is the {"tool":{"name","parameters"}} shape.
type nestedTool struct {
	Name       json.RawMessage `json:"name"`
	Parameters json.RawMessage `json:"parameters"`
}

// JSONParser parses hook input from a reader.
type JSONParser struct {
	reader io.Reader
}

// NewJSONParser creates a new JSONParser that reads from the given reader.
func NewJSONParser(reader io.Reader) *JSONParser {
	return &JSONParser{reader: reader}
}

// Parse reads all input and decodes it. See Parse.
func (p *JSONParser) Parse(kindHint hook.EventKind) (*hook.Event, error) {
	data, err := io.ReadAll(p.reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read input")
	}

	return Parse(data, kindHint)
}

// Parse decodes raw input into an Event. Empty input decodes to an empty
// object. A kindHint other than EventKindUnknown takes precedence over the
// hook_event_name field and the payload shape.
func Parse(raw []byte, kindHint hook.EventKind) (*hook.Event, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		trimmed = []byte("{}")
	}

	if trimmed[0] != '{' {
		return nil, errors.Wrap(ErrDecode, "top-level value is not an object")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, errors.CombineErrors(ErrDecode, err)
	}

	if fields == nil {
		fields = map[string]json.RawMessage{}
	}

	tool, err := decodeTool(fields)
	if err != nil {
		return nil, err
	}

	ev := &hook.Event{Fields: fields, Tool: tool}
	ev.Prompt = ev.StringField("prompt")
	ev.ConversationContext = decodeContext(fields["conversation_context"])
	ev.SessionID = ev.StringField("session_id")
	ev.Result = firstPresent(fields, "result", "tool_response")
	ev.Kind = classify(ev, kindHint)

	if !ev.Kind.IsToolEvent() {
		ev.Tool = nil
		ev.Result = nil
	}

	return ev, nil
}

func classify(ev *hook.Event, kindHint hook.EventKind) hook.EventKind {
	if kindHint != hook.EventKindUnknown {
		return kindHint
	}

	if kind, ok := eventNames[ev.StringField("hook_event_name")]; ok {
		return kind
	}

	_, hasPrompt := ev.Fields["prompt"]

	switch {
	case hasPrompt:
		return hook.EventKindPromptSubmit
	case ev.Tool != nil && ev.Result != nil:
		return hook.EventKindPostToolUse
	case ev.Tool != nil:
		return hook.EventKindPreToolUse
	default:
		return hook.EventKindSessionStart
	}
}

// decodeTool accepts {"tool":{"name","parameters"}}, {"tool":"Name"} and the
// tool_name/tool_input aliases. A tool field of the wrong shape is an
// ErrDecode, not an absent tool.
func decodeTool(fields map[string]json.RawMessage) (*hook.ToolCall, error) {
	var (
		name   string
		params map[string]json.RawMessage
	)

	if raw, ok := fields["tool"]; ok && !isNull(raw) {
		var err error

		name, params, err = decodeToolField(raw)
		if err != nil {
			return nil, err
		}
	}

	if raw, ok := fields["tool_name"]; ok && name == "" && !isNull(raw) {
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, errors.Wrap(ErrDecode, "tool_name must be a string")
		}
	}

	if raw, ok := fields["tool_input"]; ok && params == nil && !isNull(raw) {
		var err error

		params, err = decodeParameters(raw, "tool_input")
		if err != nil {
			return nil, err
		}
	}

	if name == "" && params == nil {
		return nil, nil //nolint:nilnil // no tool is valid
	}

	if params == nil {
		params = map[string]json.RawMessage{}
	}

	return &hook.ToolCall{
		Name:       name,
		Type:       hook.ParseToolType(name),
		Parameters: params,
	}, nil
}

func decodeToolField(raw json.RawMessage) (string, map[string]json.RawMessage, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name, nil, nil
	}

	var nested nestedTool
	if err := json.Unmarshal(raw, &nested); err != nil {
		return "", nil, errors.Wrap(ErrDecode, "tool must be a string or an object")
	}

	if len(nested.Name) > 0 && !isNull(nested.Name) {
		if err := json.Unmarshal(nested.Name, &name); err != nil {
			return "", nil, errors.Wrap(ErrDecode, "tool.name must be a string")
		}
	}

	if len(nested.Parameters) == 0 || isNull(nested.Parameters) {
		return name, nil, nil
	}

	params, err := decodeParameters(nested.Parameters, "tool.parameters")
	if err != nil {
		return "", nil, err
	}

	return name, params, nil
}

func decodeParameters(raw json.RawMessage, field string) (map[string]json.RawMessage, error) {
	var params map[string]json.RawMessage
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, errors.Wrapf(ErrDecode, "%s must be an object", field)
	}

	return params, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeContext accepts a string or a list of strings.
func decodeContext(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var parts []string
	if err := json.Unmarshal(raw, &parts); err == nil {
		return strings.Join(parts, "\n")
	}

	return ""
}

func firstPresent(fields map[string]json.RawMessage, names ...string) json.RawMessage {
	for _, name := range names {
		raw, ok := fields[name]
		if ok && !isNull(raw) {
			return raw
		}
	}

	return nil
}
