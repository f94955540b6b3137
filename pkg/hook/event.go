// Package hook provides the core types describing one intercepted agent event.
package hook

import (
	"encoding/json"
	"strings"
)

//go:generate enumer -type=EventKind -trimprefix=EventKind -json -text -yaml
//go:generate go run github.com/smykla-skalski/enforcer/tools/enumerfix eventkind_enumer.go
//go:generate enumer -type=ToolType -trimprefix=ToolType -json -text -yaml
//go:generate go run github.com/smykla-skalski/enforcer/tools/enumerfix tooltype_enumer.go

// EventKind represents the kind of intercepted event.
type EventKind int

const (
	// EventKindUnknown represents an unclassified event.
	EventKindUnknown EventKind = iota

	// EventKindPromptSubmit is triggered when the user submits a prompt.
	EventKindPromptSubmit

	// EventKindPreToolUse is triggered before a tool is executed.
	EventKindPreToolUse

	// EventKindPostToolUse is triggered after a tool is executed.
	EventKindPostToolUse

	// EventKindSessionStart is triggered when a session starts.
	EventKindSessionStart
)

// IsToolEvent returns true for PreToolUse and PostToolUse.
func (k EventKind) IsToolEvent() bool {
	return k == EventKindPreToolUse || k == EventKindPostToolUse
}

// ToolType represents the type of tool being used.
type ToolType int

const (
	// ToolTypeUnknown represents a tool this module has no special handling for.
	ToolTypeUnknown ToolType = iota

	// ToolTypeBash represents the Bash tool for executing shell commands.
	ToolTypeBash

	// ToolTypeWrite represents the Write tool for creating files.
	ToolTypeWrite

	// ToolTypeEdit represents the Edit tool for modifying files.
	ToolTypeEdit

	// ToolTypeMultiEdit represents the MultiEdit tool for several edits in one file.
	ToolTypeMultiEdit

	// ToolTypeRead represents the Read tool.
	ToolTypeRead

	// ToolTypeGrep represents the Grep tool.
	ToolTypeGrep

	// ToolTypeGlob represents the Glob tool.
	ToolTypeGlob

	// ToolTypeTask represents the Task tool used to delegate to specialized agents.
	ToolTypeTask

	// ToolTypeTodoWrite represents the TodoWrite task-tracking tool.
	ToolTypeTodoWrite
)

// ToolCall is the tool invocation carried by PreToolUse and PostToolUse events.
type ToolCall struct {
	// Name is the tool name exactly as received.
	Name string

	// Type is the parsed tool type. ToolTypeUnknown for tools without special handling.
	Type ToolType

	// Parameters holds the raw tool parameters.
	Parameters map[string]json.RawMessage
}

// ParseToolType maps a tool name to its ToolType. Unrecognized names,
// including MCP tools, map to ToolTypeUnknown.
func ParseToolType(name string) ToolType {
	t, err := ToolTypeString(name)
	if err != nil {
		return ToolTypeUnknown
	}

	return t
}

// NewToolCall builds a ToolCall from plain values. Parameters that cannot be
// encoded as JSON are dropped.
func NewToolCall(name string, params map[string]any) *ToolCall {
	raw := make(map[string]json.RawMessage, len(params))

	for k, v := range params {
		data, err := json.Marshal(v)
		if err != nil {
			continue
		}

		raw[k] = data
	}

	return &ToolCall{
		Name:       name,
		Type:       ParseToolType(name),
		Parameters: raw,
	}
}

// Event represents one intercepted occurrence. It is built once per invocation
// by the parser and must not be mutated afterwards.
type Event struct {
	// Kind is the classified event kind.
	Kind EventKind

	// Prompt is the free-text prompt for PromptSubmit events.
	Prompt string

	// Tool is the tool invocation for tool events. Nil for other kinds.
	Tool *ToolCall

	// Result is the raw prior tool result (PostToolUse), if any.
	Result json.RawMessage

	// ConversationContext carries prior-turn evidence. Empty when absent.
	ConversationContext string

	// SessionID is the agent session identifier, if provided.
	SessionID string

	// Fields contains every top-level field of the decoded input, unchanged.
	Fields map[string]json.RawMessage
}

// ToolType returns the tool type or ToolTypeUnknown for events without a tool.
func (e *Event) ToolType() ToolType {
	if e.Tool == nil {
		return ToolTypeUnknown
	}

	return e.Tool.Type
}

// ToolName returns the raw tool name or an empty string.
func (e *Event) ToolName() string {
	if e.Tool == nil {
		return ""
	}

	return e.Tool.Name
}

// HasConversationContext returns true if a non-blank conversation context is present.
func (e *Event) HasConversationContext() bool {
	return strings.TrimSpace(e.ConversationContext) != ""
}

// Field returns the raw value of a top-level field.
func (e *Event) Field(name string) (json.RawMessage, bool) {
	raw, ok := e.Fields[name]

	return raw, ok
}

// StringField returns a top-level string field, or "" if missing or not a string.
func (e *Event) StringField(name string) string {
	raw, ok := e.Fields[name]
	if !ok {
		return ""
	}

	return rawString(raw)
}

// GetCommand returns the Bash command of the tool call.
func (e *Event) GetCommand() string {
	return e.param("command")
}

// GetFilePath returns the file path of the tool call, preferring file_path over path.
func (e *Event) GetFilePath() string {
	if p := e.param("file_path"); p != "" {
		return p
	}

	return e.param("path")
}

// GetContent returns the file content of a Write tool call.
func (e *Event) GetContent() string {
	return e.param("content")
}

// IsFileTool returns true if the tool writes files (Write, Edit, MultiEdit).
func (e *Event) IsFileTool() bool {
	switch e.ToolType() {
	case ToolTypeWrite, ToolTypeEdit, ToolTypeMultiEdit:
		return true
	default:
		return false
	}
}

// multiEdit is a single entry of the MultiEdit edits array.
type multiEdit struct {
	OldString string `json:"old_string"`
	NewString string `json:"new_string"`
}

// EditUnits returns the number of independent edits the tool call performs.
func (e *Event) EditUnits() int {
	switch e.ToolType() {
	case ToolTypeWrite, ToolTypeEdit:
		return 1
	case ToolTypeMultiEdit:
		return len(e.multiEdits())
	default:
		return 0
	}
}

// WrittenText returns the text the tool call puts into a file.
// Write returns the content, Edit the new string and MultiEdit all new strings
// joined by newlines.
func (e *Event) WrittenText() string {
	switch e.ToolType() {
	case ToolTypeWrite:
		return e.GetContent()
	case ToolTypeEdit:
		return e.param("new_string")
	case ToolTypeMultiEdit:
		edits := e.multiEdits()
		parts := make([]string, 0, len(edits))

		for _, edit := range edits {
			parts = append(parts, edit.NewString)
		}

		return strings.Join(parts, "\n")
	default:
		return ""
	}
}

func (e *Event) multiEdits() []multiEdit {
	if e.Tool == nil {
		return nil
	}

	raw, ok := e.Tool.Parameters["edits"]
	if !ok {
		return nil
	}

	var edits []multiEdit
	if err := json.Unmarshal(raw, &edits); err != nil {
		return nil
	}

	return edits
}

func (e *Event) param(name string) string {
	if e.Tool == nil {
		return ""
	}

	return rawString(e.Tool.Parameters[name])
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}

	return s
}
