package hook_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/enforcer/pkg/hook"
)

func toolEvent(tool hook.ToolType, params string) *hook.Event {
	var p map[string]json.RawMessage

	Expect(json.Unmarshal([]byte(params), &p)).To(Succeed())

	return &hook.Event{
		Kind: hook.EventKindPreToolUse,
		Tool: &hook.ToolCall{Name: tool.String(), Type: tool, Parameters: p},
	}
}

var _ = Describe("Event", func() {
	Describe("EventKind", func() {
		It("parses names case-insensitively", func() {
			kind, err := hook.EventKindString("pretooluse")
			Expect(err).NotTo(HaveOccurred())
			Expect(kind).To(Equal(hook.EventKindPreToolUse))
		})

		It("rejects unknown names", func() {
			_, err := hook.EventKindString("Notification")
			Expect(err).To(HaveOccurred())
		})

		It("reports tool events", func() {
			Expect(hook.EventKindPreToolUse.IsToolEvent()).To(BeTrue())
			Expect(hook.EventKindPostToolUse.IsToolEvent()).To(BeTrue())
			Expect(hook.EventKindPromptSubmit.IsToolEvent()).To(BeFalse())
			Expect(hook.EventKindSessionStart.IsToolEvent()).To(BeFalse())
		})
	})

	Describe("tool accessors", func() {
		It("returns empty values for events without a tool", func() {
			ev := &hook.Event{Kind: hook.EventKindPromptSubmit, Prompt: "hi"}

			Expect(ev.ToolType()).To(Equal(hook.ToolTypeUnknown))
			Expect(ev.ToolName()).To(BeEmpty())
			Expect(ev.GetFilePath()).To(BeEmpty())
			Expect(ev.EditUnits()).To(BeZero())
			Expect(ev.WrittenText()).To(BeEmpty())
			Expect(ev.IsFileTool()).To(BeFalse())
		})

		It("reads Write parameters", func() {
			ev := toolEvent(hook.ToolTypeWrite, `{"file_path":"/tmp/a.py","content":"print(1)"}`)

			Expect(ev.GetFilePath()).To(Equal("/tmp/a.py"))
			Expect(ev.GetContent()).To(Equal("print(1)"))
			Expect(ev.WrittenText()).To(Equal("print(1)"))
			Expect(ev.EditUnits()).To(Equal(1))
			Expect(ev.IsFileTool()).To(BeTrue())
		})

		It("falls back to path when file_path is missing", func() {
			ev := toolEvent(hook.ToolTypeWrite, `{"path":"docs/x.md"}`)
			Expect(ev.GetFilePath()).To(Equal("docs/x.md"))
		})

		It("reads Edit new_string as written text", func() {
			ev := toolEvent(hook.ToolTypeEdit, `{"file_path":"a.go","old_string":"a","new_string":"b"}`)
			Expect(ev.WrittenText()).To(Equal("b"))
			Expect(ev.EditUnits()).To(Equal(1))
		})

		It("counts MultiEdit edits", func() {
			ev := toolEvent(hook.ToolTypeMultiEdit, `{
				"file_path": "a.go",
				"edits": [
					{"old_string": "a", "new_string": "b"},
					{"old_string": "c", "new_string": "d"},
					{"old_string": "e", "new_string": "f"}
				]
			}`)

			Expect(ev.EditUnits()).To(Equal(3))
			Expect(ev.WrittenText()).To(Equal("b\nd\nf"))
		})

		It("treats malformed MultiEdit edits as empty", func() {
			ev := toolEvent(hook.ToolTypeMultiEdit, `{"edits":"nope"}`)
			Expect(ev.EditUnits()).To(BeZero())
		})

		It("ignores non-string parameters", func() {
			ev := toolEvent(hook.ToolTypeBash, `{"command":42}`)
			Expect(ev.GetCommand()).To(BeEmpty())
		})
	})

	Describe("fields", func() {
		It("returns raw and string fields", func() {
			ev := &hook.Event{Fields: map[string]json.RawMessage{
				"research_evidence": json.RawMessage(`"docs read"`),
				"count":             json.RawMessage(`3`),
			}}

			raw, ok := ev.Field("count")
			Expect(ok).To(BeTrue())
			Expect(string(raw)).To(Equal("3"))
			Expect(ev.StringField("research_evidence")).To(Equal("docs read"))
			Expect(ev.StringField("count")).To(BeEmpty())
			Expect(ev.StringField("missing")).To(BeEmpty())
		})

		It("detects blank conversation context", func() {
			Expect((&hook.Event{ConversationContext: "  \n"}).HasConversationContext()).To(BeFalse())
			Expect((&hook.Event{ConversationContext: "used Context7"}).HasConversationContext()).To(BeTrue())
		})
	})
})

var _ = Describe("NewToolCall", func() {
	It("encodes parameters and resolves the tool type", func() {
		call := hook.NewToolCall("MultiEdit", map[string]any{
			"file_path": "a.go",
			"edits":     []map[string]string{{"old_string": "a", "new_string": "b"}},
			"bad":       func() {},
		})

		Expect(call.Type).To(Equal(hook.ToolTypeMultiEdit))
		Expect(call.Parameters).To(HaveKey("file_path"))
		Expect(call.Parameters).NotTo(HaveKey("bad"))

		ev := &hook.Event{Kind: hook.EventKindPreToolUse, Tool: call}
		Expect(ev.EditUnits()).To(Equal(1))
	})

	It("maps unknown tools to ToolTypeUnknown", func() {
		Expect(hook.ParseToolType("mcp__context7__get-docs")).To(Equal(hook.ToolTypeUnknown))
		Expect(hook.ParseToolType("write")).To(Equal(hook.ToolTypeWrite))
	})
})
