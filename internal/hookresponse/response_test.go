package hookresponse_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/enforcer/internal/decision"
	"github.com/smykla-skalski/enforcer/internal/hookresponse"
	"github.com/smykla-skalski/enforcer/internal/parser"
	"github.com/smykla-skalski/enforcer/pkg/hook"
)

const version = "1.2.3"

func mustParse(input string) *hook.Event {
	ev, err := parser.Parse([]byte(input), hook.EventKindUnknown)
	Expect(err).NotTo(HaveOccurred())

	return ev
}

func build(ev *hook.Event, v *decision.Verdict) map[string]any {
	out, err := hookresponse.Build(ev, v, version)
	Expect(err).NotTo(HaveOccurred())

	var decoded map[string]any
	Expect(json.Unmarshal(out, &decoded)).To(Succeed())

	return decoded
}

var _ = Describe("Build", func() {
	allow := &decision.Verdict{Action: decision.ActionAllow}

	It("echoes the original fields with metadata on allow", func() {
		ev := mustParse(`{"prompt":"What is the difference between lists and tuples?","session_id":"s1","extra":{"b":1,"a":[true]}}`)

		out := build(ev, allow)

		Expect(out).To(HaveKeyWithValue("prompt", "What is the difference between lists and tuples?"))
		Expect(out).To(HaveKeyWithValue("session_id", "s1"))
		Expect(out).To(HaveKey("extra"))
		Expect(out["metadata"]).To(Equal(map[string]any{
			"agent_enforcement_applied": false,
			"original_prompt":           "What is the difference between lists and tuples?",
			"hook_version":              version,
		}))
	})

	It("is idempotent for allowed events", func() {
		input := `{ "tool": {"name": "Read", "parameters": {"file_path": "<a&b>.txt"}}, "z": 1, "a": null }`

		first, err := hookresponse.Build(mustParse(input), allow, version)
		Expect(err).NotTo(HaveOccurred())

		second, err := hookresponse.Build(mustParse(string(first)), allow, version)
		Expect(err).NotTo(HaveOccurred())

		Expect(second).To(Equal(first))
		Expect(string(first)).To(ContainSubstring("<a&b>.txt"))
	})

	It("appends annotations to the prompt", func() {
		ev := mustParse(`{"prompt":"Create a Python script that processes CSV files"}`)
		v := &decision.Verdict{
			Action:      decision.ActionAllowAnnotated,
			Annotations: []string{"MANDATORY: use agents.", "Second."},
			Flags:       []string{hookresponse.FlagAgentEnforcement},
		}

		out := build(ev, v)

		Expect(out["prompt"]).To(Equal("Create a Python script that processes CSV files\n\nMANDATORY: use agents.\n\nSecond."))

		meta := out["metadata"].(map[string]any)
		Expect(meta).To(HaveKeyWithValue("agent_enforcement_applied", true))
		Expect(meta).To(HaveKeyWithValue("original_prompt", "Create a Python script that processes CSV files"))
		Expect(meta).NotTo(HaveKey("annotations"))
		Expect(meta).NotTo(HaveKey("flags"))
	})

	It("keeps markup in an annotated prompt unescaped", func() {
		ev := mustParse(`{"prompt":"Build a <div> layout & wire it"}`)
		v := &decision.Verdict{
			Action:      decision.ActionAllowAnnotated,
			Annotations: []string{"Use the <ui-agent>."},
		}

		out, err := hookresponse.Build(ev, v, version)
		Expect(err).NotTo(HaveOccurred())

		Expect(string(out)).To(ContainSubstring(`"prompt":"Build a <div> layout & wire it\n\nUse the <ui-agent>."`))
		Expect(string(out)).NotTo(ContainSubstring(`\u003c`))
		Expect(string(out)).NotTo(ContainSubstring(`\u0026`))
	})

	It("lists annotations in metadata for tool events", func() {
		ev := mustParse(`{"tool":{"name":"MultiEdit","parameters":{"file_path":"a.py"}}}`)
		v := &decision.Verdict{
			Action:      decision.ActionAllowAnnotated,
			Annotations: []string{"Track this with TodoWrite."},
			Flags:       []string{"todo_tracking_required"},
		}

		out := build(ev, v)
		meta := out["metadata"].(map[string]any)

		Expect(meta).To(HaveKeyWithValue("agent_enforcement_applied", false))
		Expect(meta).To(HaveKeyWithValue("annotations", []any{"Track this with TodoWrite."}))
		Expect(meta).To(HaveKeyWithValue("flags", []any{"todo_tracking_required"}))
		Expect(meta).NotTo(HaveKey("original_prompt"))
		Expect(out).To(HaveKey("tool"))
	})

	It("replaces incoming metadata", func() {
		ev := mustParse(`{"prompt":"hi","metadata":{"stale":true}}`)

		meta := build(ev, allow)["metadata"].(map[string]any)
		Expect(meta).NotTo(HaveKey("stale"))
	})

	It("encodes blocks as an errors list only", func() {
		ev := mustParse(`{"tool":{"name":"Write","parameters":{"file_path":"main.py"}}}`)
		v := &decision.Verdict{Action: decision.ActionBlock, BlockReasons: []string{"research first"}}

		out, err := hookresponse.Build(ev, v, version)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(MatchJSON(`{"errors":["research first"]}`))
	})
})

var _ = Describe("AnnotatePrompt", func() {
	It("leaves the prompt alone without annotations", func() {
		Expect(hookresponse.AnnotatePrompt("x", nil)).To(Equal("x"))
	})
})
