package adapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/smykla-skalski/enforcer/internal/adapter"
	"github.com/smykla-skalski/enforcer/internal/audit"
	internalconfig "github.com/smykla-skalski/enforcer/internal/config"
	"github.com/smykla-skalski/enforcer/internal/evaluator"
	"github.com/smykla-skalski/enforcer/internal/evaluators/bypass"
	"github.com/smykla-skalski/enforcer/internal/evaluators/implementation"
	"github.com/smykla-skalski/enforcer/internal/parser"
	"github.com/smykla-skalski/enforcer/pkg/config"
	"github.com/smykla-skalski/enforcer/pkg/hook"
)

type runResult struct {
	code   int
	stdout string
	stderr string
}

func (r runResult) payload() map[string]any {
	var out map[string]any
	ExpectWithOffset(1, json.Unmarshal([]byte(r.stdout), &out)).To(Succeed())

	return out
}

func run(a *adapter.Adapter, input string) runResult {
	var stdout, stderr bytes.Buffer

	code := a.Run(context.Background(), strings.NewReader(input), &stdout, &stderr)

	return runResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

var _ = Describe("Adapter", func() {
	var a *adapter.Adapter

	BeforeEach(func() {
		a = adapter.New(adapter.WithVersion("1.0.0"))
	})

	Describe("prompt events", func() {
		It("annotates an implementation request", func() {
			res := run(a, `{"prompt":"Create a Python script that processes CSV files"}`)

			Expect(res.code).To(Equal(adapter.ExitAllow))
			Expect(res.stderr).To(BeEmpty())

			out := res.payload()
			Expect(out["prompt"]).To(HavePrefix("Create a Python script that processes CSV files\n\n"))
			Expect(out["prompt"]).To(ContainSubstring(implementation.DefaultMessage))

			meta := out["metadata"].(map[string]any)
			Expect(meta["agent_enforcement_applied"]).To(BeTrue())
			Expect(meta["original_prompt"]).To(Equal("Create a Python script that processes CSV files"))
			Expect(meta["hook_version"]).To(Equal("1.0.0"))
		})

		It("leaves a question unchanged", func() {
			res := run(a, `{"prompt":"What is the difference between lists and tuples?"}`)

			Expect(res.code).To(Equal(adapter.ExitAllow))

			out := res.payload()
			Expect(out["prompt"]).To(Equal("What is the difference between lists and tuples?"))
			Expect(out["metadata"].(map[string]any)["agent_enforcement_applied"]).To(BeFalse())
		})

		It("respects an explicit delegation", func() {
			res := run(a, `{"prompt":"Use Task tool with data-processing-agent to analyze the CSV"}`)

			Expect(res.code).To(Equal(adapter.ExitAllow))

			out := res.payload()
			Expect(out["prompt"]).To(Equal("Use Task tool with data-processing-agent to analyze the CSV"))
			Expect(out["metadata"].(map[string]any)["agent_enforcement_applied"]).To(BeFalse())
		})

		It("is idempotent for allowed payloads", func() {
			first := run(a, `{"prompt":"What is a tuple?","extra":{"b":1,"a":[1,2]}}`)
			second := run(a, first.stdout)

			Expect(second.code).To(Equal(adapter.ExitAllow))
			Expect(second.stdout).To(Equal(first.stdout))
		})
	})

	Describe("tool events", func() {
		It("blocks a write without research evidence", func() {
			res := run(a, `{"tool":{"name":"Write","parameters":{"file_path":"main.py","content":"print(1)"}}}`)

			Expect(res.code).To(Equal(adapter.ExitBlock))
			Expect(res.payload()["errors"]).NotTo(BeEmpty())
			Expect(res.stderr).To(ContainSubstring("Blocked by enforcer"))
			Expect(res.stderr).To(ContainSubstring("[bypass]"))
		})

		It("allows a write with research evidence", func() {
			res := run(a, `{"tool":{"name":"Write","parameters":{"file_path":"main.py","content":"print(1)"}},`+
				`"conversation_context":"Used Context7 to research Python best practices before implementation"}`)

			Expect(res.code).To(Equal(adapter.ExitAllow))

			out := res.payload()
			Expect(out).NotTo(HaveKey("errors"))
			Expect(out["tool"]).NotTo(BeNil())
		})

		It("blocks a complex edit without research and drops its annotations", func() {
			res := run(a, `{"tool":{"name":"MultiEdit","parameters":{"file_path":"api.py","edits":[`+
				`{"old_string":"a","new_string":"b"},{"old_string":"c","new_string":"d"}]}}}`)

			Expect(res.code).To(Equal(adapter.ExitBlock))
			out := res.payload()
			Expect(out).To(HaveLen(1))
			Expect(out["errors"]).To(Equal([]any{bypass.DefaultMessage}))
			Expect(out).NotTo(HaveKey("metadata"))
			Expect(res.stderr).To(ContainSubstring("[bypass]"))
			Expect(res.stderr).NotTo(ContainSubstring("TodoWrite"))
		})

		It("leaves Bash file writes alone by default", func() {
			res := run(a, `{"tool_name":"Bash","tool_input":{"command":"go test ./... > out.txt"}}`)

			Expect(res.code).To(Equal(adapter.ExitAllow))
			Expect(res.stderr).To(BeEmpty())
		})

		It("allows post tool use events", func() {
			res := run(a, `{"tool":{"name":"Write","parameters":{}},"result":{"ok":true}}`)

			Expect(res.code).To(Equal(adapter.ExitAllow))
			Expect(res.payload()["result"]).To(Equal(map[string]any{"ok": true}))
		})
	})

	It("allows session start", func() {
		res := run(a, `{}`)

		Expect(res.code).To(Equal(adapter.ExitAllow))
		Expect(res.payload()).To(HaveKey("metadata"))
	})

	DescribeTable("malformed input",
		func(input string) {
			res := run(a, input)

			Expect(res.code).To(Equal(adapter.ExitFault))
			Expect(res.stdout).To(BeEmpty())
			Expect(res.stderr).NotTo(BeEmpty())
		},
		Entry("broken JSON", `{"prompt":`),
		Entry("array", `[1,2]`),
		Entry("string", `"hello"`),
		Entry("null", `null`),
		Entry("string tool parameters", `{"tool":{"name":"Write","parameters":"x"}}`),
		Entry("array tool parameters",
			`{"hook_event_name":"PreToolUse","tool":{"name":"Write","parameters":["x"]}}`),
		Entry("string tool_input", `{"tool_name":"Write","tool_input":"x"}`),
	)

	It("faults on malformed tool parameters under a kind hint", func() {
		a = adapter.New(adapter.WithKindHint(hook.EventKindPreToolUse))
		res := run(a, `{"tool":{"name":"Write","parameters":"oops"}}`)

		Expect(res.code).To(Equal(adapter.ExitFault))
		Expect(res.stdout).To(BeEmpty())
		Expect(res.stderr).To(ContainSubstring("tool.parameters"))
	})

	It("honors the kind hint", func() {
		a = adapter.New(adapter.WithKindHint(hook.EventKindSessionStart))
		res := run(a, `{"prompt":"Create a service"}`)

		Expect(res.code).To(Equal(adapter.ExitAllow))
		Expect(res.payload()["prompt"]).To(Equal("Create a service"))
	})

	It("passes decoded events to the observer", func() {
		var seen *hook.Event

		a = adapter.New(adapter.WithEventObserver(func(ev *hook.Event) { seen = ev }))
		run(a, `{"prompt":"hi"}`)

		Expect(seen).NotTo(BeNil())
		Expect(seen.Kind).To(Equal(hook.EventKindPromptSubmit))
	})

	Describe("configuration", func() {
		It("skips disabled policies", func() {
			cfg := internalconfig.DefaultConfig()
			cfg.GetGlobal().DisabledPolicies = []string{"bypass"}

			a = adapter.New(adapter.WithConfig(cfg))
			res := run(a, `{"tool":{"name":"Write","parameters":{"file_path":"main.py","content":"x"}}}`)

			Expect(res.code).To(Equal(adapter.ExitAllow))
		})

		It("fails on a hook version mismatch", func() {
			constraint := ">= 2.0.0"
			cfg := internalconfig.DefaultConfig()
			cfg.GetGlobal().HookVersionConstraint = &constraint

			a = adapter.New(adapter.WithConfig(cfg), adapter.WithVersion("1.0.0"))
			res := run(a, `{"prompt":"hi"}`)

			Expect(res.code).To(Equal(adapter.ExitFault))
			Expect(res.stdout).To(BeEmpty())
			Expect(res.stderr).To(ContainSubstring("constraint"))
		})

		It("records decisions to the audit log", func() {
			log := audit.NewLogger(filepath.Join(GinkgoT().TempDir(), "decisions.jsonl"))
			a = adapter.New(adapter.WithAudit(log))

			run(a, `{"prompt":"Build an API"}`)
			run(a, `{"tool":{"name":"Write","parameters":{"file_path":"a.go"}}}`)

			entries, err := log.Read()
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].Action).To(Equal("allowannotated"))
			Expect(entries[1].Action).To(Equal("block"))
			Expect(entries[1].ReasonCodes).To(ContainElement("research-bypass"))
		})
	})

	Describe("faults", func() {
		var (
			ctrl     *gomock.Controller
			registry *evaluator.Registry
		)

		mockNamed := func(name string) *evaluator.MockEvaluator {
			m := evaluator.NewMockEvaluator(ctrl)
			m.EXPECT().Name().Return(name).AnyTimes()

			return m
		}

		BeforeEach(func() {
			ctrl = gomock.NewController(GinkgoT())
			registry = evaluator.NewRegistry()
		})

		It("exits with a fault when no block was found", func() {
			failing := mockNamed("failing")
			failing.EXPECT().Evaluate(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))
			registry.Register(evaluator.Registration{Evaluator: failing, Severity: config.SeverityWarning})

			res := run(adapter.New(adapter.WithRegistry(registry)), `{"prompt":"hi"}`)

			Expect(res.code).To(Equal(adapter.ExitFault))
			Expect(res.stdout).To(BeEmpty())
			Expect(res.stderr).To(ContainSubstring("failing"))
			Expect(res.stderr).To(ContainSubstring("boom"))
		})

		It("still blocks when a hard violation was found", func() {
			failing := mockNamed("failing")
			failing.EXPECT().Evaluate(gomock.Any(), gomock.Any()).DoAndReturn(
				func(context.Context, *hook.Event) (*evaluator.Result, error) {
					panic("kaboom")
				},
			)

			blocking := mockNamed("blocking")
			blocking.EXPECT().Evaluate(gomock.Any(), gomock.Any()).Return(evaluator.Trigger("research-bypass", "no research"), nil)

			registry.Register(evaluator.Registration{Evaluator: failing, Severity: config.SeverityError})
			registry.Register(evaluator.Registration{Evaluator: blocking, Severity: config.SeverityError})

			res := run(adapter.New(adapter.WithRegistry(registry)), `{"prompt":"hi"}`)

			Expect(res.code).To(Equal(adapter.ExitBlock))
			Expect(res.payload()["errors"]).To(Equal([]any{"no research"}))
			Expect(res.stderr).To(ContainSubstring("kaboom"))
			Expect(res.stderr).To(ContainSubstring("no research"))
		})
	})

	Describe("Evaluate", func() {
		It("returns decode errors", func() {
			_, err := a.Evaluate(context.Background(), []byte(`[]`))
			Expect(errors.Is(err, parser.ErrDecode)).To(BeTrue())
		})

		It("returns the verdict and output", func() {
			out, err := a.Evaluate(context.Background(), []byte(`{"prompt":"Implement caching"}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Verdict.Flags).To(ContainElement(implementation.FlagAgentEnforcement))
			Expect(out.ExitCode).To(Equal(adapter.ExitAllow))
			Expect(out.Output).NotTo(BeEmpty())
		})
	})

	It("runs with package defaults", func() {
		var stdout, stderr bytes.Buffer
		code := adapter.Run(context.Background(), strings.NewReader(`{"prompt":"hello"}`), &stdout, &stderr)
		Expect(code).To(Equal(adapter.ExitAllow))
		Expect(stdout.String()).To(ContainSubstring(`"hook_version":"dev"`))
	})
})
