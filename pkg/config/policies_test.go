package config_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/enforcer/pkg/config"
)

var _ = Describe("Config accessors", func() {
	It("creates missing sections lazily", func() {
		cfg := &config.Config{}

		Expect(cfg.GetGlobal()).NotTo(BeNil())
		Expect(cfg.GetPolicies().GetBypass()).NotTo(BeNil())
		Expect(cfg.GetPolicies().GetTodoTracking()).NotTo(BeNil())
		Expect(cfg.GetPolicies().GetImplementation()).NotTo(BeNil())
		Expect(cfg.GetAudit()).NotTo(BeNil())
		Expect(cfg.GetCrashDump()).NotTo(BeNil())
	})

	Describe("GlobalConfig", func() {
		It("reports disabled policies", func() {
			g := &config.GlobalConfig{DisabledPolicies: []string{"bypass"}}
			Expect(g.IsPolicyDisabled("bypass")).To(BeTrue())
			Expect(g.IsPolicyDisabled("todo_tracking")).To(BeFalse())
		})

		It("is nil-safe", func() {
			var g *config.GlobalConfig
			Expect(g.IsPolicyDisabled("bypass")).To(BeFalse())
			Expect(g.GetHookVersionConstraint()).To(BeEmpty())
		})
	})
})

var _ = Describe("PolicyConfig", func() {
	It("is enabled by default", func() {
		var c *config.PolicyConfig
		Expect(c.IsEnabled()).To(BeTrue())
		Expect((&config.PolicyConfig{}).IsEnabled()).To(BeTrue())
	})

	It("honors an explicit disable", func() {
		disabled := false
		Expect((&config.PolicyConfig{Enabled: &disabled}).IsEnabled()).To(BeFalse())
	})

	It("falls back to the given severity", func() {
		c := &config.PolicyConfig{}
		Expect(c.GetSeverity(config.SeverityError)).To(Equal(config.SeverityError))

		c.Severity = config.SeverityWarning
		Expect(c.GetSeverity(config.SeverityError)).To(Equal(config.SeverityWarning))
	})

	It("falls back to the given message when blank", func() {
		blank := ""
		custom := "read the docs first"

		Expect((&config.PolicyConfig{Message: &blank}).GetMessage("def")).To(Equal("def"))
		Expect((&config.PolicyConfig{Message: &custom}).GetMessage("def")).To(Equal(custom))
	})
})

var _ = Describe("policy defaults", func() {
	It("uses todo tracking thresholds", func() {
		var c *config.TodoTrackingPolicyConfig
		Expect(c.GetMinCapabilities()).To(Equal(config.DefaultMinCapabilities))
		Expect(c.GetMinEditUnits()).To(Equal(config.DefaultMinEditUnits))

		three := 3
		c = &config.TodoTrackingPolicyConfig{MinCapabilities: &three}
		Expect(c.GetMinCapabilities()).To(Equal(3))
	})

	It("leaves bash writes unchecked by default", func() {
		var c *config.BypassPolicyConfig
		Expect(c.IsCheckBashWrites()).To(BeFalse())
		Expect((&config.BypassPolicyConfig{}).IsCheckBashWrites()).To(BeFalse())

		on := true
		c = &config.BypassPolicyConfig{CheckBashWrites: &on}
		Expect(c.IsCheckBashWrites()).To(BeTrue())
	})

	It("keeps the audit log disabled by default", func() {
		var c *config.AuditConfig
		Expect(c.IsEnabled()).To(BeFalse())
		Expect(c.GetLogFile("/tmp/audit.jsonl")).To(Equal("/tmp/audit.jsonl"))
	})

	It("uses crash dump defaults", func() {
		var c *config.CrashDumpConfig
		Expect(c.IsEnabled()).To(BeTrue())
		Expect(c.IsIncludeEvent()).To(BeTrue())
		Expect(c.GetDumpDir("/tmp/dumps")).To(Equal("/tmp/dumps"))
		Expect(c.GetMaxDumps()).To(Equal(config.DefaultMaxDumps))
		Expect(c.GetMaxAge().ToDuration()).To(Equal(30 * 24 * time.Hour))
	})

	It("keeps an explicit zero dump limit in the retention", func() {
		zero := 0
		c := &config.CrashDumpConfig{MaxDumps: &zero, MaxAge: config.Duration(time.Hour)}

		Expect(c.GetRetention()).To(Equal(config.Retention{MaxDumps: 0, MaxAge: time.Hour}))
	})
})
