package config_test

import (
	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/enforcer/internal/config"
	pkgConfig "github.com/smykla-skalski/enforcer/pkg/config"
)

func ptr[T any](v T) *T {
	return &v
}

var _ = Describe("Validator", func() {
	var (
		v   *config.Validator
		cfg *pkgConfig.Config
	)

	BeforeEach(func() {
		v = config.NewValidator()
		cfg = config.DefaultConfig()
	})

	It("accepts the defaults", func() {
		Expect(v.Validate(cfg)).To(Succeed())
	})

	It("rejects nil", func() {
		Expect(errors.Is(v.Validate(nil), config.ErrInvalidConfig)).To(BeTrue())
	})

	It("rejects a future version", func() {
		cfg.Version = pkgConfig.CurrentConfigVersion + 1
		Expect(v.Validate(cfg)).NotTo(Succeed())
	})

	It("rejects an invalid version constraint", func() {
		cfg.Global.HookVersionConstraint = ptr(">= banana")
		Expect(v.Validate(cfg)).NotTo(Succeed())
	})

	It("accepts a valid version constraint", func() {
		cfg.Global.HookVersionConstraint = ptr(">= 1.0.0, < 3")
		Expect(v.Validate(cfg)).To(Succeed())
	})

	It("rejects unknown disabled policies", func() {
		cfg.Global.DisabledPolicies = []string{"bypass", "typo"}

		err := v.Validate(cfg)
		Expect(errors.Is(err, config.ErrInvalidConfig)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("validation failed"))
	})

	It("rejects invalid exempt globs", func() {
		cfg.Policies.Bypass.ExemptPaths = []string{"docs/[a"}
		Expect(v.Validate(cfg)).NotTo(Succeed())
	})

	It("rejects negative thresholds", func() {
		cfg.Policies.TodoTracking.MinEditUnits = ptr(-1)
		Expect(v.Validate(cfg)).NotTo(Succeed())
	})

	It("rejects empty vocabulary entries", func() {
		cfg.Policies.Implementation.ExtraKeywords = []string{"bootstrap", ""}
		Expect(v.Validate(cfg)).NotTo(Succeed())
	})

	It("rejects out-of-range severities", func() {
		cfg.Policies.Implementation.Severity = pkgConfig.Severity(42)
		Expect(v.Validate(cfg)).NotTo(Succeed())
	})
})

var _ = Describe("CheckHookVersion", func() {
	It("passes without a constraint", func() {
		Expect(config.CheckHookVersion(config.DefaultConfig(), "0.1.0")).To(Succeed())
	})

	It("checks the constraint", func() {
		cfg := config.DefaultConfig()
		cfg.Global.HookVersionConstraint = ptr(">= 1.0.0")

		Expect(config.CheckHookVersion(cfg, "1.2.0")).To(Succeed())
		Expect(errors.Is(config.CheckHookVersion(cfg, "0.9.0"), config.ErrHookVersionMismatch)).To(BeTrue())
	})

	It("lets development builds through", func() {
		cfg := config.DefaultConfig()
		cfg.Global.HookVersionConstraint = ptr(">= 1.0.0")

		Expect(config.CheckHookVersion(cfg, "dev")).To(Succeed())
	})
})
