package config_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/enforcer/internal/config"
	pkgConfig "github.com/smykla-skalski/enforcer/pkg/config"
)

var _ = Describe("KoanfLoader", func() {
	var (
		homeDir string
		workDir string
		loader  *config.KoanfLoader
	)

	writeFile := func(path, content string) {
		Expect(os.MkdirAll(filepath.Dir(path), 0o700)).To(Succeed())
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
	}

	BeforeEach(func() {
		tmp := GinkgoT().TempDir()
		homeDir = filepath.Join(tmp, "home")
		workDir = filepath.Join(tmp, "work")

		Expect(os.MkdirAll(workDir, 0o700)).To(Succeed())

		loader = config.NewKoanfLoaderWithDirs(homeDir, workDir)
	})

	It("returns defaults without any config file", func() {
		cfg, err := loader.Load(nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Version).To(Equal(pkgConfig.CurrentConfigVersion))

		policies := cfg.GetPolicies()
		Expect(policies.GetImplementation().GetSeverity(pkgConfig.SeverityUnknown)).To(Equal(pkgConfig.SeverityWarning))
		Expect(policies.GetTodoTracking().GetSeverity(pkgConfig.SeverityUnknown)).To(Equal(pkgConfig.SeverityWarning))
		Expect(policies.GetBypass().GetSeverity(pkgConfig.SeverityUnknown)).To(Equal(pkgConfig.SeverityError))
		Expect(policies.GetBypass().IsEnabled()).To(BeTrue())
		Expect(policies.GetBypass().IsCheckBashWrites()).To(BeFalse())
		Expect(policies.GetTodoTracking().GetMinEditUnits()).To(Equal(2))
		Expect(cfg.GetAudit().IsEnabled()).To(BeFalse())
		Expect(cfg.GetCrashDump().GetMaxAge().ToDuration()).To(Equal(720 * time.Hour))
	})

	It("layers project config over global config", func() {
		writeFile(loader.GlobalConfigPath(), `
[policies.bypass]
severity = "warning"
exempt_paths = ["docs/**"]

[policies.todo_tracking]
min_edit_units = 5
`)
		writeFile(filepath.Join(workDir, ".enforcer", "config.toml"), `
[policies.bypass]
exempt_paths = ["**/*.md"]
`)

		cfg, err := loader.Load(nil)
		Expect(err).NotTo(HaveOccurred())

		bypass := cfg.GetPolicies().GetBypass()
		Expect(bypass.GetSeverity(pkgConfig.SeverityUnknown)).To(Equal(pkgConfig.SeverityWarning))
		Expect(bypass.ExemptPaths).To(Equal([]string{"**/*.md"}))
		Expect(cfg.GetPolicies().GetTodoTracking().GetMinEditUnits()).To(Equal(5))
	})

	It("finds the alternative project file", func() {
		writeFile(filepath.Join(workDir, "enforcer.toml"), `
[global]
disabled_policies = ["implementation"]
`)

		cfg, err := loader.Load(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.GetGlobal().IsPolicyDisabled("implementation")).To(BeTrue())
		Expect(loader.FindProjectConfigPath()).To(HaveSuffix("enforcer.toml"))
	})

	It("applies environment variables", func() {
		GinkgoT().Setenv("ENFORCER_POLICIES_TODO_TRACKING_MIN_EDIT_UNITS", "7")
		GinkgoT().Setenv("ENFORCER_POLICIES_BYPASS_EVIDENCE_MARKERS", "rfc, spec sheet")
		GinkgoT().Setenv("ENFORCER_CRASH_DUMP_ENABLED", "false")

		cfg, err := loader.Load(nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.GetPolicies().GetTodoTracking().GetMinEditUnits()).To(Equal(7))
		Expect(cfg.GetPolicies().GetBypass().EvidenceMarkers).To(Equal([]string{"rfc", "spec sheet"}))
		Expect(cfg.GetCrashDump().IsEnabled()).To(BeFalse())
	})

	It("applies flags last", func() {
		writeFile(filepath.Join(workDir, "enforcer.toml"), `
[global]
disabled_policies = ["implementation"]
`)

		cfg, err := loader.Load(map[string]any{
			config.FlagDisable:  []string{"bypass", "implementation"},
			config.FlagAuditLog: "/tmp/audit.jsonl",
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.GetGlobal().DisabledPolicies).To(Equal([]string{"implementation", "bypass"}))
		Expect(cfg.GetAudit().IsEnabled()).To(BeTrue())
		Expect(cfg.GetAudit().GetLogFile("")).To(Equal("/tmp/audit.jsonl"))
	})

	It("rejects world-writable config files", func() {
		path := filepath.Join(workDir, "enforcer.toml")
		writeFile(path, "version = 1\n")
		Expect(os.Chmod(path, 0o666)).To(Succeed())

		_, err := loader.Load(nil)
		Expect(errors.Is(err, config.ErrInvalidPermissions)).To(BeTrue())
	})

	It("reports invalid TOML", func() {
		writeFile(filepath.Join(workDir, "enforcer.toml"), "[policies\n")

		_, err := loader.Load(nil)
		Expect(errors.Is(err, config.ErrInvalidTOML)).To(BeTrue())
	})

	It("rejects an invalid severity", func() {
		writeFile(filepath.Join(workDir, "enforcer.toml"), `
[policies.bypass]
severity = "fatal"
`)

		_, err := loader.Load(nil)
		Expect(err).To(HaveOccurred())
	})

	It("validates after loading", func() {
		writeFile(filepath.Join(workDir, "enforcer.toml"), `
[global]
disabled_policies = ["nope"]
`)

		_, err := loader.Load(nil)
		Expect(errors.Is(err, config.ErrInvalidConfig)).To(BeTrue())

		cfg, err := loader.LoadWithoutValidation(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.GetGlobal().DisabledPolicies).To(ContainElement("nope"))
	})
})
