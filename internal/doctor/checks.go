package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"

	internalconfig "github.com/smykla-skalski/enforcer/internal/config"
	"github.com/smykla-skalski/enforcer/internal/config/factory"
	"github.com/smykla-skalski/enforcer/internal/xdg"
	"github.com/smykla-skalski/enforcer/pkg/config"
	"github.com/smykla-skalski/enforcer/pkg/logger"
)

// FixConfigPermissions is the fixer ID for world-writable config files.
const FixConfigPermissions = "config-permissions"

const configFileMode = 0o600

// ConfigChecker verifies that the layered configuration loads and validates.
type ConfigChecker struct {
	loader *internalconfig.KoanfLoader
	flags  map[string]any
}

func NewConfigChecker(loader *internalconfig.KoanfLoader, flags map[string]any) *ConfigChecker {
	return &ConfigChecker{loader: loader, flags: flags}
}

func (*ConfigChecker) Name() string       { return "Configuration" }
func (*ConfigChecker) Category() Category { return CategoryConfig }

func (c *ConfigChecker) Check(_ context.Context) CheckResult {
	name := c.Name()

	cfg, err := c.loader.LoadWithoutValidation(c.flags)

	switch {
	case errors.Is(err, internalconfig.ErrInvalidPermissions):
		return FailError(name, "Insecure file permissions").
			WithDetails(err.Error(), "Config files must not be world-writable").
			WithFixID(FixConfigPermissions)
	case errors.Is(err, internalconfig.ErrInvalidTOML):
		return FailError(name, "Invalid TOML syntax").WithDetails(err.Error())
	case err != nil:
		return FailError(name, "Failed to load").WithDetails(err.Error())
	}

	if err := internalconfig.NewValidator().Validate(cfg); err != nil {
		return FailError(name, "Validation failed").WithDetails(err.Error())
	}

	return Pass(name, "Valid").WithDetails(c.sources()...)
}

func (c *ConfigChecker) sources() []string {
	var sources []string

	if c.loader.HasGlobalConfig() {
		sources = append(sources, "Global: "+c.loader.GlobalConfigPath())
	}

	if p := c.loader.FindProjectConfigPath(); p != "" {
		sources = append(sources, "Project: "+p)
	}

	if len(sources) == 0 {
		sources = append(sources, "Using built-in defaults")
	}

	return sources
}

// PermissionsChecker reports config files that other users can modify.
type PermissionsChecker struct {
	paths []string
}

func NewPermissionsChecker(paths ...string) *PermissionsChecker {
	return &PermissionsChecker{paths: paths}
}

func (*PermissionsChecker) Name() string       { return "Config permissions" }
func (*PermissionsChecker) Category() Category { return CategoryConfig }

func (c *PermissionsChecker) Check(_ context.Context) CheckResult {
	existing, unsafe := scanPermissions(c.paths)
	if existing == 0 {
		return Skip(c.Name(), "No config files")
	}

	if len(unsafe) > 0 {
		return FailError(c.Name(), fmt.Sprintf("%d world-writable file(s)", len(unsafe))).
			WithDetails(unsafe...).
			WithFixID(FixConfigPermissions)
	}

	return Pass(c.Name(), "Not world-writable")
}

func scanPermissions(paths []string) (int, []string) {
	var (
		existing int
		unsafe   []string
	)

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}

		existing++

		if info.Mode().Perm()&0o002 != 0 {
			unsafe = append(unsafe, fmt.Sprintf("%s (mode: %s)", p, info.Mode().Perm()))
		}
	}

	return existing, unsafe
}

// PermissionsFixer restricts world-writable config files to their owner.
type PermissionsFixer struct {
	paths []string
}

func NewPermissionsFixer(paths ...string) *PermissionsFixer {
	return &PermissionsFixer{paths: paths}
}

func (*PermissionsFixer) ID() string { return FixConfigPermissions }

func (*PermissionsFixer) Description() string {
	return "Restrict config files to mode 0600"
}

func (f *PermissionsFixer) Fix(_ context.Context) error {
	for _, p := range f.paths {
		info, err := os.Stat(p)
		if err != nil || info.Mode().Perm()&0o002 == 0 {
			continue
		}

		if err := os.Chmod(p, configFileMode); err != nil {
			return errors.Wrapf(err, "failed to chmod %s", p)
		}
	}

	return nil
}

// DirChecker verifies that a directory enforcer writes to exists and is
// writable.
type DirChecker struct {
	name    string
	path    string
	enabled bool
}

// NewDirChecker creates a DirChecker. Disabled checkers report a skip.
func NewDirChecker(name, path string, enabled bool) *DirChecker {
	return &DirChecker{name: name, path: path, enabled: enabled}
}

func (c *DirChecker) Name() string     { return c.name }
func (*DirChecker) Category() Category { return CategoryPaths }

// FixID returns the ID of the DirFixer paired with this checker.
func (c *DirChecker) FixID() string {
	return "dir:" + strings.ToLower(strings.ReplaceAll(c.name, " ", "-"))
}

func (c *DirChecker) Check(_ context.Context) CheckResult {
	if !c.enabled {
		return Skip(c.name, "Disabled")
	}

	info, err := os.Stat(c.path)

	switch {
	case os.IsNotExist(err):
		return FailWarning(c.name, "Missing").
			WithDetails(c.path, "Created on first use").
			WithFixID(c.FixID())
	case err != nil:
		return FailError(c.name, "Not accessible").WithDetails(err.Error())
	case !info.IsDir():
		return FailError(c.name, "Not a directory").WithDetails(c.path)
	}

	probe, err := os.CreateTemp(c.path, ".enforcer-doctor-*")
	if err != nil {
		return FailError(c.name, "Not writable").WithDetails(c.path, err.Error())
	}

	_ = probe.Close()
	_ = os.Remove(probe.Name())

	return Pass(c.name, "Writable").WithDetails(c.path)
}

// DirFixer creates a missing directory with owner-only permissions.
type DirFixer struct {
	id   string
	path string
}

// NewDirFixer returns the fixer matching checker.
func NewDirFixer(checker *DirChecker) *DirFixer {
	return &DirFixer{id: checker.FixID(), path: checker.path}
}

func (f *DirFixer) ID() string          { return f.id }
func (f *DirFixer) Description() string { return "Create " + f.path }

func (f *DirFixer) Fix(_ context.Context) error {
	return xdg.EnsureDir(f.path)
}

// VersionChecker verifies the binary version against
// hook_version_constraint.
type VersionChecker struct {
	cfg     *config.Config
	version string
}

func NewVersionChecker(cfg *config.Config, version string) *VersionChecker {
	return &VersionChecker{cfg: cfg, version: version}
}

func (*VersionChecker) Name() string       { return "Version constraint" }
func (*VersionChecker) Category() Category { return CategoryConfig }

func (c *VersionChecker) Check(_ context.Context) CheckResult {
	if c.cfg == nil {
		return Skip(c.Name(), "Configuration did not load")
	}

	constraint := c.cfg.GetGlobal().GetHookVersionConstraint()
	if constraint == "" {
		return Skip(c.Name(), "No constraint configured")
	}

	if _, err := semver.NewVersion(c.version); err != nil {
		return Skip(c.Name(), "Development build "+c.version)
	}

	if err := internalconfig.CheckHookVersion(c.cfg, c.version); err != nil {
		return FailError(c.Name(), "Not satisfied").WithDetails(err.Error())
	}

	return Pass(c.Name(), fmt.Sprintf("%s satisfies %q", c.version, constraint))
}

// PoliciesChecker verifies that the policy registry builds and that at least
// one policy is active.
type PoliciesChecker struct {
	cfg *config.Config
	log logger.Logger
}

func NewPoliciesChecker(cfg *config.Config, log logger.Logger) *PoliciesChecker {
	return &PoliciesChecker{cfg: cfg, log: log}
}

func (*PoliciesChecker) Name() string       { return "Policies" }
func (*PoliciesChecker) Category() Category { return CategoryPolicies }

func (c *PoliciesChecker) Check(_ context.Context) CheckResult {
	if c.cfg == nil {
		return Skip(c.Name(), "Configuration did not load")
	}

	registry, err := factory.NewRegistryBuilder(c.log).Build(c.cfg)
	if err != nil {
		return FailError(c.Name(), "Failed to build").WithDetails(err.Error())
	}

	total := len(internalconfig.PolicyNames)

	active := make([]string, 0, registry.Count())
	for _, reg := range registry.All() {
		active = append(active, reg.Evaluator.Name())
	}

	if len(active) == 0 {
		return FailWarning(c.Name(), "All policies disabled").
			WithDetails("Hooks will allow every event")
	}

	return Pass(c.Name(), fmt.Sprintf("%d of %d enabled", len(active), total)).
		WithDetails(strings.Join(active, ", "))
}

// Environment holds what the standard checks inspect.
type Environment struct {
	Loader  *internalconfig.KoanfLoader
	Flags   map[string]any
	Config  *config.Config
	Version string
	Logger  logger.Logger
}

// NewStandardRegistry registers every enforcer health check and its fixers.
// Config may be nil when loading failed; dependent checks then skip.
func NewStandardRegistry(env Environment) *Registry {
	configFiles := append([]string{env.Loader.GlobalConfigPath()}, env.Loader.ProjectConfigPaths()...)

	cfg := env.Config
	if cfg == nil {
		cfg = internalconfig.DefaultConfig()
	}

	logDir := NewDirChecker("Log directory", filepath.Dir(xdg.LogFile()), true)
	auditDir := NewDirChecker(
		"Audit log directory",
		filepath.Dir(xdg.ExpandPathSilent(cfg.GetAudit().GetLogFile(xdg.AuditLogFile()))),
		cfg.GetAudit().IsEnabled(),
	)
	crashDir := NewDirChecker(
		"Crash dump directory",
		xdg.ExpandPathSilent(cfg.GetCrashDump().GetDumpDir(xdg.CrashDumpDir())),
		cfg.GetCrashDump().IsEnabled(),
	)

	r := NewRegistry()
	r.RegisterChecker(
		NewConfigChecker(env.Loader, env.Flags),
		NewPermissionsChecker(configFiles...),
		NewVersionChecker(env.Config, env.Version),
		NewPoliciesChecker(env.Config, env.Logger),
		logDir,
		auditDir,
		crashDir,
	)
	r.RegisterFixer(
		NewPermissionsFixer(configFiles...),
		NewDirFixer(logDir),
		NewDirFixer(auditDir),
		NewDirFixer(crashDir),
	)

	return r
}
