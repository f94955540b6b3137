// Package config provides the configuration schema for the enforcer hook.
package config

// CurrentConfigVersion is the latest config schema version.
const CurrentConfigVersion = 1

// Config represents the root configuration for enforcer.
type Config struct {
	// Version is the config schema version. Defaults to 1 when omitted.
	Version int `json:"version,omitempty" koanf:"version" toml:"version,omitempty"`

	// Global settings that apply across all policies.
	Global *GlobalConfig `json:"global,omitempty" koanf:"global" toml:"global,omitempty"`

	// Policies groups the configuration of every policy evaluator.
	Policies *PoliciesConfig `json:"policies,omitempty" koanf:"policies" toml:"policies,omitempty"`

	// Audit contains configuration for the decision audit log.
	Audit *AuditConfig `json:"audit,omitempty" koanf:"audit" toml:"audit,omitempty"`

	// CrashDump contains configuration for the crash dump system.
	CrashDump *CrashDumpConfig `json:"crash_dump,omitempty" koanf:"crash_dump" toml:"crash_dump,omitempty"`
}

// GlobalConfig contains settings that apply to every invocation.
type GlobalConfig struct {
	// HookVersionConstraint is a semver constraint the binary version must satisfy.
	// An empty constraint accepts any version.
	HookVersionConstraint *string `json:"hook_version_constraint,omitempty" koanf:"hook_version_constraint" toml:"hook_version_constraint,omitempty"`

	// DisabledPolicies lists policy names that are switched off regardless of
	// their own enabled flag.
	DisabledPolicies []string `json:"disabled_policies,omitempty" koanf:"disabled_policies" toml:"disabled_policies,omitempty"`
}

// GetHookVersionConstraint returns the version constraint or an empty string.
func (g *GlobalConfig) GetHookVersionConstraint() string {
	if g == nil || g.HookVersionConstraint == nil {
		return ""
	}

	return *g.HookVersionConstraint
}

// IsPolicyDisabled reports whether name is listed in DisabledPolicies.
func (g *GlobalConfig) IsPolicyDisabled(name string) bool {
	if g == nil {
		return false
	}

	for _, disabled := range g.DisabledPolicies {
		if disabled == name {
			return true
		}
	}

	return false
}

// GetGlobal returns the global config, creating it if it doesn't exist.
func (c *Config) GetGlobal() *GlobalConfig {
	if c.Global == nil {
		c.Global = &GlobalConfig{}
	}

	return c.Global
}

// GetPolicies returns the policies config, creating it if it doesn't exist.
func (c *Config) GetPolicies() *PoliciesConfig {
	if c.Policies == nil {
		c.Policies = &PoliciesConfig{}
	}

	return c.Policies
}

// GetAudit returns the audit config, creating it if it doesn't exist.
func (c *Config) GetAudit() *AuditConfig {
	if c.Audit == nil {
		c.Audit = &AuditConfig{}
	}

	return c.Audit
}

// GetCrashDump returns the crash dump config, creating it if it doesn't exist.
func (c *Config) GetCrashDump() *CrashDumpConfig {
	if c.CrashDump == nil {
		c.CrashDump = &CrashDumpConfig{}
	}

	return c.CrashDump
}
