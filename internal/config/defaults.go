// Package config provides internal configuration loading and processing.
package config

import (
	"time"

	"github.com/smykla-skalski/enforcer/pkg/config"
)

const (
	// DefaultCrashDumpMaxAge is how long crash dumps are kept.
	DefaultCrashDumpMaxAge = config.DefaultMaxAgeDays * 24 * time.Hour

	defaultCrashDumpMaxAgeStr = "720h"
)

// DefaultConfig returns a Config with all default values populated.
func DefaultConfig() *config.Config {
	return &config.Config{
		Version:   config.CurrentConfigVersion,
		Global:    &config.GlobalConfig{},
		Policies:  DefaultPoliciesConfig(),
		Audit:     DefaultAuditConfig(),
		CrashDump: DefaultCrashDumpConfig(),
	}
}

// DefaultPoliciesConfig returns the default policy configuration.
func DefaultPoliciesConfig() *config.PoliciesConfig {
	minCapabilities := config.DefaultMinCapabilities
	minEditUnits := config.DefaultMinEditUnits
	checkBashWrites := false

	return &config.PoliciesConfig{
		Implementation: &config.ImplementationPolicyConfig{
			PolicyConfig: defaultPolicy(config.SeverityWarning),
		},
		TodoTracking: &config.TodoTrackingPolicyConfig{
			PolicyConfig:    defaultPolicy(config.SeverityWarning),
			MinCapabilities: &minCapabilities,
			MinEditUnits:    &minEditUnits,
		},
		Bypass: &config.BypassPolicyConfig{
			PolicyConfig:    defaultPolicy(config.SeverityError),
			CheckBashWrites: &checkBashWrites,
		},
	}
}

// DefaultAuditConfig returns the default audit configuration. Auditing is off.
func DefaultAuditConfig() *config.AuditConfig {
	enabled := false

	return &config.AuditConfig{Enabled: &enabled}
}

// DefaultCrashDumpConfig returns the default crash dump configuration.
func DefaultCrashDumpConfig() *config.CrashDumpConfig {
	enabled := true
	maxDumps := config.DefaultMaxDumps
	includeEvent := true

	return &config.CrashDumpConfig{
		Enabled:      &enabled,
		MaxDumps:     &maxDumps,
		MaxAge:       config.Duration(DefaultCrashDumpMaxAge),
		IncludeEvent: &includeEvent,
	}
}

func defaultPolicy(severity config.Severity) config.PolicyConfig {
	enabled := true

	return config.PolicyConfig{
		Enabled:  &enabled,
		Severity: severity,
	}
}

// defaultsToMap converts the defaults to a map for koanf loading.
// Every configurable key is present so environment variables can be
// resolved against it.
func defaultsToMap() map[string]any {
	return map[string]any{
		"version": config.CurrentConfigVersion,
		"global": map[string]any{
			"hook_version_constraint": "",
			"disabled_policies":       []string{},
		},
		"policies": map[string]any{
			"implementation": policyMap(config.SeverityWarning, map[string]any{
				"extra_keywords":   []string{},
				"override_phrases": []string{},
			}),
			"todo_tracking": policyMap(config.SeverityWarning, map[string]any{
				"tracking_markers": []string{},
				"capability_nouns": []string{},
				"min_capabilities": config.DefaultMinCapabilities,
				"min_edit_units":   config.DefaultMinEditUnits,
			}),
			"bypass": policyMap(config.SeverityError, map[string]any{
				"evidence_markers":  []string{},
				"evidence_fields":   []string{},
				"exempt_paths":      []string{},
				"check_bash_writes": false,
			}),
		},
		"audit": map[string]any{
			"enabled":  false,
			"log_file": "",
		},
		"crash_dump": map[string]any{
			"enabled":       true,
			"dump_dir":      "",
			"max_dumps":     config.DefaultMaxDumps,
			"max_age":       defaultCrashDumpMaxAgeStr,
			"include_event": true,
		},
	}
}

func policyMap(severity config.Severity, extra map[string]any) map[string]any {
	m := map[string]any{
		"enabled":  true,
		"severity": severity.String(),
		"message":  "",
	}

	for k, v := range extra {
		m[k] = v
	}

	return m
}
