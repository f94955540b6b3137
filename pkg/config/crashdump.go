package config

import "time"

const (
	// DefaultMaxDumps is the default maximum number of crash dumps to keep.
	DefaultMaxDumps = 10

	// DefaultMaxAgeDays is the default maximum age of crash dumps in days.
	DefaultMaxAgeDays = 30
)

// CrashDumpConfig controls the dumps written when the hook panics.
//
//	[crash_dump]
//	enabled = true
//	dump_dir = "~/.local/share/enforcer/crash_dumps"
//	max_dumps = 10      # 0 keeps every dump
//	max_age = "720h"
//	include_event = true
type CrashDumpConfig struct {
	// Enabled controls whether a panic writes a dump.
	// Default: true
	Enabled *bool `json:"enabled,omitempty" koanf:"enabled" toml:"enabled,omitempty"`

	// DumpDir is where dumps are written.
	// Default: $XDG_DATA_HOME/enforcer/crash_dumps
	DumpDir *string `json:"dump_dir,omitempty" koanf:"dump_dir" toml:"dump_dir,omitempty"`

	// MaxDumps bounds the number of dumps kept after each write. Zero keeps all.
	// Default: 10
	MaxDumps *int `json:"max_dumps,omitempty" koanf:"max_dumps" toml:"max_dumps,omitempty"`

	// MaxAge removes dumps older than this after each write.
	// Default: "720h"
	MaxAge Duration `json:"max_age,omitempty" koanf:"max_age" toml:"max_age,omitempty"`

	// IncludeEvent adds the sanitized event under evaluation to the dump.
	// Default: true
	IncludeEvent *bool `json:"include_event,omitempty" koanf:"include_event" toml:"include_event,omitempty"`
}

// Retention is the pruning policy applied to the dump directory.
type Retention struct {
	// MaxDumps is the number of newest dumps kept. Zero means no limit.
	MaxDumps int

	// MaxAge is the age after which dumps are removed. Zero means no limit.
	MaxAge time.Duration
}

// IsEnabled returns whether crash dumps are enabled.
func (c *CrashDumpConfig) IsEnabled() bool {
	return c == nil || c.Enabled == nil || *c.Enabled
}

// GetDumpDir returns the dump directory, or def if not set.
func (c *CrashDumpConfig) GetDumpDir(def string) string {
	if c == nil || c.DumpDir == nil || *c.DumpDir == "" {
		return def
	}

	return *c.DumpDir
}

// GetMaxDumps returns the maximum number of dumps, DefaultMaxDumps if unset.
func (c *CrashDumpConfig) GetMaxDumps() int {
	if c == nil || c.MaxDumps == nil {
		return DefaultMaxDumps
	}

	return *c.MaxDumps
}

// GetMaxAge returns the maximum dump age, DefaultMaxAgeDays if unset.
func (c *CrashDumpConfig) GetMaxAge() Duration {
	if c == nil || c.MaxAge.ToDuration() == 0 {
		return Duration(DefaultMaxAgeDays * 24 * time.Hour)
	}

	return c.MaxAge
}

// GetRetention returns the effective pruning policy.
func (c *CrashDumpConfig) GetRetention() Retention {
	return Retention{
		MaxDumps: c.GetMaxDumps(),
		MaxAge:   c.GetMaxAge().ToDuration(),
	}
}

// IsIncludeEvent returns whether the event should be included in dumps.
func (c *CrashDumpConfig) IsIncludeEvent() bool {
	return c == nil || c.IncludeEvent == nil || *c.IncludeEvent
}
