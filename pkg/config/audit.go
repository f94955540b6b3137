package config

// AuditConfig contains configuration for the decision audit log.
//
// Example configuration:
//
//	[audit]
//	enabled = true
//	log_file = "~/.local/state/enforcer/decisions.jsonl"
type AuditConfig struct {
	// Enabled controls whether each verdict is appended to the audit log.
	// Default: false
	Enabled *bool `json:"enabled,omitempty" koanf:"enabled" toml:"enabled,omitempty"`

	// LogFile is the JSONL file verdicts are appended to.
	// Default: $XDG_STATE_HOME/enforcer/decisions.jsonl
	LogFile *string `json:"log_file,omitempty" koanf:"log_file" toml:"log_file,omitempty"`
}

// IsEnabled returns whether the audit log is enabled.
func (c *AuditConfig) IsEnabled() bool {
	if c == nil || c.Enabled == nil {
		return false
	}

	return *c.Enabled
}

// GetLogFile returns the configured log file, or def when unset.
func (c *AuditConfig) GetLogFile(def string) string {
	if c == nil || c.LogFile == nil || *c.LogFile == "" {
		return def
	}

	return *c.LogFile
}
