package config

// PolicyConfig holds the settings shared by every policy.
type PolicyConfig struct {
	// Enabled controls whether the policy is evaluated at all.
	// Default: true
	Enabled *bool `json:"enabled,omitempty" koanf:"enabled" toml:"enabled,omitempty"`

	// Severity decides whether a violation blocks ("error") or annotates ("warning").
	// The default depends on the policy.
	Severity Severity `json:"severity,omitempty" koanf:"severity" toml:"severity,omitempty"`

	// Message replaces the built-in violation message.
	Message *string `json:"message,omitempty" koanf:"message" toml:"message,omitempty"`
}

// IsEnabled returns true if the policy is enabled.
// Returns true if Enabled is nil (default behavior).
func (c *PolicyConfig) IsEnabled() bool {
	if c == nil || c.Enabled == nil {
		return true
	}

	return *c.Enabled
}

// GetSeverity returns the configured severity or def if unset.
func (c *PolicyConfig) GetSeverity(def Severity) Severity {
	if c == nil || c.Severity == SeverityUnknown {
		return def
	}

	return c.Severity
}

// GetMessage returns the configured message or def if unset or blank.
func (c *PolicyConfig) GetMessage(def string) string {
	if c == nil || c.Message == nil || *c.Message == "" {
		return def
	}

	return *c.Message
}
