package config

const (
	// DefaultMinCapabilities is the number of distinct capability nouns that
	// make an operation complex.
	DefaultMinCapabilities = 2

	// DefaultMinEditUnits is the number of edit units that make an operation complex.
	DefaultMinEditUnits = 2
)

// PoliciesConfig groups all policy configurations.
type PoliciesConfig struct {
	// Implementation configures the implementation-request detector.
	Implementation *ImplementationPolicyConfig `json:"implementation,omitempty" koanf:"implementation" toml:"implementation,omitempty"`

	// TodoTracking configures the task-tracking detector.
	TodoTracking *TodoTrackingPolicyConfig `json:"todo_tracking,omitempty" koanf:"todo_tracking" toml:"todo_tracking,omitempty"`

	// Bypass configures the research-bypass detector.
	Bypass *BypassPolicyConfig `json:"bypass,omitempty" koanf:"bypass" toml:"bypass,omitempty"`
}

// GetImplementation returns the implementation policy config, creating it if it doesn't exist.
func (p *PoliciesConfig) GetImplementation() *ImplementationPolicyConfig {
	if p.Implementation == nil {
		p.Implementation = &ImplementationPolicyConfig{}
	}

	return p.Implementation
}

// GetTodoTracking returns the todo tracking policy config, creating it if it doesn't exist.
func (p *PoliciesConfig) GetTodoTracking() *TodoTrackingPolicyConfig {
	if p.TodoTracking == nil {
		p.TodoTracking = &TodoTrackingPolicyConfig{}
	}

	return p.TodoTracking
}

// GetBypass returns the bypass policy config, creating it if it doesn't exist.
func (p *PoliciesConfig) GetBypass() *BypassPolicyConfig {
	if p.Bypass == nil {
		p.Bypass = &BypassPolicyConfig{}
	}

	return p.Bypass
}

// ImplementationPolicyConfig configures detection of implementation requests in prompts.
//
// Example configuration:
//
//	[policies.implementation]
//	severity = "warning"
//	extra_keywords = ["scaffold", "andamiar"]
//	override_phrases = ["task tool", "agent", "subagent"]
type ImplementationPolicyConfig struct {
	PolicyConfig `koanf:",squash"`

	// ExtraKeywords extends the built-in implementation-intent vocabulary.
	ExtraKeywords []string `json:"extra_keywords,omitempty" koanf:"extra_keywords" toml:"extra_keywords,omitempty"`

	// OverridePhrases extends the phrases that signal the user already delegates work.
	OverridePhrases []string `json:"override_phrases,omitempty" koanf:"override_phrases" toml:"override_phrases,omitempty"`
}

// TodoTrackingPolicyConfig configures detection of complex edits without task tracking.
type TodoTrackingPolicyConfig struct {
	PolicyConfig `koanf:",squash"`

	// TrackingMarkers extends the phrases that show task tracking is in use.
	TrackingMarkers []string `json:"tracking_markers,omitempty" koanf:"tracking_markers" toml:"tracking_markers,omitempty"`

	// CapabilityNouns extends the nouns counted by the complexity heuristic.
	CapabilityNouns []string `json:"capability_nouns,omitempty" koanf:"capability_nouns" toml:"capability_nouns,omitempty"`

	// MinCapabilities is the number of distinct capability nouns that make an operation complex.
	// Default: 2
	MinCapabilities *int `json:"min_capabilities,omitempty" koanf:"min_capabilities" toml:"min_capabilities,omitempty"`

	// MinEditUnits is the number of edit units that make an operation complex.
	// Default: 2
	MinEditUnits *int `json:"min_edit_units,omitempty" koanf:"min_edit_units" toml:"min_edit_units,omitempty"`
}

// GetMinCapabilities returns the capability threshold, using default if not set.
func (c *TodoTrackingPolicyConfig) GetMinCapabilities() int {
	if c == nil || c.MinCapabilities == nil {
		return DefaultMinCapabilities
	}

	return *c.MinCapabilities
}

// GetMinEditUnits returns the edit unit threshold, using default if not set.
func (c *TodoTrackingPolicyConfig) GetMinEditUnits() int {
	if c == nil || c.MinEditUnits == nil {
		return DefaultMinEditUnits
	}

	return *c.MinEditUnits
}

// BypassPolicyConfig configures detection of writes made without prior research.
//
// Example configuration:
//
//	[policies.bypass]
//	severity = "error"
//	evidence_markers = ["read the docs"]
//	exempt_paths = ["**/*.md", "**/testdata/**"]
type BypassPolicyConfig struct {
	PolicyConfig `koanf:",squash"`

	// EvidenceMarkers extends the phrases that count as research evidence.
	EvidenceMarkers []string `json:"evidence_markers,omitempty" koanf:"evidence_markers" toml:"evidence_markers,omitempty"`

	// EvidenceFields extends the top-level input fields that carry research evidence.
	EvidenceFields []string `json:"evidence_fields,omitempty" koanf:"evidence_fields" toml:"evidence_fields,omitempty"`

	// ExemptPaths are doublestar globs for files that may be written without evidence.
	ExemptPaths []string `json:"exempt_paths,omitempty" koanf:"exempt_paths" toml:"exempt_paths,omitempty"`

	// CheckBashWrites extends the policy to Bash commands that write files.
	// Default: false
	CheckBashWrites *bool `json:"check_bash_writes,omitempty" koanf:"check_bash_writes" toml:"check_bash_writes,omitempty"`
}

// IsCheckBashWrites returns whether Bash file writes are checked.
func (c *BypassPolicyConfig) IsCheckBashWrites() bool {
	if c == nil || c.CheckBashWrites == nil {
		return false
	}

	return *c.CheckBashWrites
}
