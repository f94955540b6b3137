// Package crashdump captures diagnostic dumps when the hook panics.
package crashdump

import "time"

// CrashInfo is the full content of one crash dump.
type CrashInfo struct {
	// ID is the unique dump identifier (crash-{timestamp}-{hash}).
	ID string `json:"id"`

	// Timestamp is when the panic was recovered.
	Timestamp time.Time `json:"timestamp"`

	// PanicValue is the string form of the recovered value.
	PanicValue string `json:"panic_value"`

	// StackTrace is the stack of the panicking goroutine.
	StackTrace string `json:"stack_trace"`

	// Runtime describes the Go runtime.
	Runtime RuntimeInfo `json:"runtime"`

	// Event describes the event being evaluated, if one was decoded.
	Event *EventInfo `json:"event,omitempty"`

	// Config is the sanitized configuration snapshot.
	Config map[string]any `json:"config,omitempty"`

	// Metadata holds host and version details.
	Metadata DumpMetadata `json:"metadata"`
}

// RuntimeInfo describes the Go runtime at crash time.
type RuntimeInfo struct {
	GOOS         string `json:"goos"`
	GOARCH       string `json:"goarch"`
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
}

// EventInfo is the sanitized view of the event being evaluated.
type EventInfo struct {
	Kind      string   `json:"kind"`
	Tool      string   `json:"tool,omitempty"`
	FilePath  string   `json:"file_path,omitempty"`
	Command   string   `json:"command,omitempty"`
	Prompt    string   `json:"prompt,omitempty"`
	SessionID string   `json:"session_id,omitempty"`
	Fields    []string `json:"fields,omitempty"`
}

// DumpMetadata holds host and version details.
type DumpMetadata struct {
	Version    string `json:"version"`
	User       string `json:"user,omitempty"`
	Hostname   string `json:"hostname,omitempty"`
	WorkingDir string `json:"working_dir,omitempty"`
}

// DumpSummary is a short listing entry for a stored dump.
type DumpSummary struct {
	ID         string
	Timestamp  time.Time
	PanicValue string
	EventKind  string
	FilePath   string
	Size       int64
}
