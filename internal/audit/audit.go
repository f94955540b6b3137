// Package audit records one JSONL line per hook decision.
package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/enforcer/internal/decision"
	"github.com/smykla-skalski/enforcer/internal/xdg"
	"github.com/smykla-skalski/enforcer/pkg/hook"
	"github.com/smykla-skalski/enforcer/pkg/logger"
)

const (
	// fileMode is the permission mode for the audit log file.
	fileMode = 0o600

	// dirMode is the permission mode for the audit directory.
	dirMode = 0o700

	// maxLineSize bounds a single audit line when reading.
	maxLineSize = 1024 * 1024
)

// Entry is a single recorded decision.
type Entry struct {
	// Timestamp is when the decision was made.
	Timestamp time.Time `json:"timestamp"`

	// Kind is the classified event kind.
	Kind string `json:"kind"`

	// Tool is the tool name for tool events.
	Tool string `json:"tool,omitempty"`

	// SessionID is the agent session identifier, if provided.
	SessionID string `json:"session_id,omitempty"`

	// Action is the verdict action.
	Action string `json:"action"`

	// ReasonCodes lists the reason codes of every triggered policy.
	ReasonCodes []string `json:"reason_codes,omitempty"`

	// BlockedBy lists the policies that caused a block.
	BlockedBy []string `json:"blocked_by,omitempty"`

	// Flags lists the metadata flags raised.
	Flags []string `json:"flags,omitempty"`

	// Faults is the number of evaluator faults recorded during dispatch.
	Faults int `json:"faults,omitempty"`
}

// Logger appends decisions to a JSONL file.
type Logger struct {
	mu     sync.Mutex
	path   string
	logger logger.Logger

	// now returns the current time. Replaced in tests.
	now func() time.Time
}

// Option configures the Logger.
type Option func(*Logger)

// WithLogger sets the diagnostic logger.
func WithLogger(log logger.Logger) Option {
	return func(l *Logger) {
		if log != nil {
			l.logger = log
		}
	}
}

// WithTimeFunc sets a custom time function for testing.
func WithTimeFunc(fn func() time.Time) Option {
	return func(l *Logger) {
		if fn != nil {
			l.now = fn
		}
	}
}

// NewLogger creates an audit logger writing to path. An empty path uses the
// default state location. A leading ~ is expanded.
func NewLogger(path string, opts ...Option) *Logger {
	if path == "" {
		path = xdg.AuditLogFile()
	}

	l := &Logger{
		path:   xdg.ExpandPathSilent(path),
		logger: logger.NewNoOpLogger(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Path returns the resolved log file path.
func (l *Logger) Path() string {
	return l.path
}

// NewEntry builds an entry from an event and its verdict.
func (l *Logger) NewEntry(ev *hook.Event, v *decision.Verdict, faults int) *Entry {
	entry := &Entry{
		Timestamp: l.now().UTC(),
		Faults:    faults,
	}

	if ev != nil {
		entry.Kind = ev.Kind.String()
		entry.Tool = ev.ToolName()
		entry.SessionID = ev.SessionID
	}

	if v != nil {
		entry.Action = v.Action.String()
		entry.ReasonCodes = v.ReasonCodes
		entry.BlockedBy = v.BlockedBy
		entry.Flags = v.Flags
	}

	return entry
}

// Record appends the decision for ev to the log.
func (l *Logger) Record(ev *hook.Event, v *decision.Verdict, faults int) error {
	return l.Log(l.NewEntry(ev, v, faults))
}

// Log appends entry to the log file.
func (l *Logger) Log(entry *Entry) error {
	if entry == nil {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "marshaling audit entry")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), dirMode); err != nil {
		return errors.Wrap(err, "creating audit directory")
	}

	//nolint:gosec // G304: path is from config
	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileMode)
	if err != nil {
		return errors.Wrap(err, "opening audit file")
	}

	if _, err := file.Write(append(data, '\n')); err != nil {
		_ = file.Close()

		return errors.Wrap(err, "writing audit entry")
	}

	if err := file.Close(); err != nil {
		return errors.Wrap(err, "closing audit file")
	}

	l.logger.Debug("audit entry logged", "path", l.path, "action", entry.Action)

	return nil
}

// Read returns every entry in the log, oldest first. A missing file yields
// no entries. Malformed lines are skipped.
func (l *Logger) Read() ([]*Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(l.path) //nolint:gosec // G304: path is from config
	if err != nil {
		if os.IsNotExist(err) {
			return []*Entry{}, nil
		}

		return nil, errors.Wrap(err, "opening audit file")
	}

	defer func() {
		_ = file.Close()
	}()

	entries := make([]*Entry, 0)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			l.logger.Debug("skipping malformed audit entry", "error", err.Error())

			continue
		}

		entries = append(entries, &entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning audit file")
	}

	return entries, nil
}

// Recent returns at most n of the newest entries, newest first. A
// non-positive n returns all entries.
func (l *Logger) Recent(n int) ([]*Entry, error) {
	entries, err := l.Read()
	if err != nil {
		return nil, err
	}

	out := make([]*Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if n > 0 && len(out) == n {
			break
		}

		out = append(out, entries[i])
	}

	return out, nil
}
