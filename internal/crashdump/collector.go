package crashdump

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/user"
	"runtime"
	"runtime/debug"
	"slices"
	"time"

	"github.com/smykla-skalski/enforcer/pkg/config"
	"github.com/smykla-skalski/enforcer/pkg/hook"
)

const (
	// shortIDLength is the length of the short ID suffix.
	shortIDLength = 8

	// panicNilStr is the string representation of panic(nil).
	panicNilStr = "panic(nil)"
)

// formatPanicValue converts a recovered panic value to a string.
func formatPanicValue(v any) string {
	if v == nil {
		return panicNilStr
	}

	// Go 1.21+ converts panic(nil) to *runtime.PanicNilError
	type panicNilError interface {
		error
		RuntimeError()
	}

	if _, ok := v.(panicNilError); ok {
		return panicNilStr
	}

	if err, ok := v.(error); ok {
		return err.Error()
	}

	return fmt.Sprintf("%v", v)
}

// Collector collects crash diagnostic information.
type Collector interface {
	// Collect gathers crash information from a recovered panic.
	Collect(recovered any, ev *hook.Event, cfg *config.Config) *CrashInfo
}

// DefaultCollector is the default crash info collector.
type DefaultCollector struct {
	// Version is the enforcer version.
	Version string

	sanitizer    *Sanitizer
	includeEvent bool
	now          func() time.Time
}

// CollectorOption configures the DefaultCollector.
type CollectorOption func(*DefaultCollector)

// WithoutEvent leaves the event out of collected dumps.
func WithoutEvent() CollectorOption {
	return func(c *DefaultCollector) {
		c.includeEvent = false
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) CollectorOption {
	return func(c *DefaultCollector) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCollector creates a new crash info collector.
func NewCollector(version string, opts ...CollectorOption) *DefaultCollector {
	c := &DefaultCollector{
		Version:      version,
		sanitizer:    NewSanitizer(),
		includeEvent: true,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Collect gathers crash information from a recovered panic.
func (c *DefaultCollector) Collect(recovered any, ev *hook.Event, cfg *config.Config) *CrashInfo {
	now := c.now()
	panicValue := formatPanicValue(recovered)

	info := &CrashInfo{
		ID:         generateCrashID(now, panicValue),
		Timestamp:  now,
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Runtime:    collectRuntime(),
		Metadata:   c.collectMetadata(),
	}

	if ev != nil && c.includeEvent {
		info.Event = c.collectEvent(ev)
	}

	if cfg != nil {
		info.Config = c.sanitizer.SanitizeConfig(cfg)
	}

	return info
}

func collectRuntime() RuntimeInfo {
	return RuntimeInfo{
		GOOS:         runtime.GOOS,
		GOARCH:       runtime.GOARCH,
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
	}
}

func (c *DefaultCollector) collectEvent(ev *hook.Event) *EventInfo {
	fields := make([]string, 0, len(ev.Fields))
	for name := range ev.Fields {
		fields = append(fields, name)
	}

	slices.Sort(fields)

	return &EventInfo{
		Kind:      ev.Kind.String(),
		Tool:      ev.ToolName(),
		FilePath:  ev.GetFilePath(),
		Command:   c.sanitizer.SanitizeText(ev.GetCommand()),
		Prompt:    c.sanitizer.SanitizeText(ev.Prompt),
		SessionID: ev.SessionID,
		Fields:    fields,
	}
}

func (c *DefaultCollector) collectMetadata() DumpMetadata {
	meta := DumpMetadata{
		Version: c.Version,
	}

	if u, err := user.Current(); err == nil {
		meta.User = u.Username
	}

	if hostname, err := os.Hostname(); err == nil {
		meta.Hostname = hostname
	}

	if wd, err := os.Getwd(); err == nil {
		meta.WorkingDir = wd
	}

	return meta
}

// generateCrashID returns crash-{timestamp}-{shortHash}.
func generateCrashID(timestamp time.Time, panicValue string) string {
	data := fmt.Sprintf("%d-%s", timestamp.UnixNano(), panicValue)
	hash := sha256.Sum256([]byte(data))
	shortHash := hex.EncodeToString(hash[:])[:shortIDLength]

	return fmt.Sprintf("crash-%s-%s", timestamp.UTC().Format("20060102T150405"), shortHash)
}
