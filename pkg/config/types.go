package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

//go:generate enumer -type=Severity -trimprefix=Severity -transform=lower -json -text -yaml
//go:generate go run github.com/smykla-skalski/enforcer/tools/enumerfix severity_enumer.go

var (
	// ErrInvalidSeverity is returned when an invalid severity value is provided.
	ErrInvalidSeverity = errors.New("invalid severity")

	// ErrNegativeDuration is returned when a negative duration is provided.
	ErrNegativeDuration = errors.New("duration must be non-negative")
)

// Severity classifies a policy violation as hard or soft.
type Severity int

const (
	// SeverityUnknown means the severity was not configured.
	SeverityUnknown Severity = iota

	// SeverityError marks a hard violation: the event is blocked.
	SeverityError

	// SeverityWarning marks a soft violation: the event proceeds with an annotation.
	SeverityWarning
)

// Violation classes reported for a severity.
const (
	ViolationHard = "hard"
	ViolationSoft = "soft"
)

// ShouldBlock returns true if a violation of this severity blocks the event.
func (s Severity) ShouldBlock() bool {
	return s == SeverityError
}

// Violation returns ViolationHard for SeverityError and ViolationSoft
// otherwise. Unknown severities never block, so they count as soft.
func (s Severity) Violation() string {
	if s.ShouldBlock() {
		return ViolationHard
	}

	return ViolationSoft
}

// ParseSeverity parses "error" or "warning", ignoring case and surrounding
// whitespace.
func ParseSeverity(s string) (Severity, error) {
	severity, err := SeverityString(strings.TrimSpace(s))
	if err != nil || severity == SeverityUnknown {
		return SeverityUnknown, errors.Wrapf(
			ErrInvalidSeverity,
			"%q, must be %q or %q",
			s,
			SeverityError.String(),
			SeverityWarning.String(),
		)
	}

	return severity, nil
}

// Duration wraps time.Duration so it can be written as "720h" in TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(err, "invalid duration")
	}

	if dur < 0 {
		return errors.Wrapf(ErrNegativeDuration, "got %s", dur)
	}

	*d = Duration(dur)

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// ToDuration converts Duration to time.Duration.
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}
