package logger

import "log/slog"

//go:generate enumer -type=Level -trimprefix=Level -transform=upper -json -text -yaml
//go:generate go run github.com/smykla-skalski/enforcer/tools/enumerfix level_enumer.go

// Level represents the log level.
type Level int

const (
	// LevelDebug logs every evaluator decision and the raw event.
	LevelDebug Level = iota

	// LevelInfo logs one line per verdict.
	LevelInfo

	// LevelError logs faults only.
	LevelError
)

// slogLevel converts Level to slog.Level.
func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelError
	}
}

// LevelFromFlags determines the log level from the --debug and --trace flags.
func LevelFromFlags(debug, trace bool) Level {
	switch {
	case trace:
		return LevelDebug
	case debug:
		return LevelInfo
	default:
		return LevelError
	}
}
