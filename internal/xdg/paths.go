// Package xdg provides path management following XDG Base Directory conventions.
// All user-level paths enforcer touches on disk are defined here. Project-local
// paths (.enforcer/config.toml, enforcer.toml) live in internal/config.
package xdg

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

const appName = "enforcer"

// Environment variables overriding individual paths.
const (
	EnvLogFile      = "ENFORCER_LOG_FILE"
	EnvAuditLogFile = "ENFORCER_AUDIT_LOG_FILE"
)

func userHome() (string, error) {
	return os.UserHomeDir()
}

// baseDir returns the value of env or home joined with fallback.
func baseDir(env string, fallback ...string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}

	home, err := userHome()
	if err != nil {
		home = "~"
	}

	return filepath.Join(append([]string{home}, fallback...)...)
}

// ConfigHome returns $XDG_CONFIG_HOME or ~/.config.
func ConfigHome() string {
	return baseDir("XDG_CONFIG_HOME", ".config")
}

// DataHome returns $XDG_DATA_HOME or ~/.local/share.
func DataHome() string {
	return baseDir("XDG_DATA_HOME", ".local", "share")
}

// StateHome returns $XDG_STATE_HOME or ~/.local/state.
func StateHome() string {
	return baseDir("XDG_STATE_HOME", ".local", "state")
}

// ConfigDir returns ConfigHome()/enforcer.
func ConfigDir() string {
	return filepath.Join(ConfigHome(), appName)
}

// DataDir returns DataHome()/enforcer.
func DataDir() string {
	return filepath.Join(DataHome(), appName)
}

// StateDir returns StateHome()/enforcer.
func StateDir() string {
	return filepath.Join(StateHome(), appName)
}

// GlobalConfigFile returns ConfigDir()/config.toml.
func GlobalConfigFile() string {
	return filepath.Join(ConfigDir(), configFileName)
}

// LogFile returns ENFORCER_LOG_FILE or StateDir()/enforcer.log.
func LogFile() string {
	if v := os.Getenv(EnvLogFile); v != "" {
		return v
	}

	return filepath.Join(StateDir(), "enforcer.log")
}

// AuditLogFile returns ENFORCER_AUDIT_LOG_FILE or StateDir()/decisions.jsonl.
func AuditLogFile() string {
	if v := os.Getenv(EnvAuditLogFile); v != "" {
		return v
	}

	return filepath.Join(StateDir(), "decisions.jsonl")
}

// CrashDumpDir returns DataDir()/crash_dumps.
func CrashDumpDir() string {
	return filepath.Join(DataDir(), "crash_dumps")
}

// ExpandPath resolves a ~ prefix to the user's home directory.
// Returns error for invalid tilde usage like "~foo".
func ExpandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	home, err := userHome()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}

	switch {
	case path == "~":
		return home, nil
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(home, path[2:]), nil
	default:
		return "", errors.Newf("paths starting with ~ must be either ~ or ~/subdir, got %q", path)
	}
}

// ExpandPathSilent resolves a ~ prefix, returning the original path on error.
func ExpandPathSilent(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}

	return expanded
}

// EnsureDir creates a directory with 0700 permissions if it doesn't exist,
// and tightens permissions on existing directories.
func EnsureDir(path string) error {
	const dirMode = 0o700

	if err := os.MkdirAll(path, dirMode); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "failed to stat directory %s", path)
	}

	if info.Mode().Perm() != dirMode {
		if err := os.Chmod(path, dirMode); err != nil {
			return errors.Wrapf(err, "failed to set permissions on %s", path)
		}
	}

	return nil
}
