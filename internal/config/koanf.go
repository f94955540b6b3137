// Package config provides internal configuration loading and processing.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	tomlparser "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/smykla-skalski/enforcer/internal/xdg"
	"github.com/smykla-skalski/enforcer/pkg/config"
)

var (
	// ErrInvalidTOML is returned when the TOML file cannot be parsed.
	ErrInvalidTOML = errors.New("invalid TOML")

	// ErrInvalidPermissions is returned when config file has insecure permissions.
	ErrInvalidPermissions = errors.New("config file has insecure permissions")
)

const (
	// EnvPrefix is the prefix of environment variables read by the loader.
	EnvPrefix = "ENFORCER_"

	// ProjectConfigDir is the directory name for project configuration.
	ProjectConfigDir = ".enforcer"

	// ProjectConfigFile is the primary project configuration file name.
	ProjectConfigFile = "config.toml"

	// ProjectConfigFileAlt is the alternative project configuration file name.
	ProjectConfigFileAlt = "enforcer.toml"
)

// Flag keys understood by Load.
const (
	FlagDisable  = "disable"
	FlagAuditLog = "audit-log"
)

// KoanfLoader handles configuration loading from multiple sources using koanf.
// Precedence order (highest to lowest):
// 1. CLI Flags
// 2. Environment Variables (ENFORCER_*)
// 3. Project Config (.enforcer/config.toml or enforcer.toml)
// 4. Global Config ($XDG_CONFIG_HOME/enforcer/config.toml)
// 5. Defaults
type KoanfLoader struct {
	k        *koanf.Koanf
	resolver xdg.PathResolver
	workDir  string
}

// NewKoanfLoader creates a new KoanfLoader for the current directory.
func NewKoanfLoader() (*KoanfLoader, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get working directory")
	}

	return &KoanfLoader{
		k:        koanf.New("."),
		resolver: xdg.DefaultResolver(),
		workDir:  workDir,
	}, nil
}

// NewKoanfLoaderWithDirs creates a new KoanfLoader with custom directories (for testing).
func NewKoanfLoaderWithDirs(homeDir, workDir string) *KoanfLoader {
	return &KoanfLoader{
		k:        koanf.New("."),
		resolver: xdg.ResolverFor(homeDir),
		workDir:  workDir,
	}
}

// Load loads configuration from all sources and validates it.
func (l *KoanfLoader) Load(flags map[string]any) (*config.Config, error) {
	cfg, err := l.LoadWithoutValidation(flags)
	if err != nil {
		return nil, err
	}

	if err := NewValidator().Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}

// LoadWithoutValidation loads configuration without running validation.
// Defaults → Global TOML → Project TOML → Env Vars → CLI Flags
func (l *KoanfLoader) LoadWithoutValidation(flags map[string]any) (*config.Config, error) {
	l.k = koanf.New(".")

	if err := l.k.Load(confmap.Provider(defaultsToMap(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load defaults")
	}

	if err := l.loadTOMLFile(l.GlobalConfigPath()); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load global config")
	}

	if projectPath := l.findProjectConfig(); projectPath != "" {
		if err := l.loadTOMLFile(projectPath); err != nil {
			return nil, errors.Wrap(err, "failed to load project config")
		}
	}

	envOpt := env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: l.envTransform,
	}

	if err := l.k.Load(env.Provider(".", envOpt), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load env vars")
	}

	if len(flags) > 0 {
		if err := l.k.Load(confmap.Provider(l.flagsToConfig(flags), "."), nil); err != nil {
			return nil, errors.Wrap(err, "failed to load flags")
		}
	}

	var cfg config.Config
	if err := l.k.UnmarshalWithConf("", &cfg, unmarshalConf(&cfg)); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	return &cfg, nil
}

// loadTOMLFile loads a TOML configuration file with security checks.
func (l *KoanfLoader) loadTOMLFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if info.Mode().Perm()&0o002 != 0 {
		return errors.Wrapf(
			ErrInvalidPermissions,
			"%s is world-writable (mode: %s)",
			path,
			info.Mode().Perm(),
		)
	}

	if err := l.k.Load(file.Provider(path), tomlparser.Parser()); err != nil {
		return errors.Wrapf(errors.CombineErrors(ErrInvalidTOML, err), "%s", path)
	}

	return nil
}

// envTransform maps ENFORCER_POLICIES_TODO_TRACKING_MIN_EDIT_UNITS to
// policies.todo_tracking.min_edit_units. Underscores are ambiguous, so the
// variable is matched against known keys first. List values are comma-separated.
func (l *KoanfLoader) envTransform(key, value string) (string, any) {
	flat := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))

	path := strings.ReplaceAll(flat, "_", ".")

	for _, known := range l.k.Keys() {
		if strings.ReplaceAll(known, ".", "_") == flat {
			path = known

			break
		}
	}

	if _, isList := l.k.Get(path).([]any); isList || slices.Contains(listKeys, path) {
		return path, splitList(value)
	}

	return path, value
}

// listKeys are the keys holding string lists.
var listKeys = []string{
	"global.disabled_policies",
	"policies.implementation.extra_keywords",
	"policies.implementation.override_phrases",
	"policies.todo_tracking.tracking_markers",
	"policies.todo_tracking.capability_nouns",
	"policies.bypass.evidence_markers",
	"policies.bypass.evidence_fields",
	"policies.bypass.exempt_paths",
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}

	return result
}

// GlobalConfigPath returns the path to the global configuration file.
func (l *KoanfLoader) GlobalConfigPath() string {
	return l.resolver.GlobalConfigFile()
}

// ProjectConfigPaths returns the paths to check for project configuration.
func (l *KoanfLoader) ProjectConfigPaths() []string {
	return []string{
		filepath.Join(l.workDir, ProjectConfigDir, ProjectConfigFile),
		filepath.Join(l.workDir, ProjectConfigFileAlt),
	}
}

// findProjectConfig checks for project config files and returns the first found.
func (l *KoanfLoader) findProjectConfig() string {
	for _, path := range l.ProjectConfigPaths() {
		if fileExists(path) {
			return path
		}
	}

	return ""
}

// HasGlobalConfig checks if a global configuration file exists.
func (l *KoanfLoader) HasGlobalConfig() bool {
	return fileExists(l.GlobalConfigPath())
}

// FindProjectConfigPath returns the path to the project config file if one exists.
func (l *KoanfLoader) FindProjectConfigPath() string {
	return l.findProjectConfig()
}

// flagsToConfig converts CLI flags to a configuration map.
func (l *KoanfLoader) flagsToConfig(flags map[string]any) map[string]any {
	result := make(map[string]any)

	for key, value := range flags {
		switch key {
		case FlagDisable:
			names, ok := value.([]string)
			if !ok || len(names) == 0 {
				continue
			}

			disabled := l.k.Strings("global.disabled_policies")
			for _, name := range names {
				if name = strings.TrimSpace(name); name != "" && !slices.Contains(disabled, name) {
					disabled = append(disabled, name)
				}
			}

			ensureMapKey(result, "global")["disabled_policies"] = disabled

		case FlagAuditLog:
			if path, ok := value.(string); ok && path != "" {
				audit := ensureMapKey(result, "audit")
				audit["enabled"] = true
				audit["log_file"] = path
			}
		}
	}

	return result
}

// ensureMapKey ensures a key exists as a map and returns it.
func ensureMapKey(cfg map[string]any, key string) map[string]any {
	if _, ok := cfg[key]; !ok {
		cfg[key] = make(map[string]any)
	}

	result, _ := cfg[key].(map[string]any)

	return result
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return !info.IsDir()
}
