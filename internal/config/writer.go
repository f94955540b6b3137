// Package config provides internal configuration loading and processing.
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"

	"github.com/smykla-skalski/enforcer/internal/schema"
	"github.com/smykla-skalski/enforcer/internal/xdg"
	"github.com/smykla-skalski/enforcer/pkg/config"
)

const (
	// ConfigFileMode is the file mode for configuration files (user read/write only).
	ConfigFileMode = 0o600

	// ConfigDirMode is the file mode for configuration directories (user rwx only).
	ConfigDirMode = 0o700
)

// ErrConfigExists is returned when a config file would be overwritten.
var ErrConfigExists = errors.New("configuration file already exists")

const configHeader = `# enforcer configuration.
#
# Severity "error" blocks the event, "warning" lets it through with an
# annotation. Lists extend the built-in vocabulary. Settings may be overridden
# with ENFORCER_* environment variables, for example
# ENFORCER_POLICIES_BYPASS_SEVERITY=warning.
`

// Writer handles writing configuration to TOML files.
type Writer struct {
	resolver xdg.PathResolver
	workDir  string
}

// NewWriter creates a new Writer for the current directory.
func NewWriter() (*Writer, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get working directory")
	}

	return &Writer{resolver: xdg.DefaultResolver(), workDir: workDir}, nil
}

// NewWriterWithDirs creates a new Writer with custom directories (for testing).
func NewWriterWithDirs(homeDir, workDir string) *Writer {
	return &Writer{resolver: xdg.ResolverFor(homeDir), workDir: workDir}
}

// WriteGlobal writes the configuration to the global config file.
func (w *Writer) WriteGlobal(cfg *config.Config, force bool) (string, error) {
	path := w.GlobalConfigPath()

	return path, w.write(path, cfg, force)
}

// WriteProject writes the configuration to .enforcer/config.toml.
func (w *Writer) WriteProject(cfg *config.Config, force bool) (string, error) {
	path := w.ProjectConfigPath()

	return path, w.write(path, cfg, force)
}

func (w *Writer) write(path string, cfg *config.Config, force bool) error {
	if !force && fileExists(path) {
		return errors.Wrapf(ErrConfigExists, "%s (use --force to overwrite)", path)
	}

	return w.WriteFile(path, cfg)
}

// WriteFile writes the configuration to the given path.
func (*Writer) WriteFile(path string, cfg *config.Config) error {
	if cfg == nil {
		return errors.Wrap(ErrInvalidConfig, "config is nil")
	}

	data, err := Encode(cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, ConfigDirMode); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}

	if err := os.WriteFile(path, data, ConfigFileMode); err != nil {
		return errors.Wrapf(err, "failed to write config file %s", path)
	}

	return nil
}

// Encode renders the configuration as commented TOML.
func Encode(cfg *config.Config) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(schema.SchemaDirective())
	buf.WriteByte('\n')
	buf.WriteString(configHeader)
	buf.WriteByte('\n')

	encoder := toml.NewEncoder(&buf)
	encoder.SetIndentTables(true)

	if err := encoder.Encode(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to encode config to TOML")
	}

	return buf.Bytes(), nil
}

// GlobalConfigPath returns the path to the global configuration file.
func (w *Writer) GlobalConfigPath() string {
	return w.resolver.GlobalConfigFile()
}

// ProjectConfigPath returns the path to the primary project configuration file.
func (w *Writer) ProjectConfigPath() string {
	return filepath.Join(w.workDir, ProjectConfigDir, ProjectConfigFile)
}
