package main

import (
	"github.com/cockroachdb/errors"

	internalconfig "github.com/smykla-skalski/enforcer/internal/config"
	"github.com/smykla-skalski/enforcer/internal/xdg"
	"github.com/smykla-skalski/enforcer/pkg/config"
	"github.com/smykla-skalski/enforcer/pkg/logger"
)

// openLogger opens the log file. Logging is optional: when the file cannot be
// opened a no-op logger is returned.
//
//nolint:ireturn // callers only depend on the interface
func openLogger() (logger.Logger, func() error) {
	return logger.Open(xdg.LogFile(), logger.LevelFromFlags(debugMode, traceMode))
}

// buildFlagsMap converts CLI flags to a map for the config provider.
func buildFlagsMap() map[string]any {
	flags := make(map[string]any)

	if len(disableList) > 0 {
		flags[internalconfig.FlagDisable] = disableList
	}

	if auditLogFlag != "" {
		flags[internalconfig.FlagAuditLog] = auditLogFlag
	}

	return flags
}

// loadConfig loads configuration from all sources with precedence.
func loadConfig(log logger.Logger) (*config.Config, error) {
	loader, err := internalconfig.NewKoanfLoader()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create config loader")
	}

	cfg, err := loader.Load(buildFlagsMap())
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}

	log.Debug("configuration loaded",
		"global", loader.HasGlobalConfig(),
		"project", loader.FindProjectConfigPath(),
	)

	return cfg, nil
}

// setupCommand opens the logger and loads configuration for a subcommand.
func setupCommand(name string) (*config.Config, logger.Logger, func() error, error) {
	log, closeLog := openLogger()
	log.Info(name + " command invoked")

	cfg, err := loadConfig(log)
	if err != nil {
		_ = closeLog()

		return nil, nil, nil, err
	}

	return cfg, log, closeLog, nil
}
