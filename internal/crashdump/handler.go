package crashdump

import (
	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/enforcer/internal/xdg"
	"github.com/smykla-skalski/enforcer/pkg/config"
	"github.com/smykla-skalski/enforcer/pkg/hook"
)

// ErrDisabled is returned by Handle when crash dumps are disabled.
var ErrDisabled = errors.New("crash dumps disabled")

// Handle writes a crash dump for a recovered panic and prunes the dump
// directory to the configured retention. cfg and ev may be nil.
func Handle(version string, recovered any, ev *hook.Event, cfg *config.Config) (string, error) {
	var crashCfg *config.CrashDumpConfig
	if cfg != nil {
		crashCfg = cfg.CrashDump
	}

	if !crashCfg.IsEnabled() {
		return "", ErrDisabled
	}

	dumpDir := crashCfg.GetDumpDir(xdg.CrashDumpDir())

	var opts []CollectorOption
	if !crashCfg.IsIncludeEvent() {
		opts = append(opts, WithoutEvent())
	}

	info := NewCollector(version, opts...).Collect(recovered, ev, cfg)

	storage, err := NewFilesystemStorage(dumpDir)
	if err != nil {
		return "", err
	}

	path, err := storage.Write(info)
	if err != nil {
		return "", err
	}

	_, _ = storage.Prune(crashCfg.GetRetention())

	return path, nil
}
