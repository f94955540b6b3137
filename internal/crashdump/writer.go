package crashdump

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

const (
	// FilePerm is the mode of dump files.
	FilePerm fs.FileMode = 0o600

	// DirPerm is the mode of the dump directory.
	DirPerm fs.FileMode = 0o700

	// FileExtension is appended to the dump ID to form its file name.
	FileExtension = ".json"

	tempPattern = ".crash-*.tmp"
)

var (
	// ErrWriteFailed is returned when a dump could not be persisted.
	ErrWriteFailed = errors.New("failed to write crash dump")

	// ErrInvalidDumpDir is returned when the dump directory is unusable.
	ErrInvalidDumpDir = errors.New("invalid dump directory")
)

// Writer persists a dump and returns where it was written.
type Writer interface {
	Write(info *CrashInfo) (string, error)
}

// Write stores info as <dir>/<id>.json. The file appears atomically: it is
// written to a temp file in the same directory and renamed into place.
func (s *FilesystemStorage) Write(info *CrashInfo) (path string, err error) {
	if info == nil {
		return "", errors.Wrap(ErrWriteFailed, "crash info is nil")
	}

	if _, err := s.pathFor(info.ID); err != nil {
		return "", errors.Wrapf(ErrWriteFailed, "invalid ID %q", info.ID)
	}

	if err := os.MkdirAll(s.dir, DirPerm); err != nil {
		return "", errors.Wrap(ErrInvalidDumpDir, err.Error())
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", errors.Wrap(ErrWriteFailed, "failed to marshal crash info")
	}

	tmp, err := os.CreateTemp(s.dir, tempPattern)
	if err != nil {
		return "", errors.Wrap(ErrWriteFailed, err.Error())
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(FilePerm); err != nil {
		return "", errors.Wrap(ErrWriteFailed, err.Error())
	}

	if _, err := tmp.Write(data); err != nil {
		return "", errors.Wrap(ErrWriteFailed, err.Error())
	}

	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(ErrWriteFailed, err.Error())
	}

	path = filepath.Join(s.dir, info.ID+FileExtension)

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", errors.Wrap(ErrWriteFailed, err.Error())
	}

	return path, nil
}
