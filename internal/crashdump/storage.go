package crashdump

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/enforcer/internal/xdg"
	"github.com/smykla-skalski/enforcer/pkg/config"
)

const summaryPanicLimit = 80

// ErrDumpNotFound is returned when no dump with the requested ID is stored.
var ErrDumpNotFound = errors.New("crash dump not found")

// Storage reads and prunes stored dumps.
type Storage interface {
	// List returns dump summaries, newest first.
	List() ([]DumpSummary, error)
	Get(id string) (*CrashInfo, error)
	Delete(id string) error

	// Prune deletes dumps outside the retention policy and returns how many
	// were deleted.
	Prune(retention config.Retention) (int, error)
	Dir() string
}

// FilesystemStorage stores one JSON file per dump in a directory.
type FilesystemStorage struct {
	dir string
	now func() time.Time
}

// NewFilesystemStorage returns storage rooted at dir. A leading ~ is expanded.
func NewFilesystemStorage(dir string) (*FilesystemStorage, error) {
	if dir == "" {
		return nil, errors.Wrap(ErrInvalidDumpDir, "dump directory cannot be empty")
	}

	expanded, err := xdg.ExpandPath(dir)
	if err != nil {
		return nil, err
	}

	return &FilesystemStorage{dir: expanded, now: time.Now}, nil
}

// Dir returns the resolved dump directory.
func (s *FilesystemStorage) Dir() string {
	return s.dir
}

// Exists reports whether the dump directory has been created.
func (s *FilesystemStorage) Exists() bool {
	info, err := os.Stat(s.dir)

	return err == nil && info.IsDir()
}

// List returns dump summaries, newest first. Files that do not decode as a
// dump are ignored.
func (s *FilesystemStorage) List() ([]DumpSummary, error) {
	if !s.Exists() {
		return []DumpSummary{}, nil
	}

	names, err := doublestar.Glob(os.DirFS(s.dir), "*"+FileExtension, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrap(err, "failed to read dump directory")
	}

	summaries := make([]DumpSummary, 0, len(names))

	for _, name := range names {
		summary, err := s.summarize(name)
		if err != nil {
			continue
		}

		summaries = append(summaries, summary)
	}

	slices.SortFunc(summaries, func(a, b DumpSummary) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	return summaries, nil
}

func (s *FilesystemStorage) summarize(name string) (DumpSummary, error) {
	path := filepath.Join(s.dir, name)

	info, err := readDump(path)
	if err != nil {
		return DumpSummary{}, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return DumpSummary{}, errors.Wrap(err, "failed to stat dump file")
	}

	summary := DumpSummary{
		ID:         info.ID,
		Timestamp:  info.Timestamp,
		PanicValue: truncate(info.PanicValue, summaryPanicLimit),
		FilePath:   path,
		Size:       stat.Size(),
	}

	if info.Event != nil {
		summary.EventKind = info.Event.Kind
	}

	return summary, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}

// Get loads the dump with the given ID.
func (s *FilesystemStorage) Get(id string) (*CrashInfo, error) {
	path, err := s.pathFor(id)
	if err != nil {
		return nil, err
	}

	return readDump(path)
}

// Delete removes the dump with the given ID.
func (s *FilesystemStorage) Delete(id string) error {
	path, err := s.pathFor(id)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(ErrDumpNotFound, "ID: %s", id)
		}

		return errors.Wrap(err, "failed to delete dump file")
	}

	return nil
}

// pathFor maps an ID to its file, rejecting IDs that would escape the
// directory.
func (s *FilesystemStorage) pathFor(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", errors.Wrapf(ErrDumpNotFound, "ID: %s", id)
	}

	return filepath.Join(s.dir, id+FileExtension), nil
}

func readDump(path string) (*CrashInfo, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is inside the dump dir
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrDumpNotFound, "file: %s", path)
		}

		return nil, errors.Wrap(err, "failed to read dump file")
	}

	var info CrashInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, errors.Wrap(err, "failed to decode dump file")
	}

	return &info, nil
}

// Removable selects the dumps outside retention from summaries sorted newest
// first: those older than MaxAge and those past the newest MaxDumps. Zero
// limits keep everything.
func Removable(summaries []DumpSummary, retention config.Retention, now time.Time) []DumpSummary {
	out := make([]DumpSummary, 0)

	for i, summary := range summaries {
		expired := retention.MaxAge > 0 && now.Sub(summary.Timestamp) > retention.MaxAge
		surplus := retention.MaxDumps > 0 && i >= retention.MaxDumps

		if expired || surplus {
			out = append(out, summary)
		}
	}

	return out
}

// Prune deletes the dumps Removable selects. Dumps that cannot be deleted are
// skipped.
func (s *FilesystemStorage) Prune(retention config.Retention) (int, error) {
	summaries, err := s.List()
	if err != nil {
		return 0, err
	}

	removed := 0

	for _, summary := range Removable(summaries, retention, s.now()) {
		if s.Delete(summary.ID) == nil {
			removed++
		}
	}

	return removed, nil
}
