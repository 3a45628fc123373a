package results

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/lucasnoah/deliverynote/internal/kind"
)

// DefaultFiles are the store file names used when none are configured.
var DefaultFiles = map[kind.Kind]string{
	kind.AutoUnitTest: "result_test_auto.json",
	kind.AutoSelenium: "result_test_selenium.json",
	kind.AutoAxe:      "result_test_axe.json",
}

// FileStore keeps each kind's records in a JSON array file under one directory.
type FileStore struct {
	dir   string
	files map[kind.Kind]string
	log   *slog.Logger
}

// NewFileStore creates a FileStore rooted at dir. Kinds missing from files
// use DefaultFiles; relative file names are resolved against dir.
func NewFileStore(dir string, files map[kind.Kind]string) *FileStore {
	resolved := make(map[kind.Kind]string, len(DefaultFiles))
	for k, name := range DefaultFiles {
		if f, ok := files[k]; ok && f != "" {
			name = f
		}
		if !filepath.IsAbs(name) {
			name = filepath.Join(dir, name)
		}
		resolved[k] = name
	}
	return &FileStore{dir: dir, files: resolved, log: slog.Default()}
}

// WithLogger sets the logger used for corrupt-store warnings.
func (s *FileStore) WithLogger(l *slog.Logger) *FileStore {
	s.log = l
	return s
}

// Dir returns the store's root directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file backing kind k.
func (s *FileStore) Path(k kind.Kind) (string, error) {
	if err := checkKind(k); err != nil {
		return "", err
	}
	return s.files[k], nil
}

// ReadAll returns id -> outcome for kind k. A missing file is an empty store;
// an unreadable or unparsable file is logged and also treated as empty.
func (s *FileStore) ReadAll(k kind.Kind) (map[string]string, error) {
	recs, err := s.Records(k)
	if err != nil {
		return nil, err
	}
	return toMap(recs), nil
}

// Records returns the stored records for k in file order.
func (s *FileStore) Records(k kind.Kind) ([]Record, error) {
	path, err := s.Path(k)
	if err != nil {
		return nil, err
	}
	return s.load(k, path), nil
}

func (s *FileStore) load(k kind.Kind, path string) []Record {
	recs, err := readRecords(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Debug("result store absent", "kind", k.String(), "path", path)
			return nil
		}
		s.log.Warn("result store unreadable, treating as empty", "kind", k.String(), "path", path, "error", err)
		return nil
	}
	return recs
}

// WriteMerge upserts rec into kind k's store. See the package documentation
// for the cross-process race this does not guard against.
func (s *FileStore) WriteMerge(k kind.Kind, rec Record) error {
	path, err := s.Path(k)
	if err != nil {
		return err
	}
	if err := checkRecord(rec); err != nil {
		return err
	}
	recs := merge(s.load(k, path), rec)
	if err := writeRecords(path, recs); err != nil {
		return fmt.Errorf("write %s store: %w", k, err)
	}
	return nil
}

// WriteReplace overwrites kind k's store with exactly recs.
func (s *FileStore) WriteReplace(k kind.Kind, recs []Record) error {
	path, err := s.Path(k)
	if err != nil {
		return err
	}
	if err := writeRecords(path, recs); err != nil {
		return fmt.Errorf("write %s store: %w", k, err)
	}
	return nil
}

// WithLock runs fn while holding an advisory lock on kind k's store file.
// Only writers that opt in are serialized; nothing else takes this lock.
func (s *FileStore) WithLock(ctx context.Context, k kind.Kind, fn func() error) error {
	path, err := s.Path(k)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return fmt.Errorf("lock %s: not acquired", path)
	}
	defer lock.Close()
	return fn()
}
