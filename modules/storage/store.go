package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	domain "github.com/example/file-drop/domain/file"
)

// archivePrefix names the sibling directory a previous storage root is moved to.
const archivePrefix = "archive_"

var timestampReplacer = strings.NewReplacer("-", "", ":", "", ".", "")

// archiveTimestamp renders t as a sortable UTC stamp, e.g. 20240102T030405678Z.
func archiveTimestamp(t time.Time) string {
	return timestampReplacer.Replace(t.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
}

// Store is a flat directory of uploaded files addressed by filename.
type Store struct {
	root string
	now  func() time.Time
}

// NewStore creates a store rooted at root. Nothing touches the disk until Prepare.
func NewStore(root string) *Store {
	return &Store{
		root: filepath.Clean(root),
		now:  time.Now,
	}
}

// Root returns the storage root path.
func (s *Store) Root() string {
	return s.root
}

// Prepare makes sure an empty storage root exists. An existing root is renamed
// to a timestamped sibling first; its contents are never merged. The returned
// path is the archive directory, or "" when there was nothing to archive.
func (s *Store) Prepare() (string, error) {
	_, err := os.Lstat(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(s.root, 0o755); err != nil {
			return "", fmt.Errorf("failed to create storage root: %w", err)
		}
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat storage root: %w", err)
	}

	archive := filepath.Join(filepath.Dir(s.root), archivePrefix+archiveTimestamp(s.now()))
	if _, err := os.Lstat(archive); err == nil {
		return "", fmt.Errorf("%w: %s", ErrArchiveExists, archive)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to stat archive directory: %w", err)
	}

	if err := os.Rename(s.root, archive); err != nil {
		return "", fmt.Errorf("failed to archive storage root: %w", err)
	}
	if err := os.Mkdir(s.root, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage root: %w", err)
	}
	return archive, nil
}

// List returns every entry directly under the root, sorted by name.
func (s *Store) List() ([]domain.Entry, error) {
	dirEntries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage root: %w", err)
	}

	entries := make([]domain.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		info, err := de.Info()
		if errors.Is(err, fs.ErrNotExist) {
			// removed between ReadDir and Info
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", de.Name(), err)
		}
		entries = append(entries, domain.Entry{
			Name:    de.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			IsDir:   de.IsDir(),
		})
	}
	return entries, nil
}

// Names returns the names of every entry directly under the root.
func (s *Store) Names() ([]string, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, nil
}

// Save writes r to the named file, replacing any file of the same name.
func (s *Store) Save(name string, r io.Reader) (int64, error) {
	path, err := s.path(name)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", name, err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		return n, fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("failed to close %s: %w", name, err)
	}
	return n, nil
}

// Open opens the named file for reading. The caller closes it.
func (s *Store) Open(name string) (*os.File, *domain.Entry, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}

	return f, &domain.Entry{
		Name:    name,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// path rejects names that are not a single path element.
func (s *Store) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, "/\\\x00") {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	return filepath.Join(s.root, name), nil
}
