package storage

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	domain "github.com/example/file-drop/domain/file"
	"github.com/klauspost/compress/flate"
)

// newZipWriter returns a zip writer whose deflate entries use maximum compression.
func newZipWriter(w io.Writer) *zip.Writer {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})
	return zw
}

// WriteArchive streams a zip archive of entries to w, one file at a time.
// Directories are skipped, as are files removed since entries was taken.
// The archive is finalized only after every entry has been written. It
// returns the number of files added.
func (s *Store) WriteArchive(ctx context.Context, w io.Writer, entries []domain.Entry) (int, error) {
	zw := newZipWriter(w)

	added := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return added, err
		}
		if entry.IsDir {
			continue
		}

		ok, err := s.addToArchive(zw, entry)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}

	if err := zw.Close(); err != nil {
		return added, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return added, nil
}

func (s *Store) addToArchive(zw *zip.Writer, entry domain.Entry) (bool, error) {
	f, err := os.Open(filepath.Join(s.root, entry.Name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", entry.Name, err)
	}
	defer f.Close()

	header := &zip.FileHeader{
		Name:     entry.Name,
		Method:   zip.Deflate,
		Modified: entry.ModTime,
	}
	header.SetMode(0o644)

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return false, fmt.Errorf("failed to create archive entry %s: %w", entry.Name, err)
	}
	if _, err := io.Copy(dst, f); err != nil {
		return false, fmt.Errorf("failed to archive %s: %w", entry.Name, err)
	}
	return true, nil
}
