package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrFileNotFound is returned when the requested file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidFilename is returned when a filename would escape the storage root.
	ErrInvalidFilename = errors.New("invalid filename")

	// ErrArchiveExists is returned when the archive path for a restart is already taken.
	ErrArchiveExists = errors.New("archive directory already exists")
)
