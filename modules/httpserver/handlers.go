package httpserver

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	domain "github.com/example/file-drop/domain/file"
	"github.com/example/file-drop/modules/storage"
	"github.com/example/file-drop/web"
	"github.com/gin-gonic/gin"
	"github.com/go-monolith/mono/pkg/types"
)

const (
	uploadField     = "files"
	archiveFilename = "all-files.zip"
)

// FileStore is the storage the handlers need. *storage.Store implements it.
type FileStore interface {
	List() ([]domain.Entry, error)
	Names() ([]string, error)
	Save(name string, r io.Reader) (int64, error)
	Open(name string) (*os.File, *domain.Entry, error)
	WriteArchive(ctx context.Context, w io.Writer, entries []domain.Entry) (int, error)
}

var _ FileStore = (*storage.Store)(nil)

// Handlers contains HTTP request handlers for file operations.
type Handlers struct {
	store  FileStore
	logger types.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(store FileStore, logger types.Logger) *Handlers {
	return &Handlers{store: store, logger: logger}
}

// handleStorageError writes an appropriate HTTP error response for storage errors.
func handleStorageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrInvalidFilename):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid filename"})
	case errors.Is(err, storage.ErrFileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "File not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error reading file"})
	}
}

// Index serves the landing page (GET /).
func (h *Handlers) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML)
}

// Upload stores every part of the "files" field under its own filename
// (POST /upload). Parts are independent: a failed part does not undo the
// ones written before it.
func (h *Handlers) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid multipart form"})
		return
	}

	headers := form.File[uploadField]
	accepted := make([]string, 0, len(headers))
	var failed []string

	for _, header := range headers {
		if err := h.saveUpload(header); err != nil {
			h.logger.Error("Failed to store uploaded file",
				"file", header.Filename,
				"error", err)
			failed = append(failed, header.Filename)
			continue
		}
		accepted = append(accepted, header.Filename)
	}

	h.logger.Info("Files uploaded", "files", accepted)

	if len(failed) > 0 {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to upload files",
			"failed":  failed,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Files uploaded successfully"})
}

func (h *Handlers) saveUpload(header *multipart.FileHeader) error {
	src, err := header.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = h.store.Save(header.Filename, src)
	return err
}

// ListFiles returns the names in the storage root (GET /files).
func (h *Handlers) ListFiles(c *gin.Context) {
	names, err := h.store.Names()
	if err != nil {
		h.logger.Error("Failed to list files", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error reading files"})
		return
	}

	c.JSON(http.StatusOK, names)
}

// Download streams one file as an attachment (GET /uploads/:filename).
func (h *Handlers) Download(c *gin.Context) {
	name := c.Param("filename")

	f, entry, err := h.store.Open(name)
	if err != nil {
		handleStorageError(c, err)
		return
	}
	defer f.Close()

	contentType, err := sniffContentType(name, f)
	if err != nil {
		h.logger.Error("Failed to prepare download", "file", name, "error", err)
		handleStorageError(c, err)
		return
	}

	c.DataFromReader(http.StatusOK, entry.Size, contentType, f, map[string]string{
		"Content-Disposition": contentDisposition(name),
	})
}

// DownloadAll streams a zip of every file in the storage root
// (GET /download-all). The directory is read before any byte is sent so a
// read failure still yields a clean 500.
func (h *Handlers) DownloadAll(c *gin.Context) {
	entries, err := h.store.List()
	if err != nil {
		h.logger.Error("Failed to read storage root for archive", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error preparing download"})
		return
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", "attachment; filename="+archiveFilename)
	c.Status(http.StatusOK)

	added, err := h.store.WriteArchive(c.Request.Context(), c.Writer, entries)
	if err != nil {
		// headers are gone; the client sees a truncated archive
		h.logger.Error("Archive stream aborted", "files", added, "error", err)
		_ = c.Error(err)
		return
	}

	h.logger.Info("Archive sent", "files", added)
}
