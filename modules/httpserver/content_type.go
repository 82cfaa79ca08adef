package httpserver

import (
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const defaultContentType = "application/octet-stream"

// contentTypeByExt maps file extensions to MIME types.
var contentTypeByExt = map[string]string{
	".txt":  "text/plain; charset=utf-8",
	".csv":  "text/csv",
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".xml":  "application/xml",
	".pdf":  "application/pdf",
	".zip":  "application/zip",
	".tar":  "application/x-tar",
	".gz":   "application/gzip",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".mp3":  "audio/mpeg",
	".mp4":  "video/mp4",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// detectContentType determines the content type based on file extension.
func detectContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if contentType, ok := contentTypeByExt[ext]; ok {
		return contentType
	}
	return defaultContentType
}

// sniffContentType uses the extension when known and the leading bytes of f
// otherwise. f is rewound before returning.
func sniffContentType(filename string, f io.ReadSeeker) (string, error) {
	if ct := detectContentType(filename); ct != defaultContentType {
		return ct, nil
	}

	mtype, detectErr := mimetype.DetectReader(f)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	if detectErr != nil {
		return defaultContentType, nil
	}
	return mtype.String(), nil
}

// contentDisposition builds an attachment header for filename.
func contentDisposition(filename string) string {
	if isASCII(filename) {
		escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(filename)
		return `attachment; filename="` + escaped + `"`
	}
	return `attachment; filename*=UTF-8''` + url.PathEscape(filename)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}
