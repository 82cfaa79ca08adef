package file

import (
	"time"
)

// Entry is one item directly under the storage root. The name is the only key.
type Entry struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	IsDir   bool      `json:"is_dir"`
}
