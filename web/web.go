// Package web holds the static landing page served at "/".
package web

import _ "embed"

// IndexHTML is the landing document.
//
//go:embed index.html
var IndexHTML []byte
