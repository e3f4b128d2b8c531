package wizard

import (
	"path/filepath"
	"strings"
)

// MaxFileBytes is the largest document the upload step accepts.
const MaxFileBytes = 10 * 1024 * 1024

// allowedExtensions mirrors the document types the upload widget accepts.
var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".txt":  {},
}

// AllowedExtension reports whether the filename carries an accepted
// document extension.
func AllowedExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := allowedExtensions[ext]
	return ok
}
