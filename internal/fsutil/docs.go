package fsutil

import (
	"path/filepath"
	"strings"
)

var docExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".mdx":      true,
	".rst":      true,
	".txt":      true,
	".adoc":     true,
	".asciidoc": true,
	".org":      true,
}

var docNames = map[string]bool{
	"readme":       true,
	"changelog":    true,
	"changes":      true,
	"license":      true,
	"notice":       true,
	"authors":      true,
	"contributing": true,
	"history":      true,
}

// IsDocumentationFile reports whether path names a documentation file
// (markdown, plain text notes, extension-less README-style names).
// Case-insensitive; only the path string is inspected.
func IsDocumentationFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	ext := filepath.Ext(base)
	if docExtensions[ext] {
		return true
	}
	// readme.py is code
	return ext == "" && docNames[base]
}
