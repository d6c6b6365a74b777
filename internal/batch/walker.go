package batch

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/randalmurphal/code-chunker/internal/parser"
)

// Walker traverses directories respecting include/exclude patterns.
type Walker struct {
	includes []string
	excludes []string
}

// docExtensions are chunked as documents even though no grammar covers them.
var docExtensions = []string{".md", ".markdown", ".rst", ".txt"}

// DefaultIncludes matches every file the chunkers have a strategy for.
func DefaultIncludes() []string {
	var includes []string
	for _, ext := range parser.Extensions() {
		includes = append(includes, "**/*"+ext)
	}
	for _, ext := range docExtensions {
		includes = append(includes, "**/*"+ext)
	}
	return append(includes, "**/README", "**/LICENSE", "**/CHANGELOG")
}

// NewWalker creates a new file walker with the given include and exclude patterns.
// If no includes are specified, DefaultIncludes is used.
func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = DefaultIncludes()
	}

	// Default excludes for common non-source directories
	defaultExcludes := []string{
		"**/.git/**",
		"**/__pycache__/**",
		"**/*.pyc",
		"**/node_modules/**",
		"**/venv/**",
		"**/.venv/**",
		"**/dist/**",
		"**/build/**",
		"**/.idea/**",
		"**/.vscode/**",
		"**/*.min.js",
		"**/*.bundle.js",
		"**/*.min.css",
	}
	excludes = append(defaultExcludes, excludes...)

	return &Walker{
		includes: includes,
		excludes: excludes,
	}
}

// Walk traverses the directory tree rooted at root, calling fn for each file
// that matches the include patterns and does not match the exclude patterns.
// Files are visited in lexical order. An error from fn stops the walk.
func (w *Walker) Walk(root string, fn func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		// Normalize to forward slashes for pattern matching
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath != "." && w.shouldExcludeDir(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		if w.matchesAny(w.excludes, relPath) {
			return nil
		}

		if w.matchesAny(w.includes, relPath) {
			return fn(path)
		}

		return nil
	})
}

// Files returns every matching file under root.
func (w *Walker) Files(root string) ([]string, error) {
	var files []string
	err := w.Walk(root, func(path string) error {
		files = append(files, path)
		return nil
	})
	return files, err
}

func (w *Walker) shouldExcludeDir(relPath string) bool {
	// "**/.git/**" should match both ".git/" and ".git"
	return w.matchesAny(w.excludes, relPath+"/") || w.matchesAny(w.excludes, relPath)
}

func (w *Walker) matchesAny(patterns []string, relPath string) bool {
	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}
