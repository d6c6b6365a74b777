package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/randalmurphal/code-chunker/internal/chunk"
	"github.com/randalmurphal/code-chunker/internal/fsutil"
	"github.com/randalmurphal/code-chunker/internal/security"
)

// Output subdirectories.
const (
	DocsDir = "docs"
	CodeDir = "code"
)

// Writer persists formatted chunk documents under an output directory,
// split into docs/ and code/ by file kind.
type Writer struct {
	outDir   string
	redactor *security.SecretDetector
}

// NewWriter creates a writer rooted at outDir. When redact is set,
// credentials are masked in the persisted text.
func NewWriter(outDir string, redact bool) *Writer {
	w := &Writer{outDir: outDir}
	if redact {
		w.redactor = security.NewSecretDetector()
	}
	return w
}

// OutputRel maps a repository-relative source path to its document path
// relative to the output directory.
func OutputRel(rel string) string {
	sub := CodeDir
	if fsutil.IsDocumentationFile(rel) {
		sub = DocsDir
	}
	return path.Join(sub, filepath.ToSlash(rel)+".txt")
}

// Render builds the output document for one file.
func Render(rel string, chunks []chunk.Chunk, lines int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# File: %s\n# Lines: %d\n\n", rel, lines)
	b.WriteString(chunk.FormatAll(chunks))
	return b.String()
}

// Write renders and stores the document for rel. It returns the document
// path relative to the output directory and the number of redactions.
func (w *Writer) Write(rel string, chunks []chunk.Chunk, lines int) (string, int, error) {
	doc := Render(rel, chunks, lines)

	redactions := 0
	if w.redactor != nil {
		doc, redactions = w.redactor.Redact(doc)
	}

	outRel := OutputRel(rel)
	dest := w.abs(outRel)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", 0, fmt.Errorf("create output dir for %s: %w", rel, err)
	}
	if err := os.WriteFile(dest, []byte(doc), 0644); err != nil {
		return "", 0, fmt.Errorf("write %s: %w", outRel, err)
	}

	return outRel, redactions, nil
}

// Exists reports whether a previously written document is still present.
func (w *Writer) Exists(outRel string) bool {
	if outRel == "" {
		return false
	}
	_, err := os.Stat(w.abs(outRel))
	return err == nil
}

// Remove deletes a document. A missing document is not an error.
func (w *Writer) Remove(outRel string) error {
	if outRel == "" {
		return nil
	}
	if err := os.Remove(w.abs(outRel)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (w *Writer) abs(outRel string) string {
	return filepath.Join(w.outDir, filepath.FromSlash(outRel))
}
