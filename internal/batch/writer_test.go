package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/code-chunker/internal/chunk"
)

func TestOutputRel(t *testing.T) {
	tests := []struct {
		rel      string
		expected string
	}{
		{"src/app.py", "code/src/app.py.txt"},
		{"README.md", "docs/README.md.txt"},
		{"docs/guide.markdown", "docs/docs/guide.markdown.txt"},
		{"LICENSE", "docs/LICENSE.txt"},
		{"web/index.html", "code/web/index.html.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.expected, OutputRel(tt.rel))
		})
	}
}

func TestRender(t *testing.T) {
	doc := Render("a.md", []chunk.Chunk{
		chunk.Header{Header: "# A", Content: "alpha"},
		chunk.Header{Header: "# B", Content: "beta\n"},
	}, 4)

	assert.Equal(t, "# File: a.md\n# Lines: 4\n\n# A\nalpha\n\n# B\nbeta\n", doc)
}

func TestWriterWriteAndRemove(t *testing.T) {
	outDir := t.TempDir()
	w := NewWriter(outDir, false)

	outRel, n, err := w.Write("pkg/main.go", []chunk.Chunk{chunk.File{Content: "package main\n"}}, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "code/pkg/main.go.txt", outRel)
	assert.True(t, w.Exists(outRel))

	data, err := os.ReadFile(filepath.Join(outDir, "code", "pkg", "main.go.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "File Content:\npackage main\n")

	require.NoError(t, w.Remove(outRel))
	assert.False(t, w.Exists(outRel))
	require.NoError(t, w.Remove(outRel), "removing twice is fine")
}

func TestWriterRedacts(t *testing.T) {
	outDir := t.TempDir()
	code := `API_KEY = "sk-abcdef1234567890abcdef"`
	chunks := []chunk.Chunk{chunk.File{Content: code}}

	outRel, n, err := NewWriter(outDir, true).Write("settings.js", chunks, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(filepath.Join(outDir, filepath.FromSlash(outRel)))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-abcdef")
	assert.Contains(t, string(data), "[REDACTED]")

	// Chunk text itself is untouched
	assert.Equal(t, code, chunks[0].(chunk.File).Content)
}
