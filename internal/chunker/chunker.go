// Package chunker turns source files into chunk records. A file is routed by
// extension to one of three strategies: Python structural chunking, markdown
// sections, or grammar queries for every other language.
package chunker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/randalmurphal/code-chunker/internal/chunk"
	"github.com/randalmurphal/code-chunker/internal/fsutil"
	"github.com/randalmurphal/code-chunker/internal/parser"
)

// Strategy names the chunking algorithm applied to a file.
type Strategy string

const (
	StrategyPython   Strategy = "python"
	StrategyMarkdown Strategy = "markdown"
	StrategyGrammar  Strategy = "grammar"
)

var strategies = map[string]Strategy{
	".py":       StrategyPython,
	".pyw":      StrategyPython,
	".pyi":      StrategyPython,
	".md":       StrategyMarkdown,
	".markdown": StrategyMarkdown,
}

// StrategyFor returns the strategy for a file extension. Extensions not in
// the table go to the grammar strategy.
func StrategyFor(ext string) Strategy {
	if s, ok := strategies[strings.ToLower(ext)]; ok {
		return s
	}
	return StrategyGrammar
}

// Chunker extracts chunks from files. It holds no per-file state and is
// safe for concurrent use.
type Chunker struct {
	readChunkSize int
	logger        *slog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithReadChunkSize sets the block size used to stream files from disk.
func WithReadChunkSize(n int) Option {
	return func(c *Chunker) {
		c.readChunkSize = n
	}
}

// WithLogger sets the logger that receives per-file failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Chunker) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Chunker.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		readChunkSize: fsutil.DefaultChunkSize,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the outcome of chunking one file.
type Result struct {
	Path      string
	Strategy  Strategy
	Chunks    []chunk.Chunk
	LineCount int
	Err       error
}

// ChunkFile chunks the file at path. Failures are logged and reported as an
// empty chunk list with a zero line count.
func (c *Chunker) ChunkFile(ctx context.Context, path string) ([]chunk.Chunk, int) {
	res := c.ChunkFileResult(ctx, path)
	return res.Chunks, res.LineCount
}

// ChunkFileResult is ChunkFile with the routing decision and error exposed.
// On failure Chunks is nil and LineCount is zero.
func (c *Chunker) ChunkFileResult(ctx context.Context, path string) (res Result) {
	ext := filepath.Ext(path)
	res = Result{Path: path, Strategy: StrategyFor(ext)}

	defer func() {
		if r := recover(); r != nil {
			res.Chunks, res.LineCount = nil, 0
			res.Err = fmt.Errorf("%s strategy panicked: %v", res.Strategy, r)
			c.logFailure(res)
		}
	}()

	var (
		chunks []chunk.Chunk
		lines  int
		err    error
	)
	switch res.Strategy {
	case StrategyPython:
		chunks, lines, err = c.ChunkPython(ctx, path)
	case StrategyMarkdown:
		chunks, lines, err = c.ChunkMarkdown(path)
	default:
		chunks, lines, err = c.ChunkGrammar(ctx, path, ext)
	}

	if err != nil {
		res.Err = err
		c.logFailure(res)
		return res
	}

	res.Chunks, res.LineCount = chunks, lines
	return res
}

func (c *Chunker) logFailure(res Result) {
	msg := "Error chunking file"
	switch {
	case errors.Is(res.Err, fsutil.ErrRead), errors.Is(res.Err, fsutil.ErrDecode):
		msg = "Error reading file"
	case errors.Is(res.Err, parser.ErrParse):
		msg = "Error parsing file"
	}
	c.logger.Error(msg, "path", res.Path, "strategy", string(res.Strategy), "error", res.Err)
}

// CountLines returns the number of physical lines in text. "\n", "\r\n"
// and a lone "\r" each end a line; a trailing terminator does not start an
// extra line.
func CountLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n") + strings.Count(text, "\r") - strings.Count(text, "\r\n")
	if last := text[len(text)-1]; last != '\n' && last != '\r' {
		n++
	}
	return n
}

// lineSpan widens [start, end) to whole lines, excluding the final line
// terminator.
func lineSpan(src string, start, end int) string {
	s := strings.LastIndexByte(src[:start], '\n') + 1
	e := len(src)
	if i := strings.IndexByte(src[end:], '\n'); i >= 0 {
		e = end + i
	}
	return strings.TrimSuffix(src[s:e], "\r")
}
