// Package batch drives chunking over a repository: it walks the tree, chunks
// changed files on a bounded worker pool, writes one document per file and
// keeps the manifest of content hashes current.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/code-chunker/internal/cache"
	"github.com/randalmurphal/code-chunker/internal/chunker"
	"github.com/randalmurphal/code-chunker/internal/config"
	"github.com/randalmurphal/code-chunker/internal/fsutil"
	"github.com/randalmurphal/code-chunker/internal/metrics"
)

// HashStore is a shared record of file content hashes, consulted in
// addition to the local manifest.
type HashStore interface {
	GetHash(ctx context.Context, repo, rel string) (string, error)
	SetHash(ctx context.Context, repo, rel, hash string) error
	DeleteHash(ctx context.Context, repo, rel string) error
	IncrRunVersion(ctx context.Context, repo string) (int64, error)
}

// Options control a batch run.
type Options struct {
	OutDir       string
	ManifestName string
	Workers      int
	Force        bool // re-chunk files whose hash is unchanged
	Redact       bool
}

// OptionsFromConfig derives run options from the global config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		OutDir:       cfg.Output.Dir,
		ManifestName: cfg.Cache.Manifest,
		Workers:      cfg.Chunking.Workers,
		Redact:       cfg.Output.RedactSecrets,
	}
}

// Runner coordinates a chunking run.
type Runner struct {
	chunker *chunker.Chunker
	opts    Options
	store   HashStore
	metrics *metrics.Logger
	logger  *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithHashStore shares content hashes through store.
func WithHashStore(store HashStore) RunnerOption {
	return func(r *Runner) { r.store = store }
}

// WithMetrics records run events to m.
func WithMetrics(m *metrics.Logger) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithLogger sets the run logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a runner that chunks with c.
func NewRunner(c *chunker.Chunker, opts Options, ropts ...RunnerOption) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.ManifestName == "" {
		opts.ManifestName = "manifest.json"
	}
	r := &Runner{
		chunker: c,
		opts:    opts,
		logger:  slog.Default(),
	}
	for _, o := range ropts {
		o(r)
	}
	return r
}

// Result contains statistics from a chunking run.
type Result struct {
	RunID         string
	FilesSeen     int
	FilesChunked  int
	FilesSkipped  int
	ChunksCreated int
	LinesSeen     int
	Redactions    int
	Removed       []string
	Errors        []error
	Duration      time.Duration
}

// ManifestPath returns where the manifest for this runner lives.
func (r *Runner) ManifestPath() string {
	return filepath.Join(r.opts.OutDir, r.opts.ManifestName)
}

// run holds the per-run state shared by workers.
type run struct {
	id       string
	repo     string
	root     string
	manifest *cache.Manifest
	writer   *Writer

	mu     sync.Mutex
	result *Result
	seen   map[string]bool
}

// Run chunks every matching file under repoPath. Per-file failures are
// collected in Result.Errors and do not stop the run.
func (r *Runner) Run(ctx context.Context, repoPath string, repoCfg *config.RepoConfig) (*Result, error) {
	start := time.Now()

	root, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", repoPath, err)
	}

	manifest, err := cache.LoadManifest(r.ManifestPath())
	if err != nil {
		return nil, err
	}

	st := &run{
		id:       uuid.NewString(),
		repo:     repoCfg.Name,
		root:     root,
		manifest: manifest,
		writer:   NewWriter(r.opts.OutDir, r.opts.Redact),
		seen:     make(map[string]bool),
	}
	st.result = &Result{RunID: st.id}

	r.logger.Info("chunking repository", "repo", st.repo, "path", root, "run_id", st.id, "workers", r.opts.Workers)

	walker := NewWalker(repoCfg.Include, append(r.outputExcludes(root), repoCfg.Exclude...))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	walkErr := walker.Walk(root, func(path string) error {
		if err := gctx.Err(); err != nil {
			return err
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.processFile(gctx, st, path)
			return nil
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		return st.result, err
	}
	if walkErr != nil {
		return st.result, fmt.Errorf("walk failed: %w", walkErr)
	}

	st.result.Removed = manifest.Prune(st.seen)
	for _, rel := range st.result.Removed {
		r.forget(ctx, st, rel)
	}

	if err := manifest.Save(); err != nil {
		return st.result, err
	}

	if r.store != nil && (st.result.FilesChunked > 0 || len(st.result.Removed) > 0) {
		if _, err := r.store.IncrRunVersion(ctx, st.repo); err != nil {
			r.logger.Warn("failed to bump run version", "repo", st.repo, "error", err)
		}
	}

	st.result.Duration = time.Since(start)
	r.metrics.LogRunComplete(st.id, st.repo, metrics.RunTotals{
		FilesSeen:    st.result.FilesSeen,
		FilesChunked: st.result.FilesChunked,
		FilesSkipped: st.result.FilesSkipped,
		Chunks:       st.result.ChunksCreated,
		Lines:        st.result.LinesSeen,
		Errors:       len(st.result.Errors),
	}, st.result.Duration)

	r.logger.Info("chunking complete",
		"repo", st.repo,
		"files", st.result.FilesSeen,
		"chunked", st.result.FilesChunked,
		"skipped", st.result.FilesSkipped,
		"chunks", st.result.ChunksCreated,
		"errors", len(st.result.Errors),
		"duration", st.result.Duration,
	)

	return st.result, nil
}

func (r *Runner) processFile(ctx context.Context, st *run, path string) {
	rel, err := filepath.Rel(st.root, path)
	if err != nil {
		st.fail(r, fmt.Errorf("relative path %s: %w", path, err), path)
		return
	}
	rel = filepath.ToSlash(rel)

	st.mu.Lock()
	st.seen[rel] = true
	st.result.FilesSeen++
	st.mu.Unlock()

	hash, err := fsutil.HashFile(path)
	if err != nil {
		st.fail(r, fmt.Errorf("hash %s: %w", rel, err), rel)
		return
	}

	if !r.opts.Force && r.unchanged(ctx, st, rel, hash) {
		st.mu.Lock()
		st.result.FilesSkipped++
		st.mu.Unlock()
		r.metrics.LogFileSkipped(st.id, st.repo, rel)
		return
	}

	began := time.Now()
	res := r.chunker.ChunkFileResult(ctx, path)
	if res.Err != nil {
		if st.manifest.Delete(rel) {
			if err := st.writer.Remove(OutputRel(rel)); err != nil {
				r.logger.Warn("failed to remove stale output", "path", rel, "error", err)
			}
		}
		st.fail(r, fmt.Errorf("chunk %s: %w", rel, res.Err), rel)
		return
	}

	outRel, redactions, err := st.writer.Write(rel, res.Chunks, res.LineCount)
	if err != nil {
		st.fail(r, err, rel)
		return
	}
	took := time.Since(began)

	st.manifest.Set(rel, cache.Entry{
		Hash:      hash,
		Output:    outRel,
		Chunks:    len(res.Chunks),
		Lines:     res.LineCount,
		UpdatedAt: time.Now().UTC(),
	})
	if r.store != nil {
		if err := r.store.SetHash(ctx, st.repo, rel, hash); err != nil {
			r.logger.Warn("failed to store hash", "path", rel, "error", err)
		}
	}

	st.mu.Lock()
	st.result.FilesChunked++
	st.result.ChunksCreated += len(res.Chunks)
	st.result.LinesSeen += res.LineCount
	st.result.Redactions += redactions
	st.mu.Unlock()

	r.metrics.LogFileChunked(st.id, st.repo, rel, string(res.Strategy), len(res.Chunks), res.LineCount, took)
	r.logger.Debug("chunked file", "path", rel, "strategy", res.Strategy, "chunks", len(res.Chunks), "lines", res.LineCount)
}

// unchanged reports whether rel was already chunked at this hash and its
// document still exists. With a shared store the stored hash must agree, so
// an invalidation on any machine forces a re-chunk.
func (r *Runner) unchanged(ctx context.Context, st *run, rel, hash string) bool {
	prev, ok := st.manifest.Get(rel)
	if !ok || prev.Hash != hash || !st.writer.Exists(prev.Output) {
		return false
	}
	if r.store == nil {
		return true
	}
	shared, err := r.store.GetHash(ctx, st.repo, rel)
	if err != nil {
		r.logger.Warn("failed to read shared hash", "path", rel, "error", err)
		return false
	}
	return shared == hash
}

// forget removes the document and shared hash of a file that no longer exists.
func (r *Runner) forget(ctx context.Context, st *run, rel string) {
	if err := st.writer.Remove(OutputRel(rel)); err != nil {
		r.logger.Warn("failed to remove stale output", "path", rel, "error", err)
	}
	if r.store != nil {
		if err := r.store.DeleteHash(ctx, st.repo, rel); err != nil {
			r.logger.Warn("failed to delete shared hash", "path", rel, "error", err)
		}
	}
}

func (st *run) fail(r *Runner, err error, rel string) {
	st.mu.Lock()
	st.result.Errors = append(st.result.Errors, err)
	st.mu.Unlock()
	r.metrics.LogError(st.id, rel, err.Error())
}

// outputExcludes keeps the output directory out of the walk when it lives
// inside the repository.
func (r *Runner) outputExcludes(root string) []string {
	out, err := filepath.Abs(r.opts.OutDir)
	if err != nil {
		return nil
	}
	rel, err := filepath.Rel(root, out)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return []string{filepath.ToSlash(rel) + "/**"}
}
