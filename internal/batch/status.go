package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/randalmurphal/code-chunker/internal/cache"
	"github.com/randalmurphal/code-chunker/internal/config"
	"github.com/randalmurphal/code-chunker/internal/fsutil"
)

// Status compares a working tree against the manifest of the last run.
type Status struct {
	Tracked   int
	Unchanged int
	Changed   []string // content hash differs
	New       []string // not chunked yet
	Missing   []string // in the manifest but gone from the tree
}

// Pending reports whether the next run would do any work.
func (s *Status) Pending() bool {
	return len(s.Changed)+len(s.New)+len(s.Missing) > 0
}

// Status hashes every matching file and reports what the next run would
// chunk. Nothing is written.
func (r *Runner) Status(repoPath string, repoCfg *config.RepoConfig) (*Status, error) {
	root, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}

	manifest, err := cache.LoadManifest(r.ManifestPath())
	if err != nil {
		return nil, err
	}

	status := &Status{Tracked: manifest.Len()}
	seen := make(map[string]bool)

	walker := NewWalker(repoCfg.Include, append(r.outputExcludes(root), repoCfg.Exclude...))
	err = walker.Walk(root, func(path string) error {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		seen[rel] = true

		prev, ok := manifest.Get(rel)
		if !ok {
			status.New = append(status.New, rel)
			return nil
		}

		hash, err := fsutil.HashFile(path)
		if err != nil {
			return err
		}
		if hash != prev.Hash {
			status.Changed = append(status.Changed, rel)
		} else {
			status.Unchanged++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, rel := range manifest.Paths() {
		if !seen[rel] {
			status.Missing = append(status.Missing, rel)
		}
	}

	return status, nil
}

// Invalidate forgets one file so the next run chunks it again. file may be
// absolute or relative to repoPath. It reports whether the file was tracked.
func (r *Runner) Invalidate(ctx context.Context, repoPath, repo, file string) (bool, error) {
	root, err := filepath.Abs(repoPath)
	if err != nil {
		return false, err
	}

	abs := file
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, file)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, fmt.Errorf("%s is outside %s", file, root)
	}
	rel = filepath.ToSlash(rel)

	manifest, err := cache.LoadManifest(r.ManifestPath())
	if err != nil {
		return false, err
	}

	entry, tracked := manifest.Get(rel)
	if tracked {
		manifest.Delete(rel)
		if err := NewWriter(r.opts.OutDir, false).Remove(entry.Output); err != nil {
			return true, err
		}
		if err := manifest.Save(); err != nil {
			return true, err
		}
	}

	if r.store != nil {
		if err := r.store.DeleteHash(ctx, repo, rel); err != nil {
			return tracked, fmt.Errorf("delete shared hash: %w", err)
		}
	}

	return tracked, nil
}
