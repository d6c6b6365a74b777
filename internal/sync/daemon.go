// Package sync re-chunks repositories in the background when their git HEAD
// moves.
package sync

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/randalmurphal/code-chunker/internal/batch"
	"github.com/randalmurphal/code-chunker/internal/config"
)

// Runner chunks one repository.
type Runner interface {
	Run(ctx context.Context, repoPath string, repoCfg *config.RepoConfig) (*batch.Result, error)
}

// Daemon watches repositories and re-chunks them when HEAD changes. Changes
// are found by polling and, where possible, by watching the .git directory.
type Daemon struct {
	repos    []RepoWatch
	interval time.Duration
	debounce time.Duration
	runner   Runner
	logger   *slog.Logger
	headHash map[string]string // repo name -> last known HEAD hash
}

// RepoWatch defines a repository to watch.
type RepoWatch struct {
	Name   string
	Path   string
	Config *config.RepoConfig
}

// NewDaemon creates a new sync daemon.
func NewDaemon(repos []RepoWatch, interval time.Duration, runner Runner, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}
	return &Daemon{
		repos:    repos,
		interval: interval,
		debounce: 500 * time.Millisecond,
		runner:   runner,
		logger:   logger,
		headHash: make(map[string]string),
	}
}

// Run starts the daemon and blocks until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.logger.Info("starting sync daemon", "interval", d.interval, "repos", len(d.repos))

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	watcher, dirs := d.watchGitDirs()
	var (
		fsEvents <-chan fsnotify.Event
		fsErrors <-chan error
	)
	if watcher != nil {
		defer watcher.Close()
		fsEvents, fsErrors = watcher.Events, watcher.Errors
	}

	// Initial sync
	d.syncAll(ctx)

	pending := make(map[string]bool)
	var settle <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("daemon shutting down")
			return ctx.Err()

		case <-ticker.C:
			d.syncAll(ctx)

		case ev := <-fsEvents:
			name, ok := dirs[filepath.Dir(ev.Name)]
			if !ok || ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			pending[name] = true
			if settle == nil {
				settle = time.After(d.debounce)
			}

		case err := <-fsErrors:
			d.logger.Warn("git watch error", "error", err)

		case <-settle:
			settle = nil
			for _, repo := range d.repos {
				if pending[repo.Name] {
					d.syncOne(ctx, repo)
				}
			}
			clear(pending)
		}
	}
}

// watchGitDirs watches HEAD and branch refs of every repository. It returns
// a nil watcher when nothing could be watched; polling still applies.
func (d *Daemon) watchGitDirs() (*fsnotify.Watcher, map[string]string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		d.logger.Warn("file watching unavailable, polling only", "error", err)
		return nil, nil
	}

	dirs := make(map[string]string)
	for _, repo := range d.repos {
		gitDir := filepath.Join(repo.Path, ".git")
		for _, dir := range []string{gitDir, filepath.Join(gitDir, "refs", "heads")} {
			if err := watcher.Add(dir); err != nil {
				d.logger.Debug("cannot watch git dir", "repo", repo.Name, "dir", dir, "error", err)
				continue
			}
			dirs[dir] = repo.Name
		}
	}

	if len(dirs) == 0 {
		watcher.Close()
		return nil, nil
	}
	return watcher, dirs
}

func (d *Daemon) syncAll(ctx context.Context) {
	for _, repo := range d.repos {
		d.syncOne(ctx, repo)
	}
}

func (d *Daemon) syncOne(ctx context.Context, repo RepoWatch) {
	if err := d.syncRepo(ctx, repo); err != nil {
		d.logger.Error("sync failed", "repo", repo.Name, "error", err)
	}
}

func (d *Daemon) syncRepo(ctx context.Context, repo RepoWatch) error {
	d.logger.Debug("checking repo", "name", repo.Name)

	// Get current HEAD hash
	currentHead, err := d.getGitHead(repo.Path)
	if err != nil {
		return fmt.Errorf("failed to get HEAD: %w", err)
	}

	// Compare with cached HEAD
	cachedHead := d.headHash[repo.Name]
	if currentHead == cachedHead {
		d.logger.Debug("repo unchanged", "name", repo.Name)
		return nil
	}

	d.logger.Info("repo changed, chunking", "name", repo.Name, "old_head", truncateHash(cachedHead), "new_head", truncateHash(currentHead))

	result, err := d.runner.Run(ctx, repo.Path, repo.Config)
	if err != nil {
		return fmt.Errorf("chunking failed: %w", err)
	}

	d.logger.Info("sync complete",
		"repo", repo.Name,
		"chunked", result.FilesChunked,
		"skipped", result.FilesSkipped,
		"chunks", result.ChunksCreated,
		"errors", len(result.Errors),
	)

	// Update cached HEAD
	d.headHash[repo.Name] = currentHead

	return nil
}

// getGitHead returns the current HEAD commit hash.
func (d *Daemon) getGitHead(repoPath string) (string, error) {
	// Try git rev-parse first (most reliable)
	cmd := exec.Command("git", "-C", repoPath, "rev-parse", "HEAD")
	output, err := cmd.Output()
	if err == nil {
		return strings.TrimSpace(string(output)), nil
	}

	// Fallback: read .git/HEAD directly
	headData, err := os.ReadFile(filepath.Join(repoPath, ".git", "HEAD"))
	if err != nil {
		return "", err
	}

	content := strings.TrimSpace(string(headData))

	// If HEAD points to a ref, resolve it
	if ref, ok := strings.CutPrefix(content, "ref: "); ok {
		refData, err := os.ReadFile(filepath.Join(repoPath, ".git", filepath.FromSlash(ref)))
		if err != nil {
			// Might be a packed ref, hash the ref name as fallback
			h := sha256.Sum256([]byte(content))
			return fmt.Sprintf("%x", h[:8]), nil
		}
		return strings.TrimSpace(string(refData)), nil
	}

	// Detached HEAD, content is the hash
	return content, nil
}

func truncateHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
