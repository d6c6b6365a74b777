// cmd/code-chunker/env.go
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/randalmurphal/code-chunker/internal/batch"
	"github.com/randalmurphal/code-chunker/internal/cache"
	"github.com/randalmurphal/code-chunker/internal/chunker"
	"github.com/randalmurphal/code-chunker/internal/config"
	"github.com/randalmurphal/code-chunker/internal/logging"
	"github.com/randalmurphal/code-chunker/internal/metrics"
)

// env bundles what most commands need: config, logger and the resources
// that must be closed on exit.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []io.Closer

	store      *cache.RedisStore
	storeTried bool
}

func loadEnv() (*env, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load global config: %w", err)
	}

	logger, closer := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	return &env{cfg: cfg, logger: logger, closers: []io.Closer{closer}}, nil
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
}

func (e *env) chunker() *chunker.Chunker {
	return chunker.New(
		chunker.WithReadChunkSize(e.cfg.Chunking.ReadChunkSize),
		chunker.WithLogger(e.logger),
	)
}

// redisStore connects to the shared hash store when one is configured. A
// connection failure is logged and the run continues on the local manifest.
func (e *env) redisStore() *cache.RedisStore {
	if e.storeTried || e.cfg.Cache.RedisURL == "" {
		return e.store
	}
	e.storeTried = true

	store, err := cache.NewRedisStore(e.cfg.Cache.RedisURL)
	if err != nil {
		e.logger.Warn("redis unavailable, using local manifest only", "error", err)
		return nil
	}
	e.closers = append(e.closers, store)
	e.store = store
	return store
}

// runner builds a batch runner wired to the configured stores.
func (e *env) runner(opts batch.Options) *batch.Runner {
	ropts := []batch.RunnerOption{batch.WithLogger(e.logger)}

	if store := e.redisStore(); store != nil {
		ropts = append(ropts, batch.WithHashStore(store))
	}

	if e.cfg.Metrics.Path != "" {
		m, err := metrics.NewLogger(e.cfg.Metrics.Path)
		if err != nil {
			e.logger.Warn("metrics disabled", "path", e.cfg.Metrics.Path, "error", err)
		} else {
			e.closers = append(e.closers, m)
			ropts = append(ropts, batch.WithMetrics(m))
		}
	}

	return batch.NewRunner(e.chunker(), opts, ropts...)
}

// resolveRepoPath accepts a path or the name of a checkout under ~/repos.
func resolveRepoPath(arg string) (string, error) {
	repoPath := arg
	if !filepath.IsAbs(repoPath) {
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("repository not found: %s (unable to check ~/repos)", arg)
			}
			repoPath = filepath.Join(homeDir, "repos", arg)
		}
	}

	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("repository not found: %s", absPath)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", absPath)
	}
	return absPath, nil
}

// findRepoRoot walks up from path to the nearest directory holding a repo
// config or a .git entry.
func findRepoRoot(path string) (string, bool) {
	dir := path
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		dir = filepath.Dir(path)
	}

	for {
		for _, marker := range []string{config.RepoConfigFile, ".git"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func parseDuration(s string) (time.Duration, error) {
	// Handle day suffix
	if len(s) > 0 && s[len(s)-1] == 'd' {
		days := s[:len(s)-1]
		var d int
		if _, err := fmt.Sscanf(days, "%d", &d); err == nil {
			return time.Duration(d) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

// commandContext is cancelled on SIGINT or SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
