package sync

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/code-chunker/internal/batch"
	"github.com/randalmurphal/code-chunker/internal/config"
)

type countingRunner struct {
	mu    gosync.Mutex
	paths []string
	err   error
}

func (r *countingRunner) Run(_ context.Context, repoPath string, _ *config.RepoConfig) (*batch.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, repoPath)
	if r.err != nil {
		return nil, r.err
	}
	return &batch.Result{FilesChunked: 1}, nil
}

func (r *countingRunner) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func git(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	tmpDir := t.TempDir()
	git(t, tmpDir, "init")
	git(t, tmpDir, "config", "user.email", "test@test.com")
	git(t, tmpDir, "config", "user.name", "Test")
	commit(t, tmpDir, "test.py", "def foo(): pass", "initial")
	return tmpDir
}

func commit(t *testing.T, dir, file, content, msg string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0644))
	git(t, dir, "add", ".")
	git(t, dir, "commit", "-m", msg)
}

func TestDaemonGetGitHead(t *testing.T) {
	tmpDir := initRepo(t)
	daemon := NewDaemon(nil, time.Minute, nil, testLogger())

	head, err := daemon.getGitHead(tmpDir)
	require.NoError(t, err)
	assert.Len(t, head, 40, "HEAD should be 40 char hash")
}

func TestDaemonGetGitHeadFromFiles(t *testing.T) {
	tmpDir := t.TempDir()
	gitDir := filepath.Join(tmpDir, ".git")
	require.NoError(t, os.MkdirAll(filepath.Join(gitDir, "refs", "heads"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte("ref: refs/heads/main\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "refs", "heads", "main"), []byte("0123456789abcdef0123456789abcdef01234567\n"), 0644))

	// Keep git from discovering an enclosing repository
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(tmpDir))
	daemon := NewDaemon(nil, time.Minute, nil, testLogger())

	// Not a valid repository for git itself, so the file fallback is used
	head, err := daemon.getGitHead(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", head)
}

func TestDaemonSyncsOnlyWhenHeadMoves(t *testing.T) {
	tmpDir := initRepo(t)
	runner := &countingRunner{}
	repo := RepoWatch{Name: "demo", Path: tmpDir, Config: &config.RepoConfig{Name: "demo"}}
	daemon := NewDaemon([]RepoWatch{repo}, time.Hour, runner, testLogger())
	ctx := context.Background()

	require.NoError(t, daemon.syncRepo(ctx, repo))
	require.NoError(t, daemon.syncRepo(ctx, repo))
	assert.Equal(t, 1, runner.calls(), "unchanged HEAD does not re-chunk")

	commit(t, tmpDir, "test.py", "def foo(): return 1", "update")
	require.NoError(t, daemon.syncRepo(ctx, repo))
	assert.Equal(t, 2, runner.calls())
}

func TestDaemonRetriesAfterFailure(t *testing.T) {
	tmpDir := initRepo(t)
	runner := &countingRunner{err: errors.New("disk full")}
	repo := RepoWatch{Name: "demo", Path: tmpDir, Config: &config.RepoConfig{}}
	daemon := NewDaemon([]RepoWatch{repo}, time.Hour, runner, testLogger())

	err := daemon.syncRepo(context.Background(), repo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunking failed")
	assert.Empty(t, daemon.headHash["demo"], "HEAD is not recorded after a failed run")

	runner.err = nil
	require.NoError(t, daemon.syncRepo(context.Background(), repo))
	assert.Equal(t, 2, runner.calls())
}

func TestDaemonWatchTriggersSync(t *testing.T) {
	tmpDir := initRepo(t)
	runner := &countingRunner{}
	repo := RepoWatch{Name: "demo", Path: tmpDir, Config: &config.RepoConfig{}}
	daemon := NewDaemon([]RepoWatch{repo}, time.Hour, runner, testLogger())
	daemon.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- daemon.Run(ctx) }()

	require.Eventually(t, func() bool { return runner.calls() == 1 }, 5*time.Second, 20*time.Millisecond)

	commit(t, tmpDir, "test.py", "def foo(): return 2", "update")

	// The hourly ticker cannot fire; only the git watch can
	assert.Eventually(t, func() bool { return runner.calls() == 2 }, 5*time.Second, 20*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestNewDaemon(t *testing.T) {
	repos := []RepoWatch{
		{Name: "test-repo", Path: "/tmp/test", Config: &config.RepoConfig{}},
	}

	daemon := NewDaemon(repos, time.Minute, &countingRunner{}, nil)

	assert.Len(t, daemon.repos, 1)
	assert.Equal(t, time.Minute, daemon.interval)
	assert.NotNil(t, daemon.headHash)
	assert.NotNil(t, daemon.logger)
}

func TestTruncateHash(t *testing.T) {
	assert.Equal(t, "abc12345", truncateHash("abc12345678901234567890"))
	assert.Equal(t, "short", truncateHash("short"))
	assert.Equal(t, "", truncateHash(""))
}

func TestDaemonRunCancellation(t *testing.T) {
	daemon := NewDaemon([]RepoWatch{}, time.Hour, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())

	// Cancel immediately
	cancel()

	// Run should return quickly due to cancellation
	done := make(chan error)
	go func() {
		done <- daemon.Run(ctx)
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("daemon did not stop after cancellation")
	}
}
