package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
chunking:
  workers: 8
output:
  dir: /tmp/out
  redact_secrets: false
cache:
  redis_url: redis://cache:6379
logging:
  level: debug
  file: /tmp/chunker.log
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Chunking.Workers)
	assert.Equal(t, 64*1024, cfg.Chunking.ReadChunkSize, "unset keys keep defaults")
	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
	assert.False(t, cfg.Output.RedactSecrets)
	assert.Equal(t, "redis://cache:6379", cfg.Cache.RedisURL)
	assert.Equal(t, "manifest.json", cfg.Cache.Manifest)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/chunker.log", cfg.Logging.File)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "chunking: [unterminated"},
		{"zero workers", "chunking:\n  workers: 0\n"},
		{"negative read size", "chunking:\n  read_chunk_size: -1\n"},
		{"unknown level", "logging:\n  level: verbose\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestRepoConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := &RepoConfig{
		Name:    "demo",
		Include: []string{"src/**/*.py"},
		Exclude: []string{"**/generated/**"},
	}

	require.NoError(t, WriteRepoConfig(dir, cfg))

	loaded, err := LoadRepoConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	raw, err := os.ReadFile(filepath.Join(dir, RepoConfigFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "code-chunker:")
}

func TestLoadRepoConfigOrDefault(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-repo")
	require.NoError(t, os.MkdirAll(dir, 0755))

	cfg, err := LoadRepoConfigOrDefault(dir)
	require.NoError(t, err)
	assert.Equal(t, "my-repo", cfg.Name)
	assert.Empty(t, cfg.Include)

	require.NoError(t, os.WriteFile(filepath.Join(dir, RepoConfigFile), []byte("code-chunker:\n  exclude: [\"vendor/**\"]\n"), 0644))
	cfg, err = LoadRepoConfigOrDefault(dir)
	require.NoError(t, err)
	assert.Equal(t, "my-repo", cfg.Name)
	assert.Equal(t, []string{"vendor/**"}, cfg.Exclude)
}
