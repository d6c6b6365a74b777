// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RepoConfigFile is the per-repository config file name.
const RepoConfigFile = ".code-chunker.yaml"

// Config holds global configuration
type Config struct {
	Chunking ChunkingConfig `yaml:"chunking"`
	Output   OutputConfig   `yaml:"output"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type ChunkingConfig struct {
	ReadChunkSize int `yaml:"read_chunk_size"` // bytes per streamed block
	Workers       int `yaml:"workers"`
}

type OutputConfig struct {
	Dir           string `yaml:"dir"`
	RedactSecrets bool   `yaml:"redact_secrets"`
}

type CacheConfig struct {
	Manifest string `yaml:"manifest"`  // file name inside the output dir
	RedisURL string `yaml:"redis_url"` // optional shared hash store
}

type LoggingConfig struct {
	Level     string `yaml:"level"` // error|warn|info|debug
	File      string `yaml:"file"`
	MaxSizeMB int    `yaml:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files"`
}

type MetricsConfig struct {
	Path string `yaml:"path"` // JSONL run log
}

// RepoConfig holds per-repository configuration
type RepoConfig struct {
	Name    string   `yaml:"name"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			ReadChunkSize: 64 * 1024,
			Workers:       4,
		},
		Output: OutputConfig{
			Dir:           "chunks",
			RedactSecrets: true,
		},
		Cache: CacheConfig{
			Manifest: "manifest.json",
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 50,
			MaxFiles:  3,
		},
		Metrics: MetricsConfig{
			Path: filepath.Join(DefaultDir(), "metrics.jsonl"),
		},
	}
}

// DefaultDir is the directory holding the global config and run logs.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".code-chunker"
	}
	return filepath.Join(home, ".config", "code-chunker")
}

// DefaultPath is the global config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// LoadConfig loads config from file or returns defaults
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects values the chunker cannot run with.
func (c *Config) Validate() error {
	if c.Chunking.ReadChunkSize <= 0 {
		return errors.New("chunking.read_chunk_size must be positive")
	}
	if c.Chunking.Workers <= 0 {
		return errors.New("chunking.workers must be positive")
	}
	switch c.Logging.Level {
	case "error", "warn", "info", "debug":
	default:
		return fmt.Errorf("logging.level %q is not one of error|warn|info|debug", c.Logging.Level)
	}
	return nil
}

// LoadRepoConfig loads .code-chunker.yaml from repo root
func LoadRepoConfig(repoPath string) (*RepoConfig, error) {
	path := filepath.Join(repoPath, RepoConfigFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		CodeChunker RepoConfig `yaml:"code-chunker"`
	}

	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}

	return &wrapper.CodeChunker, nil
}

// LoadRepoConfigOrDefault returns the repository config, or one named after
// the directory when the repository has no config file.
func LoadRepoConfigOrDefault(repoPath string) (*RepoConfig, error) {
	cfg, err := LoadRepoConfig(repoPath)
	if err == nil {
		if cfg.Name == "" {
			cfg.Name = repoName(repoPath)
		}
		return cfg, nil
	}
	if os.IsNotExist(err) {
		return &RepoConfig{Name: repoName(repoPath)}, nil
	}
	return nil, err
}

// WriteRepoConfig writes cfg to the repository's config file.
func WriteRepoConfig(repoPath string, cfg *RepoConfig) error {
	wrapper := struct {
		CodeChunker *RepoConfig `yaml:"code-chunker"`
	}{cfg}

	data, err := yaml.Marshal(wrapper)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(repoPath, RepoConfigFile), data, 0644)
}

func repoName(repoPath string) string {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return filepath.Base(repoPath)
	}
	return filepath.Base(abs)
}
