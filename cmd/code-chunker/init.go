// cmd/code-chunker/init.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/randalmurphal/code-chunker/internal/batch"
	"github.com/randalmurphal/code-chunker/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [repo-path]",
	Short: "Initialize chunking configuration for a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	absPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", absPath)
	}

	configPath := filepath.Join(absPath, config.RepoConfigFile)
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config already exists at %s\n", configPath)
		return nil
	}

	includes, err := detectIncludes(absPath)
	if err != nil {
		return fmt.Errorf("failed to scan repository: %w", err)
	}

	repoCfg := &config.RepoConfig{
		Name:    filepath.Base(absPath),
		Include: includes,
		Exclude: []string{},
	}
	if err := config.WriteRepoConfig(absPath, repoCfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Review and customize the config file\n")
	fmt.Printf("  2. Run: code-chunker chunk %s\n", absPath)

	return nil
}

// detectIncludes returns one pattern per supported extension present in the
// repository, or nil (all supported files) when none is found.
func detectIncludes(repoPath string) ([]string, error) {
	seen := make(map[string]bool)
	err := batch.NewWalker(nil, nil).Walk(repoPath, func(path string) error {
		name := filepath.Base(path)
		if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
			seen["**/*"+ext] = true
		} else {
			seen["**/"+name] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	includes := make([]string, 0, len(seen))
	for pattern := range seen {
		includes = append(includes, pattern)
	}
	slices.Sort(includes)
	return includes, nil
}
