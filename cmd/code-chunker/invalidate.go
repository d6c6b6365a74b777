// cmd/code-chunker/invalidate.go
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/randalmurphal/code-chunker/internal/batch"
	"github.com/randalmurphal/code-chunker/internal/config"
	"github.com/spf13/cobra"
)

var invalidateCmd = &cobra.Command{
	Use:   "invalidate-file [file-path]",
	Short: "Mark a file as needing re-chunking (for editor hooks)",
	Long: `Forgets the recorded hash of one file so the next chunk run
processes it again. When a shared Redis store is configured the
shared hash is removed too, so other machines re-chunk it as well.

The repository root is the nearest parent holding .code-chunker.yaml
or .git, unless --repo is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runInvalidateFile,
}

var invalidateRepo string

func init() {
	invalidateCmd.Flags().StringVar(&invalidateRepo, "repo", "", "Repository root (default: detected from the file path)")
	rootCmd.AddCommand(invalidateCmd)
}

func runInvalidateFile(cmd *cobra.Command, args []string) error {
	absPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	repoPath := invalidateRepo
	if repoPath == "" {
		root, ok := findRepoRoot(absPath)
		if !ok {
			return fmt.Errorf("no repository found for %s", absPath)
		}
		repoPath = root
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	repoCfg, err := config.LoadRepoConfigOrDefault(repoPath)
	if err != nil {
		return fmt.Errorf("failed to load repo config: %w", err)
	}

	runner := e.runner(batch.OptionsFromConfig(e.cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tracked, err := runner.Invalidate(ctx, repoPath, repoCfg.Name, absPath)
	if err != nil {
		return err
	}

	// stderr keeps hook output out of captured stdout
	if tracked {
		fmt.Fprintf(os.Stderr, "[code-chunker] Marked %s for re-chunking\n", filepath.Base(absPath))
	} else {
		fmt.Fprintf(os.Stderr, "[code-chunker] %s was not tracked\n", filepath.Base(absPath))
	}
	return nil
}
