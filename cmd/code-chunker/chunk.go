// cmd/code-chunker/chunk.go
package main

import (
	"fmt"
	"time"

	"github.com/randalmurphal/code-chunker/internal/batch"
	"github.com/randalmurphal/code-chunker/internal/config"
	"github.com/spf13/cobra"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [repo-name-or-path]",
	Short: "Chunk a repository",
	Long: `Walk a repository, chunk every matching file and write one document
per file under the output directory. Files whose content hash is
unchanged since the last run are skipped unless --force is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runChunk,
}

var (
	chunkOut     string
	chunkForce   bool
	chunkWorkers int
)

func init() {
	chunkCmd.Flags().StringVar(&chunkOut, "out", "", "Output directory (default from config)")
	chunkCmd.Flags().BoolVar(&chunkForce, "force", false, "Re-chunk files even when unchanged")
	chunkCmd.Flags().IntVar(&chunkWorkers, "workers", 0, "Concurrent files (default from config)")
	rootCmd.AddCommand(chunkCmd)
}

func runChunk(cmd *cobra.Command, args []string) error {
	absPath, err := resolveRepoPath(args[0])
	if err != nil {
		return err
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	repoCfg, err := config.LoadRepoConfigOrDefault(absPath)
	if err != nil {
		return fmt.Errorf("failed to load repo config: %w", err)
	}

	opts := batch.OptionsFromConfig(e.cfg)
	opts.Force = chunkForce
	if chunkOut != "" {
		opts.OutDir = chunkOut
	}
	if chunkWorkers > 0 {
		opts.Workers = chunkWorkers
	}

	runner := e.runner(opts)

	ctx, cancel := commandContext()
	defer cancel()

	fmt.Printf("Chunking %s (%s)...\n", repoCfg.Name, absPath)

	result, err := runner.Run(ctx, absPath, repoCfg)
	if err != nil {
		return fmt.Errorf("chunking failed: %w", err)
	}

	fmt.Printf("\nChunking complete (run %s, %s):\n", result.RunID, result.Duration.Round(time.Millisecond))
	fmt.Printf("  Files seen:      %d\n", result.FilesSeen)
	fmt.Printf("  Files chunked:   %d\n", result.FilesChunked)
	fmt.Printf("  Files skipped:   %d\n", result.FilesSkipped)
	fmt.Printf("  Chunks created:  %d\n", result.ChunksCreated)
	fmt.Printf("  Lines seen:      %d\n", result.LinesSeen)
	if result.Redactions > 0 {
		fmt.Printf("  Redactions:      %d\n", result.Redactions)
	}
	if len(result.Removed) > 0 {
		fmt.Printf("  Removed:         %d\n", len(result.Removed))
	}
	fmt.Printf("  Output:          %s\n", opts.OutDir)

	if len(result.Errors) > 0 {
		fmt.Printf("  Errors: %d\n", len(result.Errors))
		for _, err := range result.Errors {
			fmt.Printf("    - %v\n", err)
		}
	}

	return nil
}
