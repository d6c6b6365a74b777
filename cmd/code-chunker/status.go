// cmd/code-chunker/status.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/randalmurphal/code-chunker/internal/batch"
	"github.com/randalmurphal/code-chunker/internal/config"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [repo-name-or-path]",
	Short: "Show what the next chunk run would do",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var statusVerbose bool

func init() {
	statusCmd.Flags().BoolVarP(&statusVerbose, "verbose", "v", false, "List individual files")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	runner := e.runner(batch.OptionsFromConfig(e.cfg))

	st, err := runner.Status(absPath, repoCfg)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	fmt.Printf("Repository: %s (%s)\n", repoCfg.Name, absPath)
	fmt.Printf("Manifest:   %s\n\n", runner.ManifestPath())
	fmt.Printf("  Tracked:   %d\n", st.Tracked)
	fmt.Printf("  Unchanged: %d\n", st.Unchanged)
	fmt.Printf("  Changed:   %d\n", len(st.Changed))
	fmt.Printf("  New:       %d\n", len(st.New))
	fmt.Printf("  Missing:   %d\n", len(st.Missing))

	if store := e.redisStore(); store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if v, err := store.GetRunVersion(ctx, repoCfg.Name); err == nil {
			fmt.Printf("  Run version: %d\n", v)
		}
	}

	if statusVerbose {
		printPaths("Changed", st.Changed)
		printPaths("New", st.New)
		printPaths("Missing", st.Missing)
	}

	if st.Pending() {
		fmt.Printf("\nRun: code-chunker chunk %s\n", absPath)
	} else {
		fmt.Println("\nUp to date.")
	}
	return nil
}

func printPaths(label string, paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", label)
	for _, p := range paths {
		fmt.Printf("    - %s\n", p)
	}
}
