// cmd/code-chunker/stats.go
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/randalmurphal/code-chunker/internal/metrics"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize chunking runs",
	Long:  `Summarize chunking runs from the metrics log.`,
	RunE:  runStats,
}

var (
	statsSince   string
	statsFailed  bool
	statsLastRun bool
	statsJSON    bool
)

func init() {
	statsCmd.Flags().StringVar(&statsSince, "last", "7d", "Time period (e.g., 1h, 24h, 7d, 30d)")
	statsCmd.Flags().BoolVar(&statsFailed, "failed", false, "Show only files that failed to chunk")
	statsCmd.Flags().BoolVar(&statsLastRun, "last-run", false, "Show only the most recent run")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	duration, err := parseDuration(statsSince)
	if err != nil {
		return fmt.Errorf("invalid time period: %w", err)
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	metricsPath := e.cfg.Metrics.Path
	if _, err := os.Stat(metricsPath); os.IsNotExist(err) {
		fmt.Println("No metrics data found. Run 'code-chunker chunk' to generate metrics.")
		return nil
	}

	analyzer := metrics.NewAnalyzer(metricsPath)

	switch {
	case statsLastRun:
		last, err := analyzer.LastRun()
		if errors.Is(err, metrics.ErrNoRuns) {
			fmt.Println("No completed runs.")
			return nil
		}
		if err != nil {
			return err
		}
		if statsJSON {
			return printJSON(last)
		}
		fmt.Printf("Last run %s (%s):\n\n", last.RunID, last.TS.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("  Repository:    %s\n", last.Repo)
		fmt.Printf("  Files seen:    %d\n", last.FilesSeen)
		fmt.Printf("  Files chunked: %d\n", last.FilesChunked)
		fmt.Printf("  Files skipped: %d\n", last.FilesSkipped)
		fmt.Printf("  Chunks:        %d\n", last.Chunks)
		fmt.Printf("  Errors:        %d\n", last.Errors)
		fmt.Printf("  Duration:      %dms\n", last.DurationMs)
		return nil

	case statsFailed:
		failed, err := analyzer.FailedFiles(duration)
		if err != nil {
			return err
		}
		if statsJSON {
			return printJSON(failed)
		}
		fmt.Printf("Failed files (last %s):\n\n", statsSince)
		if len(failed) == 0 {
			fmt.Println("  No failures found.")
		}
		for _, f := range failed {
			fmt.Printf("  - %s (%d times)\n", f.Path, f.Count)
		}
		return nil
	}

	summary, err := analyzer.Analyze(duration)
	if err != nil {
		return err
	}

	if statsJSON {
		return printJSON(summary)
	}

	fmt.Printf("Chunking Summary (last %s):\n\n", statsSince)
	fmt.Printf("  Runs:          %d\n", summary.Runs)
	fmt.Printf("  Files chunked: %d\n", summary.FilesChunked)
	fmt.Printf("  Files skipped: %d\n", summary.FilesSkipped)
	fmt.Printf("  Chunks:        %d\n", summary.Chunks)
	fmt.Printf("  Lines:         %d\n", summary.Lines)
	fmt.Printf("  Errors:        %d\n", summary.Errors)
	fmt.Println()
	if len(summary.ByStrategy) > 0 {
		fmt.Println("  Files by strategy:")
		strategies := make([]string, 0, len(summary.ByStrategy))
		for s := range summary.ByStrategy {
			strategies = append(strategies, s)
		}
		slices.Sort(strategies)
		for _, s := range strategies {
			fmt.Printf("    - %s: %d\n", s, summary.ByStrategy[s])
		}
		fmt.Println()
	}
	if len(summary.Slowest) > 0 {
		fmt.Println("  Slowest files:")
		for _, f := range summary.Slowest {
			fmt.Printf("    - %s (%dms)\n", f.Path, f.DurationMs)
		}
	}

	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
