// cmd/code-chunker/inspect.go
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/randalmurphal/code-chunker/internal/batch"
	"github.com/randalmurphal/code-chunker/internal/chunk"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Chunk a single file and print the result",
	Long: `Chunk one file and print the document that a run would write for it,
or its chunk records as JSON. Nothing is written to disk.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

var inspectJSON bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Output chunk records as JSON")
	rootCmd.AddCommand(inspectCmd)
}

type inspectOutput struct {
	Path     string         `json:"path"`
	Strategy string         `json:"strategy"`
	Lines    int            `json:"lines"`
	Tokens   int            `json:"tokens"`
	Chunks   []chunk.Record `json:"chunks"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := commandContext()
	defer cancel()

	res := e.chunker().ChunkFileResult(ctx, path)
	if res.Err != nil {
		return fmt.Errorf("failed to chunk %s: %w", path, res.Err)
	}

	if inspectJSON {
		out := inspectOutput{
			Path:     path,
			Strategy: string(res.Strategy),
			Lines:    res.LineCount,
			Chunks:   chunk.ToRecords(res.Chunks),
		}
		for _, c := range res.Chunks {
			out.Tokens += chunk.TokenEstimate(c)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Print(batch.Render(path, res.Chunks, res.LineCount))
	return nil
}
