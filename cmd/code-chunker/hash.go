// cmd/code-chunker/hash.go
package main

import (
	"fmt"

	"github.com/randalmurphal/code-chunker/internal/fsutil"
	"github.com/spf13/cobra"
)

var hashCmd = &cobra.Command{
	Use:   "hash [file...]",
	Short: "Print the content hash used for change detection",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			sum, err := fsutil.HashFile(path)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s\n", sum, path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashCmd)
}
