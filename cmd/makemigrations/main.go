// Command makemigrations scans a Go module for model declarations, diffs
// them against the migration history already on disk, and writes the
// migration that reconciles the two. It is the Go-native analog of cot-cli's
// "makemigrations" subcommand, split out here into its own binary since this
// module has no web-framework CLI surrounding it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "makemigrations",
	Short: "Generate schema migrations from model declarations",
	Long: `makemigrations scans a Go module for //model declarations and
generates the migration file needed to bring the stored schema history in
line with the current source.

  makemigrations generate [path]   - diff models against history, write a migration
  makemigrations list [path]       - list migrations known to an app`,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(listCmd)
}

func fail(err error) error {
	return fmt.Errorf("makemigrations: %w", err)
}
