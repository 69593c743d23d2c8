// Package cmd implements mailtreectl, a diagnostic CLI over the tree
// package: create an empty or seeded tree file, inspect one on disk,
// and rebuild one from a plain-text uid/position record list.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mailtreectl",
	Short: "Inspect and rebuild mailtree binary tree index files",
	Long: `mailtreectl operates directly on a mailbox binary tree index file
(the ".tree" sidecar a record-index owns), independent of any running
mail server. It exists for diagnostics: creating one from a plain-text
record list, inspecting its header and contents, and rebuilding it.`,
}

// Execute is the primary entry point for mailtreectl.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(rebuildCmd)
}
