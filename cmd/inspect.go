package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nomasters/mailtree/tree"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>",
	Short: "Print a tree file's header and contents without modifying it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := tree.Inspect(args[0])
		if err != nil {
			return fmt.Errorf("inspect %s: %w", args[0], err)
		}

		fmt.Printf("path:            %s\n", summary.Path)
		fmt.Printf("version:         %d\n", summary.Version)
		fmt.Printf("indexid:         %d\n", summary.IndexID)
		fmt.Printf("sync_id:         %d\n", summary.SyncID)
		fmt.Printf("used_file_size:  %d\n", summary.UsedFileSize)
		fmt.Printf("full_file_size:  %d\n", summary.FullFileSize)
		fmt.Printf("checksum_valid:  %t\n", summary.ChecksumValid)
		fmt.Printf("entries:         %d\n", len(summary.Entries))
		for _, e := range summary.Entries {
			fmt.Printf("  uid=%d -> position=%d\n", e.UID, e.Position)
		}
		return nil
	},
}
