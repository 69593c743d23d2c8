package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nomasters/mailtree/recordindex"
	"github.com/nomasters/mailtree/tree"
)

var (
	createIndexID uint32
	createRecords string
)

var createCmd = &cobra.Command{
	Use:   "create <path>",
	Short: "Create a new tree file, optionally seeded from a records file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		idx, err := loadFileIndex(createIndexID, createRecords)
		if err != nil {
			return err
		}
		if err := idx.SetLock(recordindex.LockExclusive); err != nil {
			return err
		}

		t, err := tree.Create(idx, path, tree.DefaultConfig())
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer tree.Close(t)

		fmt.Printf("created %s (indexid=%d, %d records)\n", path, createIndexID, len(idx.records))
		return nil
	},
}

func init() {
	createCmd.Flags().Uint32Var(&createIndexID, "indexid", 1, "indexid to stamp into the new tree file")
	createCmd.Flags().StringVar(&createRecords, "records", "", "optional records file (\"<uid> <position>\" per line) to seed the tree from")
}
