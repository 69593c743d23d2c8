package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nomasters/mailtree/recordindex"
	"github.com/nomasters/mailtree/tree"
)

var (
	rebuildIndexID uint32
	rebuildRecords string
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild <path>",
	Short: "Reset a tree file and reinsert every record from a records file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		idx, err := loadFileIndex(rebuildIndexID, rebuildRecords)
		if err != nil {
			return err
		}

		t, err := tree.OpenOrCreate(idx, path, tree.DefaultConfig())
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer tree.Close(t)

		if err := idx.SetLock(recordindex.LockExclusive); err != nil {
			return err
		}
		if err := tree.Rebuild(t); err != nil {
			return fmt.Errorf("rebuild %s: %w", path, err)
		}

		fmt.Printf("rebuilt %s from %d records\n", path, len(idx.records))
		return nil
	},
}

func init() {
	rebuildCmd.Flags().Uint32Var(&rebuildIndexID, "indexid", 1, "indexid to stamp into the rebuilt tree file")
	rebuildCmd.Flags().StringVar(&rebuildRecords, "records", "", "records file (\"<uid> <position>\" per line) to rebuild from")
	_ = rebuildCmd.MarkFlagRequired("records")
}
