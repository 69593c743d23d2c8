//go:build unix

package tree

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// validateTreeFileOwnership enforces storage/mmap/security.go's
// ownership policy (current-user owned, never world-writable) against
// the tree's own file, re-targeted from haystack's 0600 data files to
// the record-index's 0660 group-shared convention (mail_tree_open
// opens with mode 0660, matching Dovecot's shared-mailbox group
// permissions).
func validateTreeFileOwnership(path string) error {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fmt.Errorf("mailtree: stat %s: %w", path, err)
	}

	if st.Uid != uint32(os.Getuid()) {
		return fmt.Errorf("mailtree: tree file %s must be owned by the current user (uid %d), got uid %d",
			path, os.Getuid(), st.Uid)
	}

	if os.FileMode(st.Mode).Perm()&0002 != 0 {
		return fmt.Errorf("mailtree: tree file %s is world-writable", path)
	}

	return nil
}
