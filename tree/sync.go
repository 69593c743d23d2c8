package tree

// Flush writes every dirty byte up to mmap_highwater back to disk via
// msync and resets the dirty-tracking state — mail_tree_sync_file.
// Anonymous trees and clean (unmodified) trees are no-ops, matching the
// original's early-return guard. The returned fd, when non-negative, is
// the tree's own file descriptor, for a caller that wants to batch an
// fsync() alongside its own (mail_tree_sync_file's *fsync_fd out
// parameter, returned here instead since Go has no C-style out params).
func (t *Tree) Flush() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.mustNotClosed(); err != nil {
		return -1, err
	}

	if !t.modified || t.anonMmap {
		return -1, nil
	}

	if err := t.msyncRange(0, t.mmapHighwater); err != nil {
		return -1, t.setSyscallError("msync()", err)
	}

	t.mmapHighwater = t.mmapUsedLength
	t.modified = false
	return t.fd, nil
}
