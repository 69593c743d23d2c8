package tree

import (
	"fmt"
	"math"
)

// grow adds node slots to the tree, sized off the owning record-index's
// messages_count — _mail_tree_grow in the original. Growth never
// initializes the new slots; insertLocked allocates them lazily.
func (t *Tree) grow() error {
	messagesCount := int64(t.index.Header().MessagesCount())

	growCount := messagesCount * int64(t.cfg.GrowPercentage) / 100
	if growCount < defaultMinGrowCount {
		growCount = defaultMinGrowCount
	}

	newSize := t.mmapFullLength + growCount*int64(nodeSize)
	if newSize <= 0 || newSize > math.MaxInt32 {
		t.index.SetError("Grown binary tree file %s size %d not representable", t.filePath, newSize)
		return fmt.Errorf("mailtree: grown file size %d not representable", newSize)
	}

	if t.anonMmap {
		base, err := growAnon(t.mapping, newSize)
		if err != nil {
			return t.setSyscallError("mremap_anon()", err)
		}
		t.mapping = base
		t.mmapFullLength = newSize
		return t.verify()
	}

	if err := setFileSize(t.fd, newSize); err != nil {
		return t.setSyscallError("file_set_size()", err)
	}

	hdr, err := t.header()
	if err != nil {
		return err
	}
	hdr.bumpSyncID()
	hdr.updateChecksum()
	t.markDirty(headerSize)

	return t.ensureCurrent(true)
}
