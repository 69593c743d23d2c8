// Package tree implements the mailbox binary tree index: a persistent,
// memory-mapped, self-contained on-disk data structure mapping message
// UIDs to record positions in a sibling record-index file. This file
// holds the exported handle type and the thin read/write operations
// built on top of the mapping, header, node-store, growth, truncate,
// rbtree, and lifecycle pieces in the rest of the package.
package tree

import (
	"fmt"
	"sync"

	"github.com/nomasters/mailtree/logger"
	"github.com/nomasters/mailtree/recordindex"
)

// Tree is the in-memory, not-persisted handle: an owning record-index
// back-reference, a file descriptor (or -1 for anonymous), a path (or
// synthetic label), and the mapping bookkeeping fields. header/node_base
// views are deliberately not cached here — they are re-derived from the
// current mapping on every access, so a remap can never leave a stale
// view dangling.
type Tree struct {
	mu sync.Mutex

	index recordindex.Index
	cfg   *Config
	log   logger.Logger

	fd       int // -1 for anonymous
	filePath string

	mapping        []byte
	mmapFullLength int64
	mmapUsedLength int64
	mmapHighwater  int64

	syncID   uint64 // cached sync_id, compared against header.sync_id
	modified bool
	anonMmap bool

	closed bool
}

// FilePath returns the tree's backing file path, or its synthetic
// in-memory label for an anonymous tree.
func (t *Tree) FilePath() string { return t.filePath }

// IsAnonymous reports whether the tree is backed by an anonymous
// mapping rather than a file.
func (t *Tree) IsAnonymous() bool { return t.anonMmap }

// mustNotClosed is the Go expression of the handle-either-valid-or-null
// invariant: any operation on a closed handle fails fast rather than
// touching a stale mapping.
func (t *Tree) mustNotClosed() error {
	if t.closed {
		return ErrClosed
	}
	return nil
}

// header returns a fresh view over the current mapping's header.
// Callers must not retain it across any call that can remap (grow,
// truncate, ensureCurrent(forced) when stale).
func (t *Tree) header() (headerView, error) {
	if t.mapping == nil {
		return headerView{}, fmt.Errorf("mailtree: no mapping")
	}
	return newHeaderView(t.mapping)
}

// nodes returns a fresh view over the current mapping's node store,
// bounded to the logical (used) node count.
func (t *Tree) nodes() (nodeStore, error) {
	if t.mapping == nil {
		return nodeStore{}, fmt.Errorf("mailtree: no mapping")
	}
	return newNodeStore(t.mapping, uint64(t.mmapUsedLength))
}

// markDirty records that bytes up to offset (header-relative) have
// been mutated since the last flush, extending mmap_highwater
// monotonically so Flush's msync range always covers every dirty byte.
func (t *Tree) markDirty(throughOffset int64) {
	t.modified = true
	if throughOffset > t.mmapHighwater {
		t.mmapHighwater = throughOffset
	}
}

// Lookup returns the record position stored for uid, or ErrNotFound.
// Read-only: calls ensureCurrent(false) first, matching
// mail_tree_lookup's contract.
func (t *Tree) Lookup(uid uint32) (uint32, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.mustNotClosed(); err != nil {
		return 0, err
	}
	if err := t.ensureCurrent(false); err != nil {
		return 0, err
	}
	return t.lookupLocked(uid)
}

// Insert adds (uid, recordPosition) to the tree. Requires the owning
// record-index to be held EXCLUSIVE; duplicate UIDs are a programmer
// error — the record-index guarantees UID uniqueness, so Insert
// asserts it via a panic rather than returning an error.
func (t *Tree) Insert(uid, recordPosition uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.mustNotClosed(); err != nil {
		return err
	}
	t.assertExclusive("Insert")
	if err := t.ensureCurrent(false); err != nil {
		return err
	}
	return t.insertLocked(uid, recordPosition)
}

// Delete removes uid from the tree, or returns ErrNotFound. Requires
// the owning record-index to be held EXCLUSIVE.
func (t *Tree) Delete(uid uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.mustNotClosed(); err != nil {
		return err
	}
	t.assertExclusive("Delete")
	if err := t.ensureCurrent(false); err != nil {
		return err
	}
	return t.deleteLocked(uid)
}

// InOrder returns every (uid, position) pair in ascending UID order.
// It is read-only and refreshes the mapping first. (Rebuild does not
// use it: it replays records from the owning index's First/Next.)
func (t *Tree) InOrder() ([]UIDPosition, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.mustNotClosed(); err != nil {
		return nil, err
	}
	if err := t.ensureCurrent(false); err != nil {
		return nil, err
	}
	return t.inOrderLocked()
}

// UIDPosition is one (uid, record position) pair, returned by InOrder.
type UIDPosition struct {
	UID      uint32
	Position uint32
}
