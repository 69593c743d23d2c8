// Package recordindex names the contract the mailbox binary tree index
// calls into on the record-index that owns it, and nothing more. The
// record-index itself — the file holding the canonical message records —
// lives outside this repository; this package only pins down the
// operations the tree depends on (set_lock, lookup/first/next, header
// access) so the tree package can be built and tested against a fake.
package recordindex

import "fmt"

// LockType mirrors the lock states the owning record-index can hold.
// Apart from Rebuild and OpenOrCreate's retry path, which escalate to
// LockExclusive via SetLock, the tree never acquires a lock itself — it
// asserts the caller already holds the state an operation requires.
type LockType int

const (
	LockUnlocked LockType = iota
	LockShared
	LockExclusive
)

func (l LockType) String() string {
	switch l {
	case LockUnlocked:
		return "unlocked"
	case LockShared:
		return "shared"
	case LockExclusive:
		return "exclusive"
	default:
		return fmt.Sprintf("LockType(%d)", int(l))
	}
}

// Flag is a bitmask of flags stored on the record-index header.
type Flag uint32

const (
	// FlagRebuildTree is set by the tree when a rebuild is deferred to
	// the next opener (e.g. a rebuild attempted mid-insert failed).
	FlagRebuildTree Flag = 1 << iota
)

// Header exposes the subset of the record-index header the tree reads
// or mutates: messages_count for growth sizing, indexid for identity
// checks, and the flags/nodiskspace/inconsistent/mmap_invalidate bits
// the original's call sites touch on the record-index side.
type Header interface {
	// MessagesCount is read during growth sizing.
	MessagesCount() uint32
	// IndexID identifies the record-index; mismatch against the tree's
	// own header.indexid means the tree file is foreign or stale.
	IndexID() uint32
	// Flags returns the current flag bitmask.
	Flags() Flag
	// SetFlags ORs additional bits into the flag bitmask.
	SetFlags(Flag)
	// MMapInvalidate reports whether the tree must issue an
	// MS_SYNC|MS_INVALIDATE flush before remapping.
	MMapInvalidate() bool
}

// Record is an opaque handle to one record-index entry. The tree never
// interprets it beyond the two accessors below.
type Record interface {
	// UID is the message UID stored at this record.
	UID() uint32
	// Position converts the record into the record-index's byte
	// position, the value the tree stores alongside the UID
	// (INDEX_RECORD_INDEX in the original source).
	Position() uint32
}

// Index is the contract the tree calls on its owning record-index.
type Index interface {
	// SetLock blocks until the requested lock mode is acquired.
	SetLock(LockType) error
	// LockType reports the lock state currently held.
	LockType() LockType

	// First returns the first record in UID order, or nil if the
	// record-index is empty.
	First() (Record, error)
	// Next returns the record following prev in UID order, or nil at
	// the end of the index.
	Next(prev Record) (Record, error)

	// Header exposes messages_count/indexid/flags/mmap_invalidate.
	Header() Header

	// SetNoDiskSpace marks the record-index as having hit ENOSPC on a
	// tree-owned syscall.
	SetNoDiskSpace()
	// SetInconsistent marks the record-index inconsistent, e.g. after
	// the tree detects corruption.
	SetInconsistent()
	// SetError records a descriptive error message against the
	// record-index, the way index_set_error does in the original
	// source.
	SetError(format string, args ...interface{})
}
