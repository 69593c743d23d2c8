package tree

import (
	"fmt"
	"os"

	liberrors "github.com/nomasters/mailtree/errors"
)

// Sentinel errors, grouped by the side effect each one carries: disk
// exhaustion, other syscall failures, and corruption. Callers compare
// with errors.Is; each is an errors.Error const string rather than an
// errors.New value so the zero-allocation comparison survives wrapping
// with fmt.Errorf's %w.
const (
	// ErrDiskFull is returned when a syscall failed with ENOSPC/EDQUOT.
	// The owning record-index's NoDiskSpace flag is set; no file
	// content changes.
	ErrDiskFull = liberrors.Error("mailtree: no disk space")

	// ErrSyscall wraps any other syscall failure. A descriptive message
	// is always recorded on the owning record-index alongside it.
	ErrSyscall = liberrors.Error("mailtree: syscall failed")

	// ErrCorrupted is returned when the header/size invariants verify()
	// checks are violated. The owning record-index is marked inconsistent
	// and the tree file is unlinked before this is returned. An indexid
	// mismatch is reported as ErrIndexIDMismatch instead.
	ErrCorrupted = liberrors.Error("mailtree: corrupted binary tree file")

	// ErrIndexIDMismatch is returned when an opened tree file's indexid
	// differs from the owning index's — mail_tree_open_init reports this
	// case with its own message distinct from the generic corruption
	// path, so we keep the distinction here too. Unlike ErrCorrupted, the
	// owning index is not marked inconsistent and the file is not
	// unlinked; OpenOrCreate rebuilds the tree in place in the same file.
	ErrIndexIDMismatch = liberrors.Error("mailtree: indexid mismatch")

	// ErrRetryUnderLock is returned instead of silently truncating a
	// trailing partial node when the caller isn't known to hold an
	// exclusive lock — a conservative departure from mmap_verify's
	// unconditional (and racy) truncate in the original.
	ErrRetryUnderLock = liberrors.Error("mailtree: retry under exclusive lock")

	// ErrDuplicateUID is a programmer-error assertion: the record-index
	// guarantees UIDs are unique and monotonic, so Insert must never
	// see one already present.
	ErrDuplicateUID = liberrors.Error("mailtree: duplicate uid")

	// ErrNotFound is returned by Lookup/Delete when the UID isn't
	// present in the tree.
	ErrNotFound = liberrors.Error("mailtree: uid not found")

	// ErrClosed is returned by Lookup, Insert, Delete, InOrder and Flush
	// when called on a handle after Close/Free.
	ErrClosed = liberrors.Error("mailtree: handle closed")

	// errShortMapping guards the typed node-store view: a mapping
	// smaller than the header alone can never happen after a
	// successful verify(), so this only fires on a programmer error
	// reusing a view across an invalidated mapping.
	errShortMapping = liberrors.Error("mailtree: mapping shorter than header")
)

// setSyscallError classifies a syscall failure and records it on the
// owning index, mirroring tree_set_syscall_error: ENOSPC/EDQUOT set
// NoDiskSpace with no further message, anything else records a
// descriptive message.
func (t *Tree) setSyscallError(function string, err error) error {
	if isDiskFull(err) {
		t.index.SetNoDiskSpace()
		return fmt.Errorf("%s: %w", function, ErrDiskFull)
	}

	t.index.SetError("%s failed with binary tree file %s: %v", function, t.filePath, err)
	return fmt.Errorf("%s failed with binary tree file %s: %w: %v", function, t.filePath, ErrSyscall, err)
}

// setCorrupted records a corruption message, marks the owning index
// inconsistent, and unlinks the tree file — _mail_tree_set_corrupted
// line for line. Unlink happens here, before the handle's own fd/mapping
// are ever released on the caller's exit path, so any process still
// holding the old fd/mapping keeps reading through it until it closes.
//
// A purely diagnostic caller (Inspect) passes destructive=false: the
// corruption is still reported and wrapped in ErrCorrupted, but neither
// SetInconsistent nor the unlink runs, since a tool asked to look at a
// file must never be the reason it disappears.
func (t *Tree) setCorrupted(destructive bool, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)

	if destructive {
		t.index.SetError("Corrupted binary tree file %s: %s", t.filePath, msg)
		t.index.SetInconsistent()

		if !t.anonMmap && t.filePath != "" {
			_ = os.Remove(t.filePath)
		}
	}

	return fmt.Errorf("%s: %w: %s", t.filePath, ErrCorrupted, msg)
}
