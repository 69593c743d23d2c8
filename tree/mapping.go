package tree

import (
	"fmt"

	"github.com/nomasters/mailtree/recordindex"
)

// remap releases any prior file-backed mapping (msync if dirty, then
// munmap) and maps the entire current file length read-write,
// mirroring mmap_update. Anonymous mode never enters this path —
// anonymous trees are sized by allocAnon/growAnon instead.
func (t *Tree) remap() error {
	if t.anonMmap {
		panic("mailtree: remap() called on an anonymous tree")
	}

	if t.mapping != nil {
		if t.modified {
			if err := t.msyncRange(0, t.mmapHighwater); err != nil {
				return t.setSyscallError("msync()", err)
			}
			t.modified = false
		}
		if err := t.munmapFile(); err != nil {
			t.setSyscallError("munmap()", err)
		}
	}

	t.mmapUsedLength = 0
	t.mapping = nil

	base, length, err := t.mmapFile()
	if err != nil {
		t.mapping = nil
		return t.setSyscallError("mmap()", err)
	}

	t.mapping = base
	t.mmapFullLength = length
	return nil
}

// verify enforces the invariants expected of a fresh mapping: minimum
// size, node-size alignment (truncating a trailing partial record when
// the caller holds the lock that makes the truncate safe), used_file_size
// bounds, and the additive header checksum. Any violation is corruption:
// the owning index is marked inconsistent and the file unlinked.
func (t *Tree) verify() error {
	return t.verifyCommon(true)
}

// verifyReadOnly runs the same checks but never marks the owning index
// inconsistent or unlinks the file on failure — used by Inspect, which
// must report corruption without acting on it.
func (t *Tree) verifyReadOnly() error {
	return t.verifyCommon(false)
}

func (t *Tree) verifyCommon(destructive bool) error {
	if t.mmapFullLength < int64(headerSize+nodeSize) {
		return t.setCorrupted(destructive, "too small binary tree file (%d bytes)", t.mmapFullLength)
	}

	extra := (t.mmapFullLength - headerSize) % nodeSize
	if extra != 0 {
		// A partial write or corruption left a trailing fragment of a
		// node. The original's unconditional truncate here is racy, so
		// we only perform it when the caller is known to hold the
		// exclusive lock the truncate requires.
		if t.anonMmap || t.index.LockType() != recordindex.LockExclusive {
			t.index.SetError("Binary tree file %s has a trailing partial node (%d bytes); retry under exclusive lock", t.filePath, extra)
			return ErrRetryUnderLock
		}
		newLength := t.mmapFullLength - extra
		if err := t.truncateFile(newLength); err != nil {
			return t.setSyscallError("ftruncate()", err)
		}
		// Re-map at the corrected length rather than re-slicing: munmap
		// needs the exact base/length pair mmap() returned, so a shrunk
		// slice handed to it later would unmap only part of the region
		// and leak the rest.
		if err := t.munmapFile(); err != nil {
			return t.setSyscallError("munmap()", err)
		}
		base, length, err := t.mmapFile()
		if err != nil {
			t.mapping = nil
			return t.setSyscallError("mmap()", err)
		}
		t.mapping = base
		t.mmapFullLength = length
	}

	hdr, err := t.header()
	if err != nil {
		return t.setCorrupted(destructive, "no header in mapping: %v", err)
	}

	if !hdr.magicOK() {
		return t.setCorrupted(destructive, "bad magic in header")
	}

	if hdr.version() != formatVersion {
		return t.setCorrupted(destructive, "unsupported format version %d (want %d)", hdr.version(), formatVersion)
	}

	used := int64(hdr.usedFileSize())
	if used > t.mmapFullLength {
		return t.setCorrupted(destructive,
			"used_file_size larger than real file size (%d vs %d)",
			used, t.mmapFullLength)
	}

	if used < int64(headerSize) || (used-int64(headerSize))%nodeSize != 0 {
		return t.setCorrupted(destructive, "invalid used_file_size in header (%d)", used)
	}

	if !hdr.checksumOK() {
		return t.setCorrupted(destructive, "header checksum mismatch")
	}

	t.syncID = hdr.syncID()
	t.mmapUsedLength = used
	t.mmapHighwater = t.mmapUsedLength
	return nil
}

// ensureCurrent is mail_tree's cheap-refresh path: if forced is false
// and the cached sync_id still matches the header, only
// mmap_used_length is refreshed (with a fatal invariant check, since a
// larger used_file_size without a sync_id bump can never legitimately
// happen). Otherwise it performs a full remap + verify. When the owning
// index requests cache invalidation, an MS_SYNC|MS_INVALIDATE flush is
// issued first.
func (t *Tree) ensureCurrent(forced bool) error {
	if t.index.Header().MMapInvalidate() && t.mapping != nil && !t.anonMmap {
		if err := t.msyncInvalidate(0, t.mmapUsedLength); err != nil {
			return t.setSyscallError("msync()", err)
		}
	}

	if !forced && t.mapping != nil {
		hdr, err := t.header()
		if err == nil && t.syncID == hdr.syncID() {
			used := int64(hdr.usedFileSize())
			if used > t.mmapFullLength {
				panic(fmt.Sprintf(
					"mailtree: tree file size was grown without updating sync_id (used=%d full=%d)",
					used, t.mmapFullLength))
			}
			t.mmapUsedLength = used
			return nil
		}
	}

	if t.anonMmap {
		// Anonymous mappings are never remapped from disk; a forced
		// refresh just means re-deriving the cached views, which
		// verify() already does against the in-memory region.
		return t.verify()
	}

	if err := t.remap(); err != nil {
		return err
	}
	return t.verify()
}
