package tree

import (
	"fmt"

	liberrors "github.com/nomasters/mailtree/errors"
	"github.com/nomasters/mailtree/recordindex"
)

// errJustCreated is an internal sentinel: the backing file existed but
// was empty, meaning this process raced mail_tree_open's create path
// and won — mail_tree_open_init's "tree->mmap_full_length == 0" check.
const errJustCreated = liberrors.Error("mailtree: tree file just created")

// Create builds a brand-new tree (file-backed unless cfg.Anonymous),
// rebuilding it from the owning index's records — mail_tree_create.
// The owning index must already be held exclusive.
func Create(index recordindex.Index, filePath string, cfg *Config) (*Tree, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if index.LockType() != recordindex.LockExclusive {
		panic("mailtree: Create requires the owning record-index to be held exclusive")
	}

	t, err := newHandle(index, filePath, cfg)
	if err != nil {
		return nil, err
	}

	if err := Rebuild(t); err != nil {
		_ = Free(t)
		return nil, err
	}
	return t, nil
}

// OpenOrCreate opens an existing tree file, rebuilding it if it's
// missing, empty, or fails verification — mail_tree_open_or_create,
// including its double-check-under-exclusive-lock retry so two
// processes that notice corruption at the same moment don't both
// rebuild it.
func OpenOrCreate(index recordindex.Index, filePath string, cfg *Config) (*Tree, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	t, err := newHandle(index, filePath, cfg)
	if err != nil {
		return nil, err
	}

	if err := openInit(t); err == nil {
		return t, nil
	}

	if err := index.SetLock(recordindex.LockExclusive); err != nil {
		_ = Free(t)
		return nil, err
	}

	if err := openInit(t); err != nil {
		if err := Rebuild(t); err != nil {
			_ = Free(t)
			return nil, err
		}
	}
	return t, nil
}

// newHandle allocates the Tree struct and opens (or anon-allocates) its
// backing storage, without touching the mapping yet.
func newHandle(index recordindex.Index, filePath string, cfg *Config) (*Tree, error) {
	t := &Tree{
		index: index,
		cfg:   cfg,
		log:   cfg.logger(),
	}

	if cfg.Anonymous {
		t.anonMmap = true
		t.fd = -1
		if filePath == "" {
			filePath = "(in-memory tree index)"
		}
		t.filePath = filePath
		return t, nil
	}

	if err := validateTreePath(filePath); err != nil {
		return nil, err
	}

	fd, err := openOrCreateFile(filePath)
	if err != nil {
		return nil, t.setSyscallError("open()", err)
	}
	t.fd = fd
	t.filePath = filePath

	if err := validateTreeFileOwnership(filePath); err != nil {
		_ = closeFile(fd)
		t.fd = -1
		return nil, err
	}
	return t, nil
}

// openInit mirrors mail_tree_open_init: map the file, detect "just
// created" (empty) as a distinguishable failure from real corruption,
// verify, and confirm indexid identity.
func openInit(t *Tree) error {
	size, err := fileSize(t.fd)
	if err != nil {
		return t.setSyscallError("fstat()", err)
	}
	if size == 0 {
		return errJustCreated
	}

	if err := t.remap(); err != nil {
		return err
	}
	if err := t.verify(); err != nil {
		return err
	}

	hdr, err := t.header()
	if err != nil {
		return err
	}
	if hdr.indexID() != t.index.Header().IndexID() {
		t.index.SetError("IndexID mismatch for binary tree file %s", t.filePath)
		return ErrIndexIDMismatch
	}
	return nil
}

// Reset reinitializes the tree to a single-sentinel, empty state —
// mail_tree_init followed by mail_tree_reset. The owning index must be
// held exclusive. On failure the owning index's rebuild-pending flag is
// set so a later opener retries rather than running with a half-reset
// tree.
func Reset(t *Tree) error {
	t.assertExclusive("Reset")

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := resetStorage(t); err != nil {
		t.index.Header().SetFlags(recordindex.FlagRebuildTree)
		return err
	}
	return nil
}

// resetStorage does the actual zero-node (re)initialization: a single
// MIN_SIZE region containing only the header and its sentinel node.
func resetStorage(t *Tree) error {
	minSize := t.cfg.minSize()

	if t.anonMmap {
		if t.mapping != nil {
			_ = freeAnon(t.mapping)
		}
		base, err := allocAnon(minSize)
		if err != nil {
			return t.setSyscallError("mmap_anon()", err)
		}
		t.mapping = base
		t.mmapFullLength = minSize
		t.fd = -1

		hdr, err := t.header()
		if err != nil {
			return err
		}
		hdr.resetEmpty(t.index.Header().IndexID())
		if err := t.verify(); err != nil {
			return err
		}
		return initSentinel(t)
	}

	var hdr [headerSize]byte
	view := headerView{b: hdr[:]}
	view.resetEmpty(t.index.Header().IndexID())

	if err := writeFullAt(t.fd, hdr[:]); err != nil {
		return t.setSyscallError("write_full()", err)
	}
	if err := setFileSize(t.fd, minSize); err != nil {
		return t.setSyscallError("file_set_size()", err)
	}

	if err := t.ensureCurrent(true); err != nil {
		return err
	}
	return initSentinel(t)
}

// initSentinel writes node 0's color explicitly, since a freshly
// zero-filled mmap/ftruncate region would otherwise leave it red (0) —
// the sentinel must always be black, never flagged by verify() since
// node-store content isn't covered by the header checksum.
func initSentinel(t *Tree) error {
	ns, err := t.nodes()
	if err != nil {
		return err
	}
	ns.node(sentinelIndex).setColor(black)
	t.markDirty(int64(headerSize + nodeSize))
	return nil
}

// Rebuild resets the tree and reinserts every record the owning index
// currently holds, in UID order — mail_tree_rebuild. Requires (and
// acquires, if not already held) an exclusive lock on the owning index.
func Rebuild(t *Tree) error {
	if t.index.LockType() != recordindex.LockExclusive {
		if err := t.index.SetLock(recordindex.LockExclusive); err != nil {
			return err
		}
	}

	if err := Reset(t); err != nil {
		return err
	}

	rec, err := t.index.First()
	if err != nil {
		return err
	}
	for rec != nil {
		if err := t.Insert(rec.UID(), rec.Position()); err != nil {
			t.index.Header().SetFlags(recordindex.FlagRebuildTree)
			return err
		}
		rec, err = t.index.Next(rec)
		if err != nil {
			return err
		}
	}
	return nil
}

// Close releases the tree's mapping and file descriptor, without
// freeing the handle — mail_tree_close. It does not msync: dirty pages
// of a file-backed mapping are left to the kernel, so a caller that
// needs them on disk calls Flush first. After Close, Lookup, Insert,
// Delete, InOrder and Flush on t return ErrClosed.
func Close(t *Tree) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if t.anonMmap {
		if t.mapping != nil {
			record(freeAnon(t.mapping))
		}
	} else if t.mapping != nil {
		record(t.munmapFile())
	}
	t.mapping = nil
	t.mmapFullLength = 0
	t.mmapUsedLength = 0

	if t.fd != -1 {
		record(closeFile(t.fd))
		t.fd = -1
	}

	t.closed = true
	if firstErr != nil {
		return fmt.Errorf("mailtree: close: %w", firstErr)
	}
	return nil
}

// Free is Close plus detaching the tree from its owning index — the Go
// expression of mail_tree_free's tree->index->tree = NULL, left to the
// caller here since recordindex.Index names no such setter.
func Free(t *Tree) error {
	return Close(t)
}
