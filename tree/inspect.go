package tree

import (
	"os"

	"github.com/nomasters/mailtree/recordindex"
)

// Summary is a read-only snapshot of a tree file's header and contents,
// the shape mailtreectl's inspect subcommand reports. Unlike
// OpenOrCreate, Inspect never rebuilds on corruption — it surfaces the
// error instead, since a diagnostic tool must never silently mutate
// the file it was asked to look at.
type Summary struct {
	Path          string
	Version       uint32
	IndexID       uint32
	SyncID        uint64
	UsedFileSize  uint64
	FullFileSize  int64
	ChecksumValid bool
	Entries       []UIDPosition
}

// Inspect opens the tree file at path and reports its header and
// in-order contents without acquiring any lock on a real record-index
// (there is none to acquire — inspect is a standalone diagnostic) and
// without attempting any repair.
func Inspect(path string) (Summary, error) {
	// newHandle opens with O_CREAT; check first so that inspecting a
	// missing path fails instead of leaving an empty file behind.
	if _, err := os.Stat(path); err != nil {
		return Summary{}, err
	}

	t, err := newHandle(&readOnlyIndex{}, path, DefaultConfig())
	if err != nil {
		return Summary{}, err
	}
	defer Close(t)

	if err := t.remap(); err != nil {
		return Summary{}, err
	}
	if err := t.verifyReadOnly(); err != nil {
		return Summary{}, err
	}

	hdr, err := t.header()
	if err != nil {
		return Summary{}, err
	}
	entries, err := t.inOrderLocked()
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Path:          path,
		Version:       hdr.version(),
		IndexID:       hdr.indexID(),
		SyncID:        hdr.syncID(),
		UsedFileSize:  hdr.usedFileSize(),
		FullFileSize:  t.mmapFullLength,
		ChecksumValid: hdr.checksumOK(),
		Entries:       entries,
	}, nil
}

// readOnlyIndex is a no-op recordindex.Index/Header stand-in used only
// to satisfy Tree's construction requirements for Inspect, which never
// locks, grows, or rebuilds against a real owning index.
type readOnlyIndex struct {
	flags recordindex.Flag
}

func (r *readOnlyIndex) SetLock(recordindex.LockType) error { return nil }
func (r *readOnlyIndex) LockType() recordindex.LockType     { return recordindex.LockUnlocked }
func (r *readOnlyIndex) First() (recordindex.Record, error) { return nil, nil }
func (r *readOnlyIndex) Next(recordindex.Record) (recordindex.Record, error) {
	return nil, nil
}
func (r *readOnlyIndex) Header() recordindex.Header                  { return r }
func (r *readOnlyIndex) MessagesCount() uint32                       { return 0 }
func (r *readOnlyIndex) IndexID() uint32                             { return 0 }
func (r *readOnlyIndex) Flags() recordindex.Flag                     { return r.flags }
func (r *readOnlyIndex) SetFlags(f recordindex.Flag)                 { r.flags |= f }
func (r *readOnlyIndex) MMapInvalidate() bool                        { return false }
func (r *readOnlyIndex) SetNoDiskSpace()                             {}
func (r *readOnlyIndex) SetInconsistent()                            {}
func (r *readOnlyIndex) SetError(format string, args ...interface{}) {}
