// Package fake provides a minimal in-memory recordindex.Index used only
// by the tree package's own tests, the same lightweight in-memory
// stand-in role storage/memory/memory.go played for its mmap'd store.
package fake

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nomasters/mailtree/recordindex"
)

// Record is a trivial (uid, position) pair implementing recordindex.Record.
type Record struct {
	uid uint32
	pos uint32
}

func (r Record) UID() uint32      { return r.uid }
func (r Record) Position() uint32 { return r.pos }

// NewRecord builds a fake record for test fixtures.
func NewRecord(uid, pos uint32) Record { return Record{uid: uid, pos: pos} }

type header struct {
	mu             sync.Mutex
	messagesCount  uint32
	indexID        uint32
	flags          recordindex.Flag
	mmapInvalidate bool
}

func (h *header) MessagesCount() uint32 { h.mu.Lock(); defer h.mu.Unlock(); return h.messagesCount }
func (h *header) IndexID() uint32       { h.mu.Lock(); defer h.mu.Unlock(); return h.indexID }
func (h *header) Flags() recordindex.Flag {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.flags
}
func (h *header) SetFlags(f recordindex.Flag) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flags |= f
}
func (h *header) MMapInvalidate() bool { h.mu.Lock(); defer h.mu.Unlock(); return h.mmapInvalidate }

// Index is an in-memory record-index: a UID-sorted slice of records,
// sufficient to drive rebuild/lookup/insert/delete tests without a real
// record-index file format.
type Index struct {
	mu       sync.Mutex
	records  []Record
	lockType recordindex.LockType

	hdr *header

	noDiskSpace  bool
	inconsistent bool
	lastError    string
}

// New creates an empty fake index with the given indexid.
func New(indexID uint32) *Index {
	return &Index{
		hdr: &header{indexID: indexID},
	}
}

// Seed replaces the record set, keeping it sorted by UID as a real
// record-index would be.
func (idx *Index) Seed(records ...Record) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.records = append([]Record(nil), records...)
	sort.Slice(idx.records, func(i, j int) bool { return idx.records[i].uid < idx.records[j].uid })
	idx.hdr.messagesCount = uint32(len(idx.records))
}

func (idx *Index) SetMessagesCount(n uint32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.hdr.messagesCount = n
}

func (idx *Index) SetMMapInvalidate(v bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.hdr.mmapInvalidate = v
}

func (idx *Index) SetLock(t recordindex.LockType) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.lockType = t
	return nil
}

func (idx *Index) LockType() recordindex.LockType {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.lockType
}

func (idx *Index) First() (recordindex.Record, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if len(idx.records) == 0 {
		return nil, nil
	}
	return idx.records[0], nil
}

func (idx *Index) Next(prev recordindex.Record) (recordindex.Record, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	p, ok := prev.(Record)
	if !ok {
		return nil, fmt.Errorf("fake: unexpected record type %T", prev)
	}
	for i, r := range idx.records {
		if r.uid == p.uid && r.pos == p.pos {
			if i+1 < len(idx.records) {
				return idx.records[i+1], nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (idx *Index) Header() recordindex.Header { return idx.hdr }

func (idx *Index) SetNoDiskSpace() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.noDiskSpace = true
}

func (idx *Index) SetInconsistent() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.inconsistent = true
}

func (idx *Index) SetError(format string, args ...interface{}) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.lastError = fmt.Sprintf(format, args...)
}

func (idx *Index) NoDiskSpace() bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.noDiskSpace
}

func (idx *Index) Inconsistent() bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.inconsistent
}

func (idx *Index) LastError() string {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.lastError
}
