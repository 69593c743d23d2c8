package tree

import (
	"encoding/binary"
	"fmt"

	"lukechampine.com/blake3"
)

// Header field offsets within the persisted, fixed 64-byte header
// region. Reads and writes go through explicit offset/length guards
// rather than an unsafe struct cast over the mapping, following
// storage/mmap/index.go's readHeader/writeHeader style over
// storage/mmap/datafile.go's unsafe cast.
const (
	offMagic        = 0
	offVersion      = 8
	offIndexID      = 12
	offSyncID       = 16
	offUsedFileSize = 24
	offRootIndex    = 32
	offChecksum     = 36
	// offReserved = 44, runs to headerSize (64)
)

// headerView is a typed, offset-guarded view over the header region of
// a tree's mapping. It is never held across a remap — every tree
// operation re-derives it from the current mapping base, since a remap
// can move or replace the backing memory entirely.
type headerView struct {
	b []byte // exactly headerSize bytes
}

func newHeaderView(mapping []byte) (headerView, error) {
	if len(mapping) < headerSize {
		return headerView{}, fmt.Errorf("mailtree: mapping too small for header (%d < %d)", len(mapping), headerSize)
	}
	return headerView{b: mapping[:headerSize]}, nil
}

func (h headerView) magicOK() bool {
	return string(h.b[offMagic:offMagic+8]) == headerMagic
}

func (h headerView) version() uint32 { return binary.LittleEndian.Uint32(h.b[offVersion:]) }
func (h headerView) setVersion(v uint32) {
	binary.LittleEndian.PutUint32(h.b[offVersion:], v)
}

func (h headerView) indexID() uint32 { return binary.LittleEndian.Uint32(h.b[offIndexID:]) }
func (h headerView) setIndexID(v uint32) {
	binary.LittleEndian.PutUint32(h.b[offIndexID:], v)
}

func (h headerView) syncID() uint64 { return binary.LittleEndian.Uint64(h.b[offSyncID:]) }
func (h headerView) setSyncID(v uint64) {
	binary.LittleEndian.PutUint64(h.b[offSyncID:], v)
}
func (h headerView) bumpSyncID() uint64 {
	v := h.syncID() + 1
	h.setSyncID(v)
	return v
}

func (h headerView) usedFileSize() uint64 { return binary.LittleEndian.Uint64(h.b[offUsedFileSize:]) }
func (h headerView) setUsedFileSize(v uint64) {
	binary.LittleEndian.PutUint64(h.b[offUsedFileSize:], v)
}

func (h headerView) rootIndex() uint32 { return binary.LittleEndian.Uint32(h.b[offRootIndex:]) }
func (h headerView) setRootIndex(v uint32) {
	binary.LittleEndian.PutUint32(h.b[offRootIndex:], v)
}

func (h headerView) checksum() uint64 { return binary.LittleEndian.Uint64(h.b[offChecksum:]) }
func (h headerView) setChecksum(v uint64) {
	binary.LittleEndian.PutUint64(h.b[offChecksum:], v)
}

// computeChecksum hashes every header byte except the checksum field
// itself, truncating the BLAKE3-256 digest to 8 bytes. This is an
// additive corruption signal layered on top of, never in place of, the
// structural checks verify() performs.
func (h headerView) computeChecksum() uint64 {
	var buf [headerSize - 8]byte
	copy(buf[:offChecksum], h.b[:offChecksum])
	copy(buf[offChecksum:], h.b[offChecksum+8:headerSize])
	sum := blake3.Sum256(buf[:])
	return binary.LittleEndian.Uint64(sum[:8])
}

// updateChecksum recomputes and stores the checksum; callers must call
// this after any header field write that isn't immediately followed by
// another write to the same header (growth/truncate/insert/delete all
// call it once per mutation, matching how sync_id is bumped once per
// size change).
func (h headerView) updateChecksum() {
	h.setChecksum(h.computeChecksum())
}

func (h headerView) checksumOK() bool {
	return h.checksum() == h.computeChecksum()
}

// resetEmpty zeroes the header and writes the identity/size fields for
// a freshly created tree: one sentinel node in use, sync_id left at 0.
func (h headerView) resetEmpty(indexID uint32) {
	for i := range h.b {
		h.b[i] = 0
	}
	copy(h.b[offMagic:offMagic+8], headerMagic)
	h.setVersion(formatVersion)
	h.setIndexID(indexID)
	h.setUsedFileSize(uint64(headerSize + nodeSize))
	h.setRootIndex(sentinelIndex)
	h.updateChecksum()
}
