package cmd

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/nomasters/mailtree/recordindex"
)

// record is one (uid, position) pair loaded from a records file.
type record struct {
	uid uint32
	pos uint32
}

func (r record) UID() uint32      { return r.uid }
func (r record) Position() uint32 { return r.pos }

// fileIndex is a recordindex.Index backed by a fixed, UID-sorted record
// list read once from disk — mailtreectl has no running record-index to
// talk to, so a plain-text stand-in is the only way to exercise Create/
// Rebuild against real content. Kept separate from recordindex/fake,
// which is scoped to the tree package's own tests.
type fileIndex struct {
	indexID  uint32
	records  []record
	lockType recordindex.LockType
	flags    recordindex.Flag
}

// loadFileIndex parses a records file ("<uid> <position>" per line,
// blank lines and "#"-prefixed comments ignored) and sorts it by UID.
func loadFileIndex(indexID uint32, path string) (*fileIndex, error) {
	idx := &fileIndex{indexID: indexID}
	if path == "" {
		return idx, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("records file %s line %d: want \"<uid> <position>\", got %q", path, lineNum, line)
		}
		uid, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("records file %s line %d: bad uid %q: %w", path, lineNum, fields[0], err)
		}
		pos, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("records file %s line %d: bad position %q: %w", path, lineNum, fields[1], err)
		}
		idx.records = append(idx.records, record{uid: uint32(uid), pos: uint32(pos)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading records file %s: %w", path, err)
	}

	sort.Slice(idx.records, func(i, j int) bool { return idx.records[i].uid < idx.records[j].uid })
	return idx, nil
}

func (idx *fileIndex) SetLock(t recordindex.LockType) error {
	idx.lockType = t
	return nil
}
func (idx *fileIndex) LockType() recordindex.LockType { return idx.lockType }

func (idx *fileIndex) First() (recordindex.Record, error) {
	if len(idx.records) == 0 {
		return nil, nil
	}
	return idx.records[0], nil
}

func (idx *fileIndex) Next(prev recordindex.Record) (recordindex.Record, error) {
	p, ok := prev.(record)
	if !ok {
		return nil, fmt.Errorf("cmd: unexpected record type %T", prev)
	}
	for i, r := range idx.records {
		if r.uid == p.uid {
			if i+1 < len(idx.records) {
				return idx.records[i+1], nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (idx *fileIndex) Header() recordindex.Header { return idx }

func (idx *fileIndex) MessagesCount() uint32      { return uint32(len(idx.records)) }
func (idx *fileIndex) IndexID() uint32            { return idx.indexID }
func (idx *fileIndex) Flags() recordindex.Flag    { return idx.flags }
func (idx *fileIndex) SetFlags(f recordindex.Flag) { idx.flags |= f }
func (idx *fileIndex) MMapInvalidate() bool       { return false }

func (idx *fileIndex) SetNoDiskSpace()  {}
func (idx *fileIndex) SetInconsistent() {}
func (idx *fileIndex) SetError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "mailtreectl: "+format+"\n", args...)
}
