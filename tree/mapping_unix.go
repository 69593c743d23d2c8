//go:build unix

package tree

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// openOrCreateFile opens path for read-write, creating it with mode
// 0660 if missing — open(path, O_RDWR|O_CREAT, 0660) in mail_tree_open.
func openOrCreateFile(path string) (int, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT, 0660)
	if err != nil {
		return -1, fmt.Errorf("open(): %w", err)
	}
	return fd, nil
}

// fileSize returns the current size of an open file descriptor.
func fileSize(fd int) (int64, error) {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return 0, fmt.Errorf("fstat(): %w", err)
	}
	return st.Size, nil
}

// writeFullAt writes data at offset 0, looping until every byte lands
// — the write_full() helper mail_tree_init relies on.
func writeFullAt(fd int, data []byte) error {
	if _, err := unix.Seek(fd, 0, unix.SEEK_SET); err != nil {
		return fmt.Errorf("lseek(): %w", err)
	}
	for len(data) > 0 {
		n, err := unix.Write(fd, data)
		if err != nil {
			return fmt.Errorf("write_full(): %w", err)
		}
		data = data[n:]
	}
	return nil
}

// setFileSize resizes fd to size — file_set_size() in the original.
func setFileSize(fd int, size int64) error {
	if err := unix.Ftruncate(fd, size); err != nil {
		return fmt.Errorf("file_set_size(): %w", err)
	}
	return nil
}

func closeFile(fd int) error {
	if err := unix.Close(fd); err != nil {
		return fmt.Errorf("close(): %w", err)
	}
	return nil
}

// mmapFile maps the entire current length of t.fd read-write, shared,
// mirroring mmap_rw_file. The caller (remap) is responsible for
// unmapping any prior mapping first.
func (t *Tree) mmapFile() ([]byte, int64, error) {
	size, err := fileSize(t.fd)
	if err != nil {
		return nil, 0, err
	}
	if size == 0 {
		return nil, 0, fmt.Errorf("mmap(): empty file")
	}

	base, err := unix.Mmap(t.fd, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, 0, fmt.Errorf("mmap(): %w", err)
	}
	return base, size, nil
}

func (t *Tree) munmapFile() error {
	if t.mapping == nil {
		return nil
	}
	if err := unix.Munmap(t.mapping); err != nil {
		return fmt.Errorf("munmap(): %w", err)
	}
	return nil
}

func (t *Tree) msyncRange(offset, length int64) error {
	if length <= 0 || t.mapping == nil {
		return nil
	}
	if err := unix.Msync(t.mapping[offset:offset+length], unix.MS_SYNC); err != nil {
		return fmt.Errorf("msync(): %w", err)
	}
	return nil
}

func (t *Tree) msyncInvalidate(offset, length int64) error {
	if length <= 0 || t.mapping == nil {
		return nil
	}
	if err := unix.Msync(t.mapping[offset:offset+length], unix.MS_SYNC|unix.MS_INVALIDATE); err != nil {
		return fmt.Errorf("msync(): %w", err)
	}
	return nil
}

func (t *Tree) truncateFile(newLength int64) error {
	return setFileSize(t.fd, newLength)
}

// allocAnon creates a fresh anonymous mapping of size bytes —
// mmap_anon() in the original, via golang.org/x/sys/unix rather than
// raw syscall so the flags stay portable across the BSD family.
func allocAnon(size int64) ([]byte, error) {
	base, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap_anon(): %w", err)
	}
	return base, nil
}

func freeAnon(b []byte) error {
	if b == nil {
		return nil
	}
	if err := unix.Munmap(b); err != nil {
		return fmt.Errorf("munmap_anon(): %w", err)
	}
	return nil
}

// growAnon implements mremap_anon(..., MREMAP_MAYMOVE): a fresh,
// larger anonymous mapping is allocated, the old content copied in,
// and the old mapping released. The original allows the mapping to
// move on growth, so allocate+copy+free is a faithful strategy without
// depending on a non-portable mremap binding.
func growAnon(old []byte, newSize int64) ([]byte, error) {
	next, err := allocAnon(newSize)
	if err != nil {
		return nil, err
	}
	copy(next, old)
	if err := freeAnon(old); err != nil {
		return nil, err
	}
	return next, nil
}
