package tree

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isDiskFull reports whether err (typically surfaced from a syscall on
// the mapping or the underlying file) indicates the filesystem is out
// of space or over quota — the ENOSPACE(errno) macro in the original
// source collapses both ENOSPC and EDQUOT into one check.
func isDiskFull(err error) bool {
	return errors.Is(err, unix.ENOSPC) || errors.Is(err, unix.EDQUOT)
}
