// Package compat names the OS-portability shims Dovecot's lib/compat.c
// provides (my_strcasecmp, my_inet_aton, my_vsyslog, my_getpagesize,
// my_writev) as external collaborators with named interfaces only.
// Their fallback behavior across ancient platforms is out of scope
// here, so each is backed by the thinnest possible stdlib/x-sys call
// rather than a reimplementation of the original's fallback logic —
// just enough to give the named interface a body.
package compat

import (
	"log/syslog"
	"net"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// EqualFoldCompare is the my_strcasecmp/my_strncasecmp stand-in.
func EqualFoldCompare(a, b string) bool {
	return strings.EqualFold(a, b)
}

// ParseIPv4 is the my_inet_aton stand-in.
func ParseIPv4(s string) (net.IP, bool) {
	ip := net.ParseIP(s).To4()
	return ip, ip != nil
}

// SyslogWriter is the my_vsyslog stand-in: anything that can log at a
// syslog priority.
type SyslogWriter interface {
	Write(priority syslog.Priority, msg string) error
}

// PageSize is the my_getpagesize stand-in.
func PageSize() int {
	return os.Getpagesize()
}

// GatherWrite is the my_writev stand-in: write a set of buffers to fd
// in one syscall where the platform supports it.
func GatherWrite(fd int, bufs [][]byte) (int, error) {
	iovs := make([][]byte, len(bufs))
	copy(iovs, bufs)
	return unix.Writev(fd, iovs)
}
