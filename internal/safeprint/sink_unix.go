//go:build unix

package safeprint

import "golang.org/x/sys/unix"

var newline = [1]byte{'\n'}

// fdSink writes each line straight to a file descriptor with raw write
// syscalls: no buffering, no locks, no allocation.
type fdSink struct {
	fd int
}

func (s fdSink) WriteLine(line []byte) {
	_, _ = unix.Write(s.fd, line)
	_, _ = unix.Write(s.fd, newline[:])
}

// Stderr returns the sink writing to file descriptor 2.
func Stderr() Sink { return fdSink{fd: 2} }
