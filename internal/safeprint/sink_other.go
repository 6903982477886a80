//go:build !unix

package safeprint

import "os"

var newline = [1]byte{'\n'}

// fdSink falls back to the standard error file where no raw write
// syscall is exposed.
type fdSink struct{}

func (fdSink) WriteLine(line []byte) {
	_, _ = os.Stderr.Write(line)
	_, _ = os.Stderr.Write(newline[:])
}

// Stderr returns the sink writing to standard error.
func Stderr() Sink { return fdSink{} }
