// Package safeprint renders backtrace lines without allocating, locking
// or calling into the runtime's printing machinery, so rendering can run
// from a fault handler.
package safeprint

import "strconv"

// Sink consumes rendered lines. WriteLine receives the line without a
// trailing newline and must not retain the slice. Production sinks must
// not allocate, block or take locks.
type Sink interface {
	WriteLine(line []byte)
}

// maxLine bounds one rendered line. Longer lines are truncated rather
// than allocated.
const maxLine = 512

// Printer formats lines into a fixed buffer. The zero Printer is ready
// to use. A Printer is not safe for concurrent use; callers ensure one
// walk prints at a time.
type Printer struct {
	buf [maxLine]byte
}

// Frame writes "NAME at FILE:LINE", or "NAME at FILE (unknown line)"
// when line is negative.
func (p *Printer) Frame(sink Sink, name, file string, line int) {
	b := p.buf[:0]
	b = appendStr(b, name)
	b = appendStr(b, " at ")
	b = appendStr(b, file)
	if line < 0 {
		b = appendStr(b, " (unknown line)")
	} else {
		b = appendStr(b, ":")
		b = appendInt(b, int64(line))
	}
	sink.WriteLine(b)
}

// Unknown writes the line used for addresses with no metadata:
// "unknown function (ip: 0xADDR)".
func (p *Printer) Unknown(sink Sink, addr uintptr) {
	b := p.buf[:0]
	b = appendStr(b, "unknown function (ip: 0x")
	b = appendHex(b, uint64(addr))
	b = appendStr(b, ")")
	sink.WriteLine(b)
}

// appendStr appends s, truncating at the buffer's fixed capacity so the
// append can never allocate.
func appendStr(b []byte, s string) []byte {
	if room := cap(b) - len(b); len(s) > room {
		s = s[:room]
	}
	return append(b, s...)
}

func appendInt(b []byte, v int64) []byte {
	var tmp [20]byte
	return appendClamped(b, strconv.AppendInt(tmp[:0], v, 10))
}

func appendHex(b []byte, v uint64) []byte {
	var tmp [16]byte
	return appendClamped(b, strconv.AppendUint(tmp[:0], v, 16))
}

func appendClamped(b, out []byte) []byte {
	if room := cap(b) - len(b); len(out) > room {
		out = out[:room]
	}
	return append(b, out...)
}
