// Package faultsnap holds the process-wide slot retaining the backtrace
// captured at the most recent fault.
//
// The slot is replaced wholesale: a writer publishes a complete snapshot
// with a single pointer swap, so a reader can never observe a buffer
// paired with another snapshot's length or timestamp.
package faultsnap

import (
	"sync/atomic"
	"time"
)

// Snapshot is one published fault backtrace. A snapshot is immutable
// once published.
type Snapshot struct {
	Addrs      []uintptr
	CapturedAt time.Time
}

var slot atomic.Pointer[Snapshot]

// Write publishes s, replacing any previous snapshot.
func Write(s *Snapshot) {
	slot.Store(s)
}

// Read returns the most recently published snapshot, or false if no
// fault has been recorded. The caller must not modify the snapshot.
func Read() (*Snapshot, bool) {
	s := slot.Load()
	if s == nil {
		return nil, false
	}
	return s, true
}

// Reset clears the slot. Intended for tests.
func Reset() {
	slot.Store(nil)
}
