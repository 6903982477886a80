package stackwalk

import (
	"time"

	"github.com/spindle-vm/stackwalk/internal/faultsnap"
)

// FaultSnapshot is the backtrace recorded at the most recent fault along
// with the time it was taken.
type FaultSnapshot struct {
	Backtrace
	CapturedAt time.Time
}

// faultDepth bounds fault captures. Stacks deeper than this are
// truncated; the innermost frames are the ones worth keeping.
const faultDepth = 8192

// RecordFault captures t's stack and publishes it as the process-wide
// fault snapshot, replacing any previous one in a single swap. It
// returns the number of frames captured.
func RecordFault(t *Thread) int {
	ctx := t.Context()
	return RecordFaultContext(&ctx, t.Memory())
}

// RecordFaultContext is RecordFault for a register snapshot a trap
// handler already holds.
func RecordFaultContext(ctx *Context, mem Memory) int {
	ips := make([]uintptr, faultDepth)
	n := CaptureContextInto(ctx, mem, ips, nil)
	faultsnap.Write(&faultsnap.Snapshot{
		Addrs:      ips[:n:n],
		CapturedAt: time.Now(),
	})
	return n
}

// LastFault returns a copy of the most recently recorded fault
// backtrace, or false if no fault has been recorded.
func LastFault() (FaultSnapshot, bool) {
	s, ok := faultsnap.Read()
	if !ok {
		return FaultSnapshot{}, false
	}
	addrs := make([]uintptr, len(s.Addrs))
	copy(addrs, s.Addrs)
	return FaultSnapshot{
		Backtrace:  Backtrace{Addrs: addrs},
		CapturedAt: s.CapturedAt,
	}, true
}

// PrintLastFault renders the recorded fault backtrace through sink. It
// reports false when no fault has been recorded.
func PrintLastFault(sink Sink) bool {
	s, ok := faultsnap.Read()
	if !ok {
		return false
	}
	bt := Backtrace{Addrs: s.Addrs}
	PrintBacktrace(&bt, sink)
	return true
}
