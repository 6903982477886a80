package stackwalk

import (
	"github.com/spindle-vm/stackwalk/internal/fifo"
	"github.com/spindle-vm/stackwalk/internal/unwind"
)

// activeBackend is the unwinding strategy captures use. It is chosen by
// the build configuration; tests substitute synthetic backends.
var activeBackend = unwind.DefaultBackend()

// CaptureInto walks t's stack into caller-owned buffers and returns the
// number of entries written, at most len(ips). sps may be nil when stack
// pointers are not wanted; otherwise it must be at least as long as ips.
//
// A full buffer means the stack may continue past it; callers needing
// exact depth use CaptureGrowable.
func CaptureInto(t *Thread, ips, sps []uintptr) int {
	ctx := t.Context()
	return CaptureContextInto(&ctx, t.Memory(), ips, sps)
}

// Capture walks t's stack into freshly allocated buffers, at most max
// frames deep.
func Capture(t *Thread, max int, wantSP bool) Backtrace {
	ips := make([]uintptr, max)
	var sps []uintptr
	if wantSP {
		sps = make([]uintptr, max)
	}
	n := CaptureInto(t, ips, sps)
	bt := Backtrace{Addrs: ips[:n:n]}
	if wantSP {
		bt.SPs = sps[:n:n]
	}
	return bt
}

// CaptureContextInto walks the stack described by an explicit register
// snapshot, for callers that hold one directly: trap handlers, or the
// runtime capturing a thread it has suspended itself.
func CaptureContextInto(ctx *Context, mem Memory, ips, sps []uintptr) int {
	regs := ctx.regs()
	var cur unwind.Cursor
	if !cur.Init(activeBackend, mem, &regs) {
		return 0
	}
	n := unwind.StepN(&cur, ips, sps)
	if n > len(ips) {
		n = len(ips)
	}
	return n
}

// CaptureContextDWARF is CaptureContextInto directed at the modules'
// explicit .debug_frame tables, for dynamically generated code whose
// eh_frame registration is unreliable. On build configurations whose
// backend has no such path it reports zero frames.
func CaptureContextDWARF(ctx *Context, mem Memory, ips, sps []uintptr) int {
	regs := ctx.regs()
	var cur unwind.Cursor
	if !cur.InitDWARF(activeBackend, mem, &regs) {
		return 0
	}
	n := unwind.StepN(&cur, ips, sps)
	if n > len(ips) {
		n = len(ips)
	}
	return n
}

// growChunk is the number of frames added per growth step of a growable
// capture.
const growChunk = 1000

// CaptureGrowable walks t's stack to its full depth, growing the buffer
// chunk by chunk, and returns exactly as many entries as the walk
// produced.
func CaptureGrowable(t *Thread, wantSP bool) Backtrace {
	ctx := t.Context()
	regs := ctx.regs()
	var cur unwind.Cursor
	if !cur.Init(activeBackend, t.Memory(), &regs) {
		return Backtrace{}
	}

	var q fifo.Queue
	total := 0
	for {
		ch := q.PushBack(fifo.NewChunk(growChunk, wantSP))
		n := unwind.StepN(&cur, ch.IPs, ch.SPs)
		if n > growChunk {
			// Chunk filled and the stack continues; add another.
			ch.N = growChunk
			total += growChunk
			continue
		}
		ch.N = n
		total += n
		break
	}

	bt := Backtrace{Addrs: make([]uintptr, 0, total)}
	if wantSP {
		bt.SPs = make([]uintptr, 0, total)
	}
	for q.Len() > 0 {
		ch := q.PeekFront()
		bt.Addrs = append(bt.Addrs, ch.IPs[:ch.N]...)
		if wantSP {
			bt.SPs = append(bt.SPs, ch.SPs[:ch.N]...)
		}
		q.PopFront()
	}
	return bt
}
