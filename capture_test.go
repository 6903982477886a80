package stackwalk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spindle-vm/stackwalk/internal/unwind"
)

func TestCaptureFixedCapacityBound(t *testing.T) {
	withBackend(t, unwind.FP())
	th := chainThread(50)

	bt := Capture(th, 16, false)
	require.Len(t, bt.Addrs, 16)
	require.Nil(t, bt.SPs)
	require.Equal(t, chainCode, bt.Addrs[0])
	require.Equal(t, chainCode+15*0x10, bt.Addrs[15])
}

func TestCaptureShallowStack(t *testing.T) {
	withBackend(t, unwind.FP())
	th := chainThread(5)

	bt := Capture(th, 32, true)
	require.Len(t, bt.Addrs, 5)
	require.Len(t, bt.SPs, 5)
	for i, addr := range bt.Addrs {
		require.Equal(t, chainCode+uintptr(i)*0x10, addr)
	}
	// Stack pointers climb as the walk leaves each frame.
	for i := 1; i < len(bt.SPs); i++ {
		require.Greater(t, bt.SPs[i], bt.SPs[i-1])
	}
}

func TestCaptureIntoReturnsEntryCount(t *testing.T) {
	withBackend(t, unwind.FP())
	th := chainThread(7)

	ips := make([]uintptr, 32)
	n := CaptureInto(th, ips, nil)
	require.Equal(t, 7, n)

	// Full buffer: the count is clamped to capacity, never the sentinel.
	short := make([]uintptr, 3)
	th2 := chainThread(7)
	n = CaptureInto(th2, short, nil)
	require.Equal(t, 3, n)
}

func TestCaptureGrowableExactDepth(t *testing.T) {
	withBackend(t, unwind.FP())

	for _, depth := range []int{1, 5, growChunk - 1, growChunk, growChunk + 1, 2*growChunk + 500} {
		th := chainThread(depth)
		bt := CaptureGrowable(th, false)
		require.Len(t, bt.Addrs, depth, "depth %d", depth)
		require.Equal(t, chainCode, bt.Addrs[0])
		require.Equal(t, chainCode+uintptr(depth-1)*0x10, bt.Addrs[depth-1])
	}
}

func TestCaptureGrowableWithStackPointers(t *testing.T) {
	withBackend(t, unwind.FP())
	th := chainThread(growChunk + 42)

	bt := CaptureGrowable(th, true)
	require.Len(t, bt.Addrs, growChunk+42)
	require.Len(t, bt.SPs, growChunk+42)
	require.Greater(t, bt.SPs[growChunk+41], bt.SPs[0])
}

func TestCaptureContextInto(t *testing.T) {
	withBackend(t, unwind.FP())
	mem := wordMem{}
	ctx := buildChain(mem, 4)

	ips := make([]uintptr, 8)
	sps := make([]uintptr, 8)
	n := CaptureContextInto(&ctx, mem, ips, sps)
	require.Equal(t, 4, n)
	require.Equal(t, chainCode, ips[0])
}

func TestCaptureContextDWARFRequiresCapableBackend(t *testing.T) {
	withBackend(t, unwind.FP())
	mem := wordMem{}
	ctx := buildChain(mem, 4)

	n := CaptureContextDWARF(&ctx, mem, make([]uintptr, 8), nil)
	require.Equal(t, 0, n)
}

func TestCaptureDisabledBackendIsEmpty(t *testing.T) {
	withBackend(t, unwind.Disabled())
	th := chainThread(10)

	bt := Capture(th, 16, false)
	require.True(t, bt.Empty())
	bt2 := CaptureGrowable(th, false)
	require.True(t, bt2.Empty())
}

func TestCaptureZeroContext(t *testing.T) {
	withBackend(t, unwind.FP())
	th := NewThread(2, "idle")
	th.mu.Lock()
	th.mu.mem = wordMem{}
	th.mu.Unlock()

	bt := Capture(th, 16, false)
	require.True(t, bt.Empty())
}

// faultingBackend reports a few frames and then panics, standing in for
// a backend tripping over a corrupt unwind table.
type faultingBackend struct {
	after int
	n     int
}

func (b *faultingBackend) Init(c *unwind.Cursor) bool { return true }

func (b *faultingBackend) Step(c *unwind.Cursor, ip, sp *uintptr) bool {
	if b.n == b.after {
		panic("bad unwind table")
	}
	*ip = chainCode + uintptr(b.n)*0x10
	if sp != nil {
		*sp = uintptr(0x7000) + uintptr(b.n)*0x20
	}
	b.n++
	return true
}

func (b *faultingBackend) Validates() bool { return false }

func TestCaptureSurvivesMidWalkFault(t *testing.T) {
	withBackend(t, &faultingBackend{after: 5})
	th := NewThread(3, "crashy")
	th.SetContext(NewContext(chainCode, 0x7000, 0))

	bt := Capture(th, 64, false)
	// The faulting frame and its suspect predecessor are dropped.
	require.Len(t, bt.Addrs, 4)
	require.Equal(t, chainCode, bt.Addrs[0])
	require.Equal(t, chainCode+3*0x10, bt.Addrs[3])
}

func TestBacktraceHash(t *testing.T) {
	a := Backtrace{Addrs: []uintptr{1, 2, 3}}
	b := Backtrace{Addrs: []uintptr{1, 2, 3}}
	c := Backtrace{Addrs: []uintptr{1, 2, 4}}
	var empty Backtrace

	require.Equal(t, a.Hash(), b.Hash())
	require.NotEqual(t, a.Hash(), c.Hash())
	require.Zero(t, empty.Hash())
}
