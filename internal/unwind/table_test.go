package unwind

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spindle-vm/stackwalk/internal/modmap"
)

func TestTableUnwindsThroughFrameEntries(t *testing.T) {
	modmap.Reset()
	defer modmap.Reset()
	require.NoError(t, modmap.Register(&modmap.Module{
		Name: "jit-region-1",
		Base: 0x400000,
		Size: 0x1000,
		FrameTable: []modmap.FrameEntry{
			{Lo: 0x400000, Hi: 0x400100, FrameSize: 0x20, SavesFP: true},
			{Lo: 0x400100, Hi: 0x400200, FrameSize: 0x10},
		},
	}))

	mem := fakeMem{}
	// Innermost frame: SP 0x7000, CFA 0x7020, saved FP below the return
	// address.
	mem.setWord(0x7020-wordSize, 0x400150)
	mem.setWord(0x7020-2*wordSize, 0x8000)
	// Caller frame: CFA 0x7030, returning outside any module.
	mem.setWord(0x7030-wordSize, 0x500000)

	var c Cursor
	require.True(t, c.Init(Table(), mem, &Regs{IP: 0x400050, SP: 0x7000, FP: 0x6000}))

	ips := make([]uintptr, 8)
	sps := make([]uintptr, 8)
	n := StepN(&c, ips, sps)
	require.Equal(t, 3, n)
	require.Equal(t, []uintptr{0x400050, 0x400150, 0x500000}, ips[:3])
	require.Equal(t, uintptr(0x7000), sps[0])
	require.Equal(t, uintptr(0x7020), sps[1])
	require.Equal(t, uintptr(0x7030), sps[2])
}

func TestTableFallsBackToFrameChase(t *testing.T) {
	modmap.Reset()
	defer modmap.Reset()
	require.NoError(t, modmap.Register(&modmap.Module{
		Name: "jit-region-2",
		Base: 0x600000,
		Size: 0x1000,
		// No entry covers the pc below.
		FrameTable: []modmap.FrameEntry{{Lo: 0x600800, Hi: 0x600900, FrameSize: 0x10}},
	}))

	mem := fakeMem{}
	mem.setWord(0x9000, 0)
	mem.setWord(0x9000+wordSize, 0x600850)

	var c Cursor
	require.True(t, c.Init(Table(), mem, &Regs{IP: 0x600010, SP: 0x8ff0, FP: 0x9000}))

	// The chase reaches the caller, whose table entry then points at
	// unmapped memory, ending the walk.
	ips := make([]uintptr, 8)
	n := StepN(&c, ips, nil)
	require.Equal(t, 2, n)
	require.Equal(t, []uintptr{0x600010, 0x600850}, ips[:2])
}

func TestTableStopsWhenGuardContended(t *testing.T) {
	modmap.Reset()
	defer modmap.Reset()
	require.NoError(t, modmap.Register(&modmap.Module{
		Name: "jit-region-3",
		Base: 0x700000,
		Size: 0x1000,
		FrameTable: []modmap.FrameEntry{
			{Lo: 0x700000, Hi: 0x700100, FrameSize: 0x10},
		},
	}))

	require.True(t, modmap.TryEnterWalk())
	defer modmap.LeaveWalk()

	var c Cursor
	require.True(t, c.Init(Table(), fakeMem{}, &Regs{IP: 0x700050, SP: 0x7000}))

	// With the stackwalk flag held elsewhere, the module lookup fails
	// closed and the walk ends after the context frame.
	ips := make([]uintptr, 8)
	require.Equal(t, 1, StepN(&c, ips, nil))
	require.Equal(t, uintptr(0x700050), ips[0])
}
