//go:build amd64 || arm64

package unwind

import (
	"testing"

	"github.com/go-delve/delve/pkg/dwarf/frame"
	"github.com/stretchr/testify/require"

	"github.com/spindle-vm/stackwalk/internal/modmap"
)

func TestCFIRuleEvaluation(t *testing.T) {
	mem := fakeMem{}
	mem.setWord(0x7008, 0xbeef)

	var c Cursor
	c.mem = mem
	c.regs.X[7] = 0x7000
	c.regs.X[6] = 0x6000

	cfa, ok := evalCFA(&c, frame.DWRule{Rule: frame.RuleCFA, Reg: 7, Offset: 0x10})
	require.True(t, ok)
	require.Equal(t, uintptr(0x7010), cfa)

	_, ok = evalCFA(&c, frame.DWRule{Rule: frame.RuleOffset, Offset: 8})
	require.False(t, ok)

	v, ok := evalRule(&c, 6, frame.DWRule{Rule: frame.RuleOffset, Offset: -8}, 0x7010)
	require.True(t, ok)
	require.Equal(t, uintptr(0xbeef), v)

	_, ok = evalRule(&c, 6, frame.DWRule{Rule: frame.RuleOffset, Offset: 8}, 0x7010)
	require.False(t, ok)

	v, ok = evalRule(&c, 6, frame.DWRule{Rule: frame.RuleSameVal}, 0x7010)
	require.True(t, ok)
	require.Equal(t, uintptr(0x6000), v)

	v, ok = evalRule(&c, 3, frame.DWRule{Rule: frame.RuleRegister, Reg: 6}, 0x7010)
	require.True(t, ok)
	require.Equal(t, uintptr(0x6000), v)

	v, ok = evalRule(&c, 6, frame.DWRule{Rule: frame.RuleValOffset, Offset: -0x10}, 0x7010)
	require.True(t, ok)
	require.Equal(t, uintptr(0x7000), v)

	_, ok = evalRule(&c, 6, frame.DWRule{Rule: frame.RuleExpression}, 0x7010)
	require.False(t, ok)

	_, ok = evalRule(&c, 6, frame.DWRule{Rule: frame.RuleUndefined}, 0x7010)
	require.False(t, ok)
}

func TestCFIStopsOutsideModules(t *testing.T) {
	modmap.Reset()
	defer modmap.Reset()

	var c Cursor
	require.True(t, c.Init(CFI(), fakeMem{}, &Regs{IP: 0x1234, SP: 0x7000}))

	ips := make([]uintptr, 8)
	n := StepN(&c, ips, nil)
	require.Equal(t, 1, n)
	require.Equal(t, uintptr(0x1234), ips[0])
}

func TestCFIStopsWithoutFrameTable(t *testing.T) {
	modmap.Reset()
	defer modmap.Reset()
	require.NoError(t, modmap.Register(&modmap.Module{
		Name: "no-cfi",
		Base: 0x400000,
		Size: 0x1000,
	}))

	var c Cursor
	require.True(t, c.Init(CFI(), fakeMem{}, &Regs{IP: 0x400010, SP: 0x7000}))

	n := StepN(&c, make([]uintptr, 8), nil)
	require.Equal(t, 1, n)
}

func TestCFIRejectsGarbageTable(t *testing.T) {
	modmap.Reset()
	defer modmap.Reset()
	require.NoError(t, modmap.Register(&modmap.Module{
		Name:        "garbage-cfi",
		Base:        0x500000,
		Size:        0x1000,
		EHFrame:     []byte{0xff, 0x01, 0x02, 0x03},
		EHFrameAddr: 0x500800,
	}))

	var c Cursor
	require.True(t, c.Init(CFI(), fakeMem{}, &Regs{IP: 0x500010, SP: 0x7000}))

	// The parse failure (or a parser panic absorbed by the fault
	// barrier) must not take the walk down with it.
	n := StepN(&c, make([]uintptr, 8), nil)
	require.LessOrEqual(t, n, 1)
}
