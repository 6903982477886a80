package stackwalk

import (
	"testing"

	"github.com/spindle-vm/stackwalk/internal/unwind"
	"github.com/spindle-vm/stackwalk/symtab"
)

const testWord = 8

// wordMem is a sparse word-addressed memory for tests.
type wordMem map[uintptr]uintptr

func (m wordMem) setWord(addr, v uintptr) { m[addr] = v }

func (m wordMem) ReadWord(addr uintptr) (uintptr, bool) {
	v, ok := m[addr]
	return v, ok
}

func (m wordMem) Readable(addr, n uintptr) bool {
	for off := uintptr(0); off < n; off += testWord {
		if _, ok := m[addr+off]; !ok {
			return false
		}
	}
	return true
}

func withBackend(t *testing.T, b unwind.Backend) {
	t.Helper()
	old := activeBackend
	activeBackend = b
	t.Cleanup(func() { activeBackend = old })
}

// withTable installs a fresh metadata table for the test and resets the
// provider afterwards.
func withTable(t *testing.T) *symtab.Table {
	t.Helper()
	tab := symtab.NewTable()
	SetProvider(tab)
	t.Cleanup(func() { SetProvider(nil) })
	return tab
}

// chainStart is where synthetic frame chains are laid out.
const (
	chainBase   = uintptr(0x100000)
	chainStride = uintptr(0x40)
	chainCode   = uintptr(0x400000)
)

// buildChain lays a frame-pointer chain with the given total frame count
// into mem and returns the context of the innermost frame. Frame i
// returns to chainCode + (i+1)*0x10.
func buildChain(mem wordMem, frames int) Context {
	links := frames - 1
	for i := 0; i < links; i++ {
		fp := chainBase + uintptr(i)*chainStride
		next := fp + chainStride
		if i == links-1 {
			next = 0
		}
		mem.setWord(fp, next)
		mem.setWord(fp+testWord, chainCode+uintptr(i+1)*0x10)
	}
	return NewContext(chainCode, chainBase-2*testWord, chainBase)
}

// chainThread returns a registered-free thread whose context and memory
// describe a synthetic stack with the given frame count.
func chainThread(frames int) *Thread {
	mem := wordMem{}
	ctx := buildChain(mem, frames)
	th := NewThread(1, "worker-1")
	th.SetContext(ctx)
	th.mu.Lock()
	th.mu.mem = mem
	th.mu.Unlock()
	return th
}
