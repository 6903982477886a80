// Package procmem reads memory of the current process, with every
// dereference validated first so that walking a corrupt stack cannot
// crash the process.
package procmem

import (
	"unsafe"

	"github.com/spindle-vm/stackwalk/internal/modmap"
)

const wordSize = unsafe.Sizeof(uintptr(0))

// Region is a half-open address range known to be readable.
type Region struct {
	Lo, Hi uintptr
}

// Local reads the current process's memory. A candidate address is
// accepted when it falls in one of the explicitly registered regions
// (typically the owning thread's stack), inside a registered module, or,
// on platforms with a page map, inside a readable mapping.
type Local struct {
	regions []Region
}

// New returns a Local that accepts the given regions in addition to the
// process-wide checks.
func New(regions ...Region) *Local {
	return &Local{regions: regions}
}

var defaultMem = New()

// Default returns the process-wide Local with no extra regions.
func Default() *Local { return defaultMem }

// Readable reports whether [addr, addr+n) can be dereferenced.
func (l *Local) Readable(addr, n uintptr) bool {
	if addr == 0 || addr+n < addr {
		return false
	}
	for _, r := range l.regions {
		if addr >= r.Lo && addr+n <= r.Hi {
			return true
		}
	}
	if modmap.Covers(addr, n) {
		return true
	}
	return mappedReadable(addr, n)
}

// ReadWord reads one pointer-sized word at addr.
func (l *Local) ReadWord(addr uintptr) (uintptr, bool) {
	if !l.Readable(addr, wordSize) {
		return 0, false
	}
	return readWord(addr), true
}

//go:noinline
//go:nosplit
func readWord(addr uintptr) uintptr {
	var w uintptr
	dst := unsafe.Slice((*byte)(unsafe.Pointer(&w)), wordSize)
	copy(dst, unsafe.Slice((*byte)(unsafe.Pointer(addr)), wordSize))
	return w
}
