// Package unwind implements virtual unwinding of native call stacks: a
// cursor seeded from a register snapshot is stepped frame by frame,
// producing the raw return addresses that higher layers symbolicate.
//
// Four backend variants exist. The table backend unwinds through the
// vendor-format frame entries modules register, falling back to
// frame-pointer chasing for code without entries. The fp backend chases
// saved frame-pointer links directly. The cfi backend evaluates DWARF
// call-frame information through an external unwinding library. The
// disabled backend reports no frames on architectures with no unwinder.
// The variant used for captures is fixed per build configuration; see
// DefaultBackend.
package unwind

import "unsafe"

const wordSize = unsafe.Sizeof(uintptr(0))

// Memory is the unwinder's view of the target thread's address space.
// Implementations validate addresses rather than fault.
type Memory interface {
	// ReadWord reads one pointer-sized word.
	ReadWord(addr uintptr) (uintptr, bool)
	// Readable reports whether [addr, addr+n) can be read.
	Readable(addr, n uintptr) bool
}

// Regs is a register snapshot in the form the unwinder consumes. X holds
// registers under the platform's DWARF numbering; the cfi backend reads
// and updates it as call-frame rules restore registers.
type Regs struct {
	IP, SP, FP uintptr
	X          [maxRegs]uintptr
}

// Cursor is the state of one walk. A cursor is consumed by a single walk
// and is never shared between goroutines.
type Cursor struct {
	backend Backend
	mem     Memory
	regs    Regs
	// useDebugFrame directs the cfi backend at the modules' explicit
	// .debug_frame tables instead of .eh_frame.
	useDebugFrame bool
	// done latches once a step ends the walk. Further StepN calls report
	// nothing instead of re-stepping a finished cursor.
	done bool
}

func (c *Cursor) setIP(v uintptr) {
	c.regs.IP = v
	c.regs.X[regPC] = v
}

func (c *Cursor) setSP(v uintptr) {
	c.regs.SP = v
	c.regs.X[regSP] = v
}

func (c *Cursor) setFP(v uintptr) {
	c.regs.FP = v
	c.regs.X[regFP] = v
}

// Backend steps a cursor through one unwinding strategy.
type Backend interface {
	// Init prepares the cursor for its first step. Returning false means
	// the walk produces no frames.
	Init(c *Cursor) bool
	// Step writes the cursor's current frame through ip and sp (when sp
	// is non-nil), then advances past it. It returns false when the frame
	// could not be reported or the walk cannot continue past it.
	Step(c *Cursor, ip, sp *uintptr) bool
	// Validates reports whether the backend checks every memory access
	// through the cursor's Memory before dereferencing, making the step
	// loop's fault barrier unnecessary.
	Validates() bool
}

func (c *Cursor) reset(b Backend, mem Memory, regs *Regs) {
	c.backend = b
	c.mem = mem
	c.regs = *regs
	c.regs.X[regPC] = c.regs.IP
	c.regs.X[regSP] = c.regs.SP
	c.regs.X[regFP] = c.regs.FP
	c.useDebugFrame = false
	c.done = false
}

// Init seeds the cursor from a register snapshot.
func (c *Cursor) Init(b Backend, mem Memory, regs *Regs) bool {
	c.reset(b, mem, regs)
	return b.Init(c)
}

// InitDWARF is like Init but directs the walk at the modules' explicit
// .debug_frame tables, for dynamically generated code whose eh_frame
// registration is unreliable. Backends without that capability refuse
// the walk.
func (c *Cursor) InitDWARF(b Backend, mem Memory, regs *Regs) bool {
	if _, ok := b.(debugFrameIniter); !ok {
		return false
	}
	c.reset(b, mem, regs)
	c.useDebugFrame = true
	return b.Init(c)
}

type debugFrameIniter interface {
	initDebugFrame()
}
