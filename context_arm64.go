//go:build arm64

package stackwalk

import (
	"github.com/go-delve/delve/pkg/dwarf/regnum"

	"github.com/spindle-vm/stackwalk/internal/unwind"
)

// Context is a point-in-time copy of one thread's register file. The
// runtime records it on every transition between compiled code and the
// host, so a thread's latest Context describes its current execution
// point whenever the thread is inside compiled code.
type Context struct {
	// X holds x0-x30; x29 is the frame pointer and x30 the link
	// register.
	X  [31]uintptr
	SP uintptr
	PC uintptr
}

// NewContext builds a context from the three pointers that drive a walk.
func NewContext(ip, sp, fp uintptr) Context {
	c := Context{PC: ip, SP: sp}
	c.X[29] = fp
	return c
}

// IP returns the instruction pointer.
func (c *Context) IP() uintptr { return c.PC }

// SPtr returns the stack pointer.
func (c *Context) SPtr() uintptr { return c.SP }

// FPtr returns the frame pointer.
func (c *Context) FPtr() uintptr { return c.X[29] }

// regs converts the context to the unwinder's DWARF-numbered register
// file.
func (c *Context) regs() unwind.Regs {
	r := unwind.Regs{IP: c.PC, SP: c.SP, FP: c.X[29]}
	for i, v := range c.X {
		r.X[i] = v
	}
	r.X[regnum.ARM64_SP] = c.SP
	r.X[regnum.ARM64_PC] = c.PC
	return r
}
