//go:build !amd64 && !arm64

package stackwalk

import "github.com/spindle-vm/stackwalk/internal/unwind"

// Context on architectures without an unwinder carries just the three
// pointers that describe an execution point. Captures come back empty.
type Context struct {
	PC, SP, FP uintptr
}

// NewContext builds a context from the three pointers that drive a walk.
func NewContext(ip, sp, fp uintptr) Context {
	return Context{PC: ip, SP: sp, FP: fp}
}

// IP returns the instruction pointer.
func (c *Context) IP() uintptr { return c.PC }

// SPtr returns the stack pointer.
func (c *Context) SPtr() uintptr { return c.SP }

// FPtr returns the frame pointer.
func (c *Context) FPtr() uintptr { return c.FP }

func (c *Context) regs() unwind.Regs {
	return unwind.Regs{IP: c.PC, SP: c.SP, FP: c.FP}
}
