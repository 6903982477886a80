//go:build amd64

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
	Rip, Rsp, Rbp                        uintptr
	Rax, Rbx, Rcx, Rdx, Rsi, Rdi         uintptr
	R8, R9, R10, R11, R12, R13, R14, R15 uintptr
}

// NewContext builds a context from the three pointers that drive a walk.
func NewContext(ip, sp, fp uintptr) Context {
	return Context{Rip: ip, Rsp: sp, Rbp: fp}
}

// IP returns the instruction pointer.
func (c *Context) IP() uintptr { return c.Rip }

// SPtr returns the stack pointer.
func (c *Context) SPtr() uintptr { return c.Rsp }

// FPtr returns the frame pointer.
func (c *Context) FPtr() uintptr { return c.Rbp }

// regs converts the context to the unwinder's DWARF-numbered register
// file.
func (c *Context) regs() unwind.Regs {
	r := unwind.Regs{IP: c.Rip, SP: c.Rsp, FP: c.Rbp}
	r.X[regnum.AMD64_Rax] = c.Rax
	r.X[regnum.AMD64_Rdx] = c.Rdx
	r.X[regnum.AMD64_Rcx] = c.Rcx
	r.X[regnum.AMD64_Rbx] = c.Rbx
	r.X[regnum.AMD64_Rsi] = c.Rsi
	r.X[regnum.AMD64_Rdi] = c.Rdi
	r.X[regnum.AMD64_Rbp] = c.Rbp
	r.X[regnum.AMD64_Rsp] = c.Rsp
	r.X[regnum.AMD64_R8] = c.R8
	r.X[regnum.AMD64_R8+1] = c.R9
	r.X[regnum.AMD64_R8+2] = c.R10
	r.X[regnum.AMD64_R8+3] = c.R11
	r.X[regnum.AMD64_R8+4] = c.R12
	r.X[regnum.AMD64_R8+5] = c.R13
	r.X[regnum.AMD64_R8+6] = c.R14
	r.X[regnum.AMD64_R8+7] = c.R15
	r.X[regnum.AMD64_Rip] = c.Rip
	return r
}
