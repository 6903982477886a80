package unwind

import "github.com/spindle-vm/stackwalk/internal/modmap"

// tableBackend unwinds through the frame-table entries modules register,
// the platform's function-table lookup service in miniature. Code with no
// entry is assumed to follow the standard frame-pointer prologue and is
// stepped by chasing the saved link instead.
type tableBackend struct{}

// Table returns the frame-table backend.
func Table() Backend { return tableBackend{} }

// Init refreshes the module index so the walk sees modules registered
// since the last one. A contended refresh is skipped; lookups then miss
// the newest modules and the walk ends early instead of blocking.
func (tableBackend) Init(c *Cursor) bool {
	modmap.Refresh()
	return c.regs.IP != 0
}

func (tableBackend) Step(c *Cursor, ip, sp *uintptr) bool {
	*ip = c.regs.IP
	if sp != nil {
		*sp = c.regs.SP
	}
	base, ok := modmap.LookupBase(c.regs.IP)
	if !ok {
		return false
	}
	m, ok := modmap.AtBase(base)
	if !ok {
		return false
	}
	e, ok := m.FrameEntryFor(c.regs.IP)
	if !ok {
		// No unwind entry: assume a standard prologue.
		return fpChase(c)
	}
	cfa := c.regs.SP + e.FrameSize
	ret, ok := c.mem.ReadWord(cfa - wordSize)
	if !ok {
		return false
	}
	if e.SavesFP {
		fp, ok := c.mem.ReadWord(cfa - 2*wordSize)
		if !ok {
			return false
		}
		c.setFP(fp)
	}
	c.setIP(ret)
	c.setSP(cfa)
	return ret != 0
}

// Validates reports true: lookups go through the module map and
// dereferences through the memory oracle.
func (tableBackend) Validates() bool { return true }
