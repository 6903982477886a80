package unwind

// fpBackend chases saved frame-pointer links. Each step reports the
// cursor's current frame and then climbs to the caller through the
// standard prologue layout: the frame pointer addresses the saved caller
// frame pointer, with the return address one word above it.
type fpBackend struct{}

// FP returns the frame-pointer-chasing backend.
func FP() Backend { return fpBackend{} }

func (fpBackend) Init(c *Cursor) bool {
	return c.regs.IP != 0
}

func (fpBackend) Step(c *Cursor, ip, sp *uintptr) bool {
	*ip = c.regs.IP
	if sp != nil {
		*sp = c.regs.SP
	}
	return fpChase(c)
}

// Validates reports true: every dereference goes through the memory
// oracle, so a step cannot fault.
func (fpBackend) Validates() bool { return true }

// fpChase advances the cursor to the caller's frame. Stacks grow down,
// so each link must climb strictly: a chain that stops climbing is
// corrupt or circular and ends the walk. A zero saved frame pointer
// marks the root frame; the step after it terminates.
func fpChase(c *Cursor) bool {
	fp := c.regs.FP
	if fp == 0 || fp%wordSize != 0 {
		return false
	}
	if !c.mem.Readable(fp, 2*wordSize) {
		return false
	}
	next, ok := c.mem.ReadWord(fp)
	if !ok {
		return false
	}
	ret, ok := c.mem.ReadWord(fp + wordSize)
	if !ok || ret == 0 {
		return false
	}
	if next != 0 && next <= fp {
		return false
	}
	c.setIP(ret)
	c.setSP(fp + 2*wordSize)
	c.setFP(next)
	return true
}
