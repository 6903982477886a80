package unwind

import (
	"encoding/binary"
	"sync"

	"github.com/go-delve/delve/pkg/dwarf/frame"

	"github.com/spindle-vm/stackwalk/internal/modmap"
)

// cfiBackend recovers caller registers by evaluating the DWARF call-frame
// information modules carry, through delve's frame machinery. It is the
// equivalent of handing the walk to an external unwinding library.
//
// A module's frame table is parsed once and cached; the parse is the only
// allocating part of a step. Entries are keyed by module identity so a
// region reused by a new module cannot be served stale rules.
type cfiBackend struct {
	mu    sync.Mutex
	cache map[cfiKey]frame.FrameDescriptionEntries
}

type cfiKey struct {
	mod        *modmap.Module
	debugFrame bool
}

const cfiCacheMax = 128

var cfiShared = &cfiBackend{cache: make(map[cfiKey]frame.FrameDescriptionEntries)}

// CFI returns the call-frame-information backend.
func CFI() Backend { return cfiShared }

func (b *cfiBackend) Init(c *Cursor) bool {
	modmap.Refresh()
	return c.regs.IP != 0
}

// initDebugFrame marks the backend as supporting walks directed at the
// modules' explicit .debug_frame tables.
func (b *cfiBackend) initDebugFrame() {}

func (b *cfiBackend) Step(c *Cursor, ip, sp *uintptr) bool {
	*ip = c.regs.IP
	if sp != nil {
		*sp = c.regs.SP
	}
	return b.advance(c)
}

// Validates reports false: call-frame rules direct reads wherever the
// table says, and parsing untrusted tables can panic, so steps run under
// the step loop's fault barrier.
func (b *cfiBackend) Validates() bool { return false }

func (b *cfiBackend) advance(c *Cursor) bool {
	pc := c.regs.IP
	m, ok := modmap.Lookup(pc)
	if !ok {
		return false
	}
	fdes, ok := b.entriesFor(m, c.useDebugFrame)
	if !ok {
		return false
	}
	fde, err := fdes.FDEForPC(uint64(pc))
	if err != nil {
		return false
	}
	fctx := fde.EstablishFrame(uint64(pc))
	cfa, ok := evalCFA(c, fctx.CFA)
	if !ok {
		return false
	}

	// Restore into a scratch file first so a failed rule cannot leave the
	// cursor half updated.
	next := c.regs.X
	next[regSP] = cfa
	for reg, rule := range fctx.Regs {
		if reg >= maxRegs || reg == regSP {
			continue
		}
		v, ok := evalRule(c, reg, rule, cfa)
		if !ok {
			if reg == fctx.RetAddrReg {
				return false
			}
			continue
		}
		next[reg] = v
	}
	if fctx.RetAddrReg >= maxRegs {
		return false
	}
	if rule, ok := fctx.Regs[fctx.RetAddrReg]; !ok || rule.Rule == frame.RuleUndefined {
		return false
	}
	ret := next[fctx.RetAddrReg]
	if ret == 0 {
		return false
	}
	c.regs.X = next
	c.regs.IP = ret
	c.regs.SP = cfa
	c.regs.FP = next[regFP]
	c.regs.X[regPC] = ret
	return true
}

func evalCFA(c *Cursor, rule frame.DWRule) (uintptr, bool) {
	switch rule.Rule {
	case frame.RuleCFA:
		if rule.Reg >= maxRegs {
			return 0, false
		}
		return c.regs.X[rule.Reg] + uintptr(rule.Offset), true
	default:
		return 0, false
	}
}

// evalRule computes the caller's value of one register. Expression rules
// are not evaluated; a frame relying on them ends the walk.
func evalRule(c *Cursor, reg uint64, rule frame.DWRule, cfa uintptr) (uintptr, bool) {
	switch rule.Rule {
	case frame.RuleOffset:
		return c.mem.ReadWord(cfa + uintptr(rule.Offset))
	case frame.RuleValOffset:
		return cfa + uintptr(rule.Offset), true
	case frame.RuleRegister:
		if rule.Reg >= maxRegs {
			return 0, false
		}
		return c.regs.X[rule.Reg], true
	case frame.RuleSameVal:
		return c.regs.X[reg], true
	default:
		return 0, false
	}
}

// entriesFor returns the module's parsed frame table, parsing and caching
// it on first use. A module whose table fails to parse is cached as
// having none.
func (b *cfiBackend) entriesFor(m *modmap.Module, debugFrame bool) (frame.FrameDescriptionEntries, bool) {
	key := cfiKey{mod: m, debugFrame: debugFrame}
	b.mu.Lock()
	defer b.mu.Unlock()
	if fdes, ok := b.cache[key]; ok {
		return fdes, fdes != nil
	}
	var data []byte
	var sectionAddr uintptr
	if debugFrame {
		data = m.DebugFrame
	} else {
		data, sectionAddr = m.EHFrame, m.EHFrameAddr
	}
	var fdes frame.FrameDescriptionEntries
	if len(data) > 0 {
		if parsed, err := frame.Parse(data, binary.LittleEndian, 0, int(wordSize), uint64(sectionAddr)); err == nil {
			fdes = parsed
		}
	}
	if len(b.cache) >= cfiCacheMax {
		// Unregistered modules leave dead entries behind; dropping the
		// whole cache is cheaper than tracking module lifetimes.
		b.cache = make(map[cfiKey]frame.FrameDescriptionEntries)
	}
	b.cache[key] = fdes
	return fdes, fdes != nil
}
