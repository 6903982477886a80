package stackwalk

import (
	"sync/atomic"

	"github.com/spindle-vm/stackwalk/symtab"
)

// Unresolved is the placeholder recorded in a frame's Func and File when
// the metadata provider cannot identify the address.
const Unresolved = "unknown"

// Frame is one source-level view of a captured address. Inlining expands
// a single address into several frames, callee before caller; only the
// last frame of such a chain is a real call frame.
type Frame struct {
	Func string
	File string
	// Line is -1 when unknown.
	Line int
	// Meta points at the compiled-function descriptor when the provider
	// has one; inlined and unresolved frames carry nil.
	Meta *symtab.Func
	// FromNative marks frames of the embedding host rather than compiled
	// guest code.
	FromNative bool
	Inlined    bool
	// Addr is the captured address the frame was resolved from, kept so
	// an unresolved frame still identifies its code location.
	Addr uintptr
}

type providerBox struct{ p symtab.Provider }

var activeProvider atomic.Pointer[providerBox]

// SetProvider installs the metadata provider consulted by Resolve. A nil
// provider resets to an empty registry, under which every address
// resolves to the placeholder frame.
func SetProvider(p symtab.Provider) {
	if p == nil {
		p = symtab.NewTable()
	}
	activeProvider.Store(&providerBox{p: p})
}

func loadProvider() symtab.Provider {
	if box := activeProvider.Load(); box != nil {
		return box.p
	}
	return nil
}

// Resolve expands one captured address into its logical frames, deepest
// callee first. The result always has at least one frame: an address the
// provider cannot identify yields a single placeholder frame with the
// address preserved. skipNative drops host frames, unless that would
// leave nothing, in which case the outermost frame is kept so the
// address stays visible.
func Resolve(addr uintptr, skipNative bool) []Frame {
	return resolveFrames(addr, skipNative, true)
}

func resolveFrames(addr uintptr, skipNative, bracket bool) []Frame {
	infos, ok := lookupChain(addr, bracket)
	if !ok {
		return []Frame{placeholderFrame(addr)}
	}
	frames := make([]Frame, 0, len(infos))
	for _, fi := range infos {
		if skipNative && fi.Native {
			continue
		}
		frames = append(frames, frameFromInfo(fi, addr))
	}
	if len(frames) == 0 {
		// Filtering must not erase the address entirely.
		return []Frame{frameFromInfo(infos[len(infos)-1], addr)}
	}
	return frames
}

// lookupChain consults the provider. The collector treats metadata
// lookups as blocking regions, so the call is bracketed by the
// safepoint; bracket is false on paths already running in a fault
// handler.
func lookupChain(addr uintptr, bracket bool) ([]symtab.FuncInfo, bool) {
	p := loadProvider()
	if p == nil {
		return nil, false
	}
	if bracket {
		sp := loadSafepoint()
		sp.Enter()
		defer sp.Leave()
	}
	infos, ok := p.Lookup(addr)
	if !ok || len(infos) == 0 {
		return nil, false
	}
	return infos, true
}

func placeholderFrame(addr uintptr) Frame {
	return Frame{
		Func: Unresolved,
		File: Unresolved,
		Line: -1,
		Addr: addr,
	}
}

func frameFromInfo(fi symtab.FuncInfo, addr uintptr) Frame {
	f := Frame{
		Func:       fi.Name,
		File:       fi.File,
		Line:       fi.Line,
		Meta:       fi.Func,
		FromNative: fi.Native,
		Inlined:    fi.Inlined,
		Addr:       addr,
	}
	if f.Func == "" {
		f.Func = Unresolved
	}
	if f.File == "" {
		f.File = Unresolved
	}
	if f.Line == 0 {
		f.Line = -1
	}
	return f
}
