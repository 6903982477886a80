// Package symtab maintains the compiled-function metadata consulted when
// captured addresses are resolved into source-level frames.
//
// Two providers exist. Table is the static in-process registry: the
// runtime adds a descriptor for every function it compiles and removes
// it when the code is freed. DWARFData resolves addresses through the
// debug information of a loaded image, for host frames and ahead-of-time
// compiled code.
package symtab

import (
	"fmt"
	"sort"
	"sync"
)

// Provider answers address lookups. Lookup returns the logical frames at
// addr, callee before caller where inlining merged several calls into
// one address, and false when the provider has no information. The last
// frame of a non-empty result is never inlined.
//
// Providers must be safe for concurrent use.
type Provider interface {
	Lookup(addr uintptr) ([]FuncInfo, bool)
}

// FuncInfo is one logical frame reported by a provider. A negative Line
// means the line is unknown.
type FuncInfo struct {
	Name string
	File string
	Line int
	// Func points at the registered descriptor when the provider has
	// one. Only the outermost frame of a lookup carries it.
	Func *Func
	// Native marks host code; Inlined marks frames the compiler merged
	// into their caller.
	Native  bool
	Inlined bool
}

// Func describes one compiled function.
type Func struct {
	Name string
	File string
	// [Lo, Hi) is the function's code range.
	Lo, Hi uintptr
	// Native marks functions belonging to the embedding host.
	Native bool
	// Lines maps offsets from Lo to source lines, sorted by Off. Each
	// entry gives the innermost line from its offset up to the next
	// entry, the way a compiler line table does.
	Lines []Line
	// Inlined lists the calls merged into this function's body.
	Inlined []InlineSite
}

// Line is one line-table entry.
type Line struct {
	Off  uintptr
	Line int
}

// InlineSite records one call the compiler merged into the enclosing
// function's body.
type InlineSite struct {
	// Name and File identify the inlined callee.
	Name string
	File string
	// [Lo, Hi) is the callee's code range inside the enclosing function.
	Lo, Hi uintptr
	// Depth is the nesting level: 1 for a call inlined directly into the
	// function, 2 for a call inlined into a depth-1 callee, and so on.
	Depth int
	// CallLine is the source line of the call in the inlining caller.
	CallLine int
}

// Contains reports whether addr falls inside the function's code range.
func (f *Func) Contains(addr uintptr) bool {
	return addr >= f.Lo && addr < f.Hi
}

// LineAt returns the innermost source line at pc, or -1 when the
// function has no line entry there.
func (f *Func) LineAt(pc uintptr) int {
	if !f.Contains(pc) || len(f.Lines) == 0 {
		return -1
	}
	off := pc - f.Lo
	i := sort.Search(len(f.Lines), func(i int) bool { return f.Lines[i].Off > off })
	if i == 0 {
		return -1
	}
	return f.Lines[i-1].Line
}

// chain expands addr into the function's logical frames, innermost
// first. The line of each frame is the line inside that frame: the line
// table's view for the innermost one, the call site's line for each
// enclosing frame.
func (f *Func) chain(addr uintptr) []FuncInfo {
	var sites []*InlineSite
	for i := range f.Inlined {
		s := &f.Inlined[i]
		if addr >= s.Lo && addr < s.Hi {
			sites = append(sites, s)
		}
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].Depth > sites[j].Depth })

	infos := make([]FuncInfo, 0, len(sites)+1)
	line := f.LineAt(addr)
	for _, s := range sites {
		infos = append(infos, FuncInfo{
			Name:    s.Name,
			File:    s.File,
			Line:    line,
			Native:  f.Native,
			Inlined: true,
		})
		line = s.CallLine
	}
	infos = append(infos, FuncInfo{
		Name:   f.Name,
		File:   f.File,
		Line:   line,
		Func:   f,
		Native: f.Native,
	})
	return infos
}

// Table is the static provider backing the runtime's own registry.
type Table struct {
	mu    sync.RWMutex
	funcs []*Func // sorted by Lo
}

var _ Provider = (*Table)(nil)

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

// Add registers f. The code range must be non-empty and must not overlap
// a previously registered function.
func (t *Table) Add(f *Func) error {
	if f.Name == "" {
		return fmt.Errorf("failed to register function: empty name")
	}
	if f.Hi <= f.Lo {
		return fmt.Errorf("failed to register function %s: empty range", f.Name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	i := sort.Search(len(t.funcs), func(i int) bool { return t.funcs[i].Lo >= f.Lo })
	if i > 0 && t.funcs[i-1].Hi > f.Lo {
		return fmt.Errorf("failed to register function %s: overlaps %s", f.Name, t.funcs[i-1].Name)
	}
	if i < len(t.funcs) && f.Hi > t.funcs[i].Lo {
		return fmt.Errorf("failed to register function %s: overlaps %s", f.Name, t.funcs[i].Name)
	}
	t.funcs = append(t.funcs, nil)
	copy(t.funcs[i+1:], t.funcs[i:])
	t.funcs[i] = f
	return nil
}

// Remove drops a previously registered descriptor, typically when its
// code region is freed.
func (t *Table) Remove(f *Func) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, other := range t.funcs {
		if other == f {
			t.funcs = append(t.funcs[:i], t.funcs[i+1:]...)
			return
		}
	}
}

// FuncAt returns the descriptor covering addr.
func (t *Table) FuncAt(addr uintptr) (*Func, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i := sort.Search(len(t.funcs), func(i int) bool { return t.funcs[i].Hi > addr })
	if i < len(t.funcs) && t.funcs[i].Contains(addr) {
		return t.funcs[i], true
	}
	return nil, false
}

// Lookup implements Provider.
func (t *Table) Lookup(addr uintptr) ([]FuncInfo, bool) {
	f, ok := t.FuncAt(addr)
	if !ok {
		return nil, false
	}
	return f.chain(addr), true
}
