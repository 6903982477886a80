// Package modmap tracks the executable code modules registered with the
// runtime and answers "which module contains this address" queries during
// stack walks.
//
// Lookups race with module registration. The slow path (rebuilding the
// sorted index and scanning it) is not reentrant, so it runs with the
// process-wide stackwalk flag set; a lookup that cannot acquire the flag
// reports no module rather than blocking.
package modmap

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/elastic/go-freelru"
)

// FrameEntry describes how to virtually unwind one pc range of compiled
// code. For a pc in [Lo, Hi) with the frame fully established, the frame's
// CFA is SP+FrameSize, the return address is the word at CFA-8 and, when
// SavesFP is set, the caller's frame pointer is the word at CFA-16.
type FrameEntry struct {
	Lo, Hi    uintptr
	FrameSize uintptr
	SavesFP   bool
}

// Module is a contiguous range of executable code: a JIT code region or a
// loaded host image.
type Module struct {
	Name string
	Base uintptr
	Size uintptr

	// FrameTable holds the module's unwind entries, sorted by Lo. Used by
	// the table unwind backend.
	FrameTable []FrameEntry

	// EHFrame and DebugFrame hold call-frame information for the CFI
	// backend. EHFrameAddr is the address the EHFrame bytes are mapped at;
	// pc-relative encodings are resolved against it. DebugFrame is the
	// alternative used for code whose eh_frame registration is unreliable.
	EHFrame     []byte
	EHFrameAddr uintptr
	DebugFrame  []byte

	// Host marks modules that belong to the embedding host rather than to
	// guest compiled code.
	Host bool
}

func (m *Module) End() uintptr { return m.Base + m.Size }

// Contains reports whether addr falls inside the module.
func (m *Module) Contains(addr uintptr) bool {
	return addr >= m.Base && addr < m.End()
}

// FrameEntryFor returns the frame-table entry covering addr.
func (m *Module) FrameEntryFor(addr uintptr) (FrameEntry, bool) {
	i := sort.Search(len(m.FrameTable), func(i int) bool {
		return m.FrameTable[i].Hi > addr
	})
	if i < len(m.FrameTable) && m.FrameTable[i].Lo <= addr {
		return m.FrameTable[i], true
	}
	return FrameEntry{}, false
}

var registry struct {
	mu      sync.Mutex
	modules []*Module
	dirty   bool
}

// sorted is the index snapshot scanned by lookups. It is only replaced
// with the stackwalk flag held.
var sorted atomic.Pointer[[]*Module]

// inWalk is the process-wide "currently inside stackwalk" flag.
var inWalk atomic.Bool

const (
	pageShift     = 12
	baseCacheSize = 512
)

// baseCache remembers recent page-to-module-base translations so that hot
// lookups skip the guarded scan.
var baseCache *freelru.SyncedLRU[uintptr, uintptr]

func init() {
	c, err := freelru.NewSynced[uintptr, uintptr](baseCacheSize, hashPage)
	if err != nil {
		panic(err)
	}
	baseCache = c
}

func hashPage(page uintptr) uint32 {
	return uint32((uint64(page) * 0x9e3779b97f4a7c15) >> 32)
}

// Register adds a module to the map. Module ranges must not overlap, and
// bases are expected to be page aligned (JIT regions are mapped that way).
func Register(m *Module) error {
	if m.Name == "" {
		return fmt.Errorf("failed to register module: empty name")
	}
	if m.Size == 0 {
		return fmt.Errorf("failed to register module %s: empty range", m.Name)
	}
	if m.Base+m.Size < m.Base {
		return fmt.Errorf("failed to register module %s: range overflows", m.Name)
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	for _, other := range registry.modules {
		if m.Base < other.End() && other.Base < m.End() {
			return fmt.Errorf("failed to register module %s: overlaps %s", m.Name, other.Name)
		}
	}
	registry.modules = append(registry.modules, m)
	registry.dirty = true
	return nil
}

// Unregister removes a module, typically a freed JIT region. The history
// cache is purged so that stale bases are not served.
func Unregister(m *Module) {
	registry.mu.Lock()
	for i, other := range registry.modules {
		if other == m {
			registry.modules = append(registry.modules[:i], registry.modules[i+1:]...)
			registry.dirty = true
			break
		}
	}
	registry.mu.Unlock()
	baseCache.Purge()
}

// LookupBase returns the base address of the module containing addr. The
// result is served from the history cache when possible; a miss scans the
// registry with the stackwalk flag held. When the flag is contended the
// miss is reported as no module.
func LookupBase(addr uintptr) (uintptr, bool) {
	page := addr >> pageShift
	if base, ok := baseCache.Get(page); ok {
		return base, true
	}
	m, ok := Lookup(addr)
	if !ok {
		return 0, false
	}
	baseCache.Add(page, m.Base)
	return m.Base, true
}

// Lookup returns the module containing addr. It acquires the stackwalk
// flag for the duration of the scan and reports no module when the flag
// is contended.
func Lookup(addr uintptr) (*Module, bool) {
	if !TryEnterWalk() {
		return nil, false
	}
	defer LeaveWalk()
	mods := index()
	i := sort.Search(len(mods), func(i int) bool { return mods[i].End() > addr })
	if i < len(mods) && mods[i].Contains(addr) {
		return mods[i], true
	}
	return nil, false
}

// Covers reports whether [addr, addr+n) lies inside a registered module.
// It consults the current index snapshot without refreshing it, so it is
// safe to call while the stackwalk flag is held.
func Covers(addr, n uintptr) bool {
	if addr+n < addr {
		return false
	}
	p := sorted.Load()
	if p == nil {
		return false
	}
	mods := *p
	i := sort.Search(len(mods), func(i int) bool { return mods[i].End() > addr })
	return i < len(mods) && mods[i].Contains(addr) && addr+n <= mods[i].End()
}

// AtBase returns the module whose base address is base, typically to turn
// a cached LookupBase result back into a module. It reads the current
// index snapshot without refreshing it, so it is safe to call while the
// stackwalk flag is held.
func AtBase(base uintptr) (*Module, bool) {
	p := sorted.Load()
	if p == nil {
		return nil, false
	}
	mods := *p
	i := sort.Search(len(mods), func(i int) bool { return mods[i].Base >= base })
	if i < len(mods) && mods[i].Base == base {
		return mods[i], true
	}
	return nil, false
}

// Refresh rebuilds the sorted index if the registry changed since the
// last rebuild. It reports false when the stackwalk flag is contended and
// the refresh was skipped.
func Refresh() bool {
	if !TryEnterWalk() {
		return false
	}
	defer LeaveWalk()
	index()
	return true
}

// TryEnterWalk sets the process-wide stackwalk flag, failing when it is
// already set.
func TryEnterWalk() bool {
	return inWalk.CompareAndSwap(false, true)
}

// LeaveWalk clears the stackwalk flag.
func LeaveWalk() {
	inWalk.Store(false)
}

// index returns the up-to-date sorted module list. Must be called with
// the stackwalk flag held.
func index() []*Module {
	registry.mu.Lock()
	dirty := registry.dirty
	registry.mu.Unlock()
	if p := sorted.Load(); p != nil && !dirty {
		return *p
	}
	registry.mu.Lock()
	mods := make([]*Module, len(registry.modules))
	copy(mods, registry.modules)
	registry.dirty = false
	registry.mu.Unlock()
	sort.Slice(mods, func(i, j int) bool { return mods[i].Base < mods[j].Base })
	sorted.Store(&mods)
	return mods
}

// Reset drops all registered modules and cached lookups. Intended for
// tests.
func Reset() {
	registry.mu.Lock()
	registry.modules = nil
	registry.dirty = true
	registry.mu.Unlock()
	sorted.Store(nil)
	baseCache.Purge()
}
