package stackwalk

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spindle-vm/stackwalk/internal/procmem"
)

// Thread represents one native thread executing compiled code. The
// runtime registers a Thread per OS thread it manages and refreshes its
// context at every compiled-to-host transition.
type Thread struct {
	id   uint64
	name string

	mu struct {
		sync.Mutex
		ctx              Context
		stackLo, stackHi uintptr
		mem              Memory
	}
}

// NewThread returns a thread handle. Until SetStack is called, walks
// validate reads against the registered modules and the process's own
// mappings only.
func NewThread(id uint64, name string) *Thread {
	t := &Thread{id: id, name: name}
	t.mu.mem = procmem.Default()
	return t
}

// ID returns the runtime's identifier for the thread.
func (t *Thread) ID() uint64 { return t.id }

// Name returns the thread's display name.
func (t *Thread) Name() string { return t.name }

// SetContext records the thread's register file.
func (t *Thread) SetContext(ctx Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mu.ctx = ctx
}

// Context returns a copy of the most recently recorded register file.
// The copy is a faithful snapshot of one transition; it does not track
// the thread past it.
func (t *Thread) Context() Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mu.ctx
}

// SetStack records the thread's stack bounds. Stack reads during a walk
// are then accepted only inside [lo, hi), tightening the memory oracle
// from "any mapped page" to the thread's own stack.
func (t *Thread) SetStack(lo, hi uintptr) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mu.stackLo, t.mu.stackHi = lo, hi
	t.mu.mem = procmem.New(procmem.Region{Lo: lo, Hi: hi})
}

// Stack returns the recorded stack bounds, zero until SetStack.
func (t *Thread) Stack() (lo, hi uintptr) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mu.stackLo, t.mu.stackHi
}

// Memory returns the thread's validated memory view.
func (t *Thread) Memory() Memory {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mu.mem
}

var threads struct {
	sync.Mutex
	byID map[uint64]*Thread
}

// RegisterThread adds t to the process-wide thread registry.
func RegisterThread(t *Thread) error {
	threads.Lock()
	defer threads.Unlock()
	if threads.byID == nil {
		threads.byID = make(map[uint64]*Thread)
	}
	if _, ok := threads.byID[t.id]; ok {
		return fmt.Errorf("failed to register thread %d: already registered", t.id)
	}
	threads.byID[t.id] = t
	return nil
}

// UnregisterThread removes t from the registry.
func UnregisterThread(t *Thread) {
	threads.Lock()
	defer threads.Unlock()
	delete(threads.byID, t.id)
}

// ThreadByID returns the registered thread with the given id.
func ThreadByID(id uint64) (*Thread, bool) {
	threads.Lock()
	defer threads.Unlock()
	t, ok := threads.byID[id]
	return t, ok
}

// Threads returns the registered threads, ordered by id.
func Threads() []*Thread {
	threads.Lock()
	defer threads.Unlock()
	out := make([]*Thread, 0, len(threads.byID))
	for _, t := range threads.byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
