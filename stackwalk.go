// Package stackwalk captures native call-stack backtraces of the Spindle
// runtime's threads and resolves the captured addresses into
// source-level frames.
//
// Capture is the cheap half: the register snapshot a thread saved at its
// last compiled-to-host transition is walked frame by frame into a
// buffer of raw code addresses, tolerating corrupt stacks. Resolution is
// the deferred half: each address is expanded through the registered
// metadata provider into one or more logical frames (inlining produces
// several). A process-wide slot retains the backtrace of the most recent
// fault, and a signal-safe printer renders stacks without allocating.
//
// Capture never blocks and never takes locks shared with resolution, so
// it is usable from trap handlers; resolution allocates freely and may
// consult debug info on disk.
package stackwalk

import (
	"github.com/spindle-vm/stackwalk/internal/modmap"
	"github.com/spindle-vm/stackwalk/internal/unwind"
)

// Memory is the validated view of the process's address space used
// during walks. Reads check the address against the thread's stack
// bounds and the registered modules instead of faulting.
type Memory = unwind.Memory

// FrameEntry describes how to virtually unwind one pc range of a
// module's code.
type FrameEntry = modmap.FrameEntry

// Module is a contiguous executable region registered with the walker: a
// JIT code region or a loaded image.
type Module = modmap.Module

// Supported reports whether this build configuration can unwind stacks.
func Supported() error {
	return unwind.Supported()
}

// RegisterModule adds a module to the walker's map. The runtime
// registers each JIT region as it is mapped.
func RegisterModule(m *Module) error {
	return modmap.Register(m)
}

// UnregisterModule removes a module, typically when its region is
// unmapped. Concurrent walks fail their lookups closed rather than
// observing a half-removed module.
func UnregisterModule(m *Module) {
	modmap.Unregister(m)
}
