package unwind

// disabledBackend is the stub for architectures with no trustworthy
// unwind strategy. Walks produce zero frames instead of wrong ones.
type disabledBackend struct{}

// Disabled returns the always-empty stub backend.
func Disabled() Backend { return disabledBackend{} }

func (disabledBackend) Init(*Cursor) bool                     { return false }
func (disabledBackend) Step(*Cursor, *uintptr, *uintptr) bool { return false }
func (disabledBackend) Validates() bool                       { return true }
