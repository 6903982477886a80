package stackwalk

import "sync/atomic"

// Safepoint lets the runtime's collector treat metadata lookups as
// blocking regions: Resolve enters the safepoint around every provider
// call, so collection can proceed while symbolication blocks on debug
// info.
type Safepoint interface {
	Enter()
	Leave()
}

type noSafepoint struct{}

func (noSafepoint) Enter() {}
func (noSafepoint) Leave() {}

type safepointBox struct{ sp Safepoint }

var activeSafepoint atomic.Pointer[safepointBox]

// SetSafepoint installs the runtime's safepoint hooks. A nil safepoint
// resets to the no-op default used by hosts without a collector.
func SetSafepoint(sp Safepoint) {
	if sp == nil {
		sp = noSafepoint{}
	}
	activeSafepoint.Store(&safepointBox{sp: sp})
}

func loadSafepoint() Safepoint {
	if box := activeSafepoint.Load(); box != nil {
		return box.sp
	}
	return noSafepoint{}
}
