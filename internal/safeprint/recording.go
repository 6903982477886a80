package safeprint

import "sync"

// Recording is a Sink for tests: it retains every line written. Unlike
// production sinks it allocates freely.
type Recording struct {
	mu    sync.Mutex
	lines []string
}

func (r *Recording) WriteLine(line []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, string(line))
}

// Lines returns the lines written so far.
func (r *Recording) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}
