package stackwalk

import "github.com/spindle-vm/stackwalk/internal/safeprint"

// Sink consumes rendered backtrace lines, one call per line with no
// trailing newline. Production sinks must not allocate, block or take
// locks; the printer may run in a fault handler.
type Sink = safeprint.Sink

// Stderr returns the production sink writing straight to standard error.
func Stderr() Sink { return safeprint.Stderr() }

// PrintBacktrace renders bt through sink, one line per captured address.
// Captured entries are return addresses, so each is resolved one byte
// back to land inside the call instruction; inlined expansions are
// suppressed so an address prints exactly one line.
//
// The provider is consulted without the safepoint bracket: this path
// runs from fault handlers where the collector may be in an arbitrary
// state.
func PrintBacktrace(bt *Backtrace, sink Sink) {
	var p safeprint.Printer
	for _, addr := range bt.Addrs {
		printAddr(&p, sink, addr-1)
	}
}

func printAddr(p *safeprint.Printer, sink Sink, addr uintptr) {
	infos, ok := lookupChain(addr, false)
	if !ok {
		p.Unknown(sink, addr)
		return
	}
	for _, fi := range infos {
		if fi.Inlined {
			continue
		}
		name, file := fi.Name, fi.File
		if name == "" {
			name = Unresolved
		}
		if file == "" {
			file = Unresolved
		}
		line := fi.Line
		if line == 0 {
			line = -1
		}
		p.Frame(sink, name, file, line)
	}
}
