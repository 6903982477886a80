package unwind

// StepN drives the cursor until the output is full or the walk ends,
// writing one entry per frame into ips (and sps when non-nil), innermost
// frame first.
//
// The return value follows a contract callers must compensate for:
//
//   - When the walk ends on its own, StepN returns one more than the
//     number of steps that continued the walk. The step that ends the
//     walk still reports its frame, so the returned value equals the
//     number of entries written.
//   - When the output fills before the walk ends, StepN returns
//     len(ips)+1. The sentinel tells the caller the stack continues past
//     the buffer; clamp to len(ips) for the number of valid entries.
//   - When a step faults, StepN returns the count of frames reported
//     before the fault, backed off by one: the frame preceding the fault
//     was derived from the same suspect state. No trailing increment is
//     applied on this path.
func StepN(c *Cursor, ips, sps []uintptr) int {
	max := len(ips)
	if c.backend == nil || c.done {
		return 1
	}
	guarded := !c.backend.Validates()
	n := 0
	for {
		if n >= max {
			return max + 1
		}
		var sp *uintptr
		if sps != nil {
			sp = &sps[n]
		}
		ok, faulted := stepOnce(c, guarded, &ips[n], sp)
		if faulted {
			c.done = true
			if n > 0 {
				n--
			}
			return n
		}
		if !ok {
			c.done = true
			return n + 1
		}
		n++
	}
}

// stepOnce runs a single backend step, under a recover barrier when the
// backend does not validate its own memory accesses. The barrier is
// scoped to the one call so a fault discards only the frame being
// stepped.
func stepOnce(c *Cursor, guarded bool, ip, sp *uintptr) (ok, faulted bool) {
	if !guarded {
		return c.backend.Step(c, ip, sp), false
	}
	defer func() {
		if recover() != nil {
			ok, faulted = false, true
		}
	}()
	return c.backend.Step(c, ip, sp), false
}
