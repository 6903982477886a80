package unwind

// fakeMem is a sparse word-addressed memory for tests. Reads outside the
// populated cells fail the way the production oracle fails on unmapped
// addresses.
type fakeMem map[uintptr]uintptr

func (m fakeMem) setWord(addr, v uintptr) { m[addr] = v }

func (m fakeMem) ReadWord(addr uintptr) (uintptr, bool) {
	v, ok := m[addr]
	return v, ok
}

func (m fakeMem) Readable(addr, n uintptr) bool {
	for off := uintptr(0); off < n; off += wordSize {
		if _, ok := m[addr+off]; !ok {
			return false
		}
	}
	return true
}
