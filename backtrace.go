package stackwalk

import (
	"unsafe"

	"github.com/minio/highwayhash"
)

// Backtrace is a captured sequence of raw code addresses, innermost call
// first. SPs holds the matching stack pointers when they were requested
// at capture time; it is nil otherwise.
type Backtrace struct {
	Addrs []uintptr
	SPs   []uintptr
}

// Empty reports whether the capture produced no frames.
func (bt *Backtrace) Empty() bool {
	return len(bt.Addrs) == 0
}

var backtraceHashKey [32]byte

// Hash returns a 64-bit fingerprint of the address sequence. Identical
// stacks hash identically across captures, so collectors can deduplicate
// them.
func (bt *Backtrace) Hash() uint64 {
	if len(bt.Addrs) == 0 {
		return 0
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(&bt.Addrs[0])), len(bt.Addrs)*int(unsafe.Sizeof(uintptr(0))))
	return highwayhash.Sum64(data, backtraceHashKey[:])
}
