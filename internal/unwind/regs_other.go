//go:build !amd64 && !arm64

package unwind

// Register indices for architectures without a native unwinder. The
// disabled backend never reads them; the slots exist so the shared cursor
// code compiles.
const (
	regPC = 0
	regSP = 1
	regFP = 2

	maxRegs = 3
)
