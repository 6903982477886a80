//go:build arm64

package unwind

import "github.com/go-delve/delve/pkg/dwarf/regnum"

// DWARF register numbering for the host architecture.
const (
	regPC = regnum.ARM64_PC
	regSP = regnum.ARM64_SP
	regFP = regnum.ARM64_BP

	maxRegs = regnum.ARM64_PC + 1
)
