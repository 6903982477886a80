//go:build amd64

package unwind

import "github.com/go-delve/delve/pkg/dwarf/regnum"

// DWARF register numbering for the host architecture.
const (
	regPC = regnum.AMD64_Rip
	regSP = regnum.AMD64_Rsp
	regFP = regnum.AMD64_Rbp

	maxRegs = regnum.AMD64_Rip + 1
)
