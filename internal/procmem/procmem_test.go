package procmem

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/spindle-vm/stackwalk/internal/modmap"
)

func TestReadWordFromRegisteredRegion(t *testing.T) {
	buf := []uintptr{0x1111, 0x2222, 0x3333}
	lo := uintptr(unsafe.Pointer(&buf[0]))
	hi := lo + uintptr(len(buf))*wordSize
	mem := New(Region{Lo: lo, Hi: hi})

	w, ok := mem.ReadWord(uintptr(unsafe.Pointer(&buf[1])))
	require.True(t, ok)
	require.Equal(t, uintptr(0x2222), w)

	w, ok = mem.ReadWord(uintptr(unsafe.Pointer(&buf[2])))
	require.True(t, ok)
	require.Equal(t, uintptr(0x3333), w)
}

func TestReadableRejectsBadAddresses(t *testing.T) {
	modmap.Reset()
	mem := New()

	require.False(t, mem.Readable(0, 8))
	require.False(t, mem.Readable(^uintptr(0)-4, 8))
	// The zero page is never mapped.
	require.False(t, mem.Readable(8, 8))
}

func TestReadableRegionBounds(t *testing.T) {
	mem := New(Region{Lo: 0x1000, Hi: 0x2000})

	require.True(t, mem.Readable(0x1000, 8))
	require.True(t, mem.Readable(0x1ff8, 8))
	require.False(t, mem.Readable(0x1ffc, 8))
	require.False(t, mem.Readable(0xff8, 8))
}
