package inspectpb

import (
	"testing"

	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/require"
)

// The messages are maintained by hand, so exercise the struct tags through a
// real marshal instead of trusting them by inspection. Packed repeated
// fields, nested messages, and negative varints are the shapes that would
// break silently if a tag were wrong.
func TestWireRoundTrip(t *testing.T) {
	capture := &CaptureResponse{
		Addresses:           []uint64{0x401000, 0x401234, 0x7f0000001000},
		StackPointers:       []uint64{0x7ffd1000, 0x7ffd1040, 0x7ffd1080},
		StackHash:           0xdeadbeefcafe,
		CapturedAtUnixNanos: 1700000000000000000,
	}
	data, err := proto.Marshal(capture)
	require.NoError(t, err)
	var gotCapture CaptureResponse
	require.NoError(t, proto.Unmarshal(data, &gotCapture))
	require.Equal(t, capture.Addresses, gotCapture.Addresses)
	require.Equal(t, capture.StackPointers, gotCapture.StackPointers)
	require.Equal(t, capture.StackHash, gotCapture.StackHash)
	require.Equal(t, capture.CapturedAtUnixNanos, gotCapture.CapturedAtUnixNanos)

	resolve := &ResolveResponse{
		Frames: []*FrameInfo{
			{
				Function: "fma",
				File:     "math.sp",
				Line:     14,
				Inlined:  true,
				Address:  0x401234,
			},
			{
				Function: "solve!",
				File:     "solver.sp",
				Line:     -1,
				Metadata: &FuncMeta{Name: "solve!", Entry: 0x401200, End: 0x401300},
				Address:  0x401234,
			},
		},
	}
	data, err = proto.Marshal(resolve)
	require.NoError(t, err)
	var gotResolve ResolveResponse
	require.NoError(t, proto.Unmarshal(data, &gotResolve))
	require.Len(t, gotResolve.Frames, 2)
	require.Equal(t, "fma", gotResolve.Frames[0].GetFunction())
	require.True(t, gotResolve.Frames[0].GetInlined())
	require.Equal(t, int64(-1), gotResolve.Frames[1].GetLine())
	require.Equal(t, uint64(0x401200), gotResolve.Frames[1].GetMetadata().GetEntry())
	require.Nil(t, gotResolve.Frames[0].GetMetadata())
}
