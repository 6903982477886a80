package stackwalk

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spindle-vm/stackwalk/internal/faultsnap"
	"github.com/spindle-vm/stackwalk/internal/safeprint"
	"github.com/spindle-vm/stackwalk/internal/unwind"
	"github.com/spindle-vm/stackwalk/symtab"
)

func TestRecordFaultRoundTrip(t *testing.T) {
	t.Cleanup(faultsnap.Reset)
	faultsnap.Reset()
	withBackend(t, unwind.FP())

	_, ok := LastFault()
	require.False(t, ok)

	before := time.Now()
	th := chainThread(9)
	n := RecordFault(th)
	require.Equal(t, 9, n)

	snap, ok := LastFault()
	require.True(t, ok)
	require.Len(t, snap.Addrs, 9)
	require.Equal(t, chainCode, snap.Addrs[0])
	require.False(t, snap.CapturedAt.Before(before))

	// The returned copy is detached from the published snapshot.
	snap.Addrs[0] = 0
	again, ok := LastFault()
	require.True(t, ok)
	require.Equal(t, chainCode, again.Addrs[0])
}

func TestRecordFaultReplacesPrevious(t *testing.T) {
	t.Cleanup(faultsnap.Reset)
	faultsnap.Reset()
	withBackend(t, unwind.FP())

	RecordFault(chainThread(3))
	RecordFault(chainThread(11))

	snap, ok := LastFault()
	require.True(t, ok)
	require.Len(t, snap.Addrs, 11)
}

func TestRecordFaultTruncatesDeepStacks(t *testing.T) {
	t.Cleanup(faultsnap.Reset)
	faultsnap.Reset()
	withBackend(t, unwind.FP())

	n := RecordFault(chainThread(faultDepth + 100))
	require.Equal(t, faultDepth, n)

	snap, ok := LastFault()
	require.True(t, ok)
	require.Len(t, snap.Addrs, faultDepth)
}

func TestRecordFaultConcurrentWithReaders(t *testing.T) {
	t.Cleanup(faultsnap.Reset)
	faultsnap.Reset()
	withBackend(t, unwind.FP())

	threads := []*Thread{chainThread(4), chainThread(6)}
	var wg sync.WaitGroup
	stop := make(chan struct{})
	for _, th := range threads {
		wg.Add(1)
		go func(th *Thread) {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					RecordFault(th)
				}
			}
		}(th)
	}

	for i := 0; i < 2000; i++ {
		snap, ok := LastFault()
		if !ok {
			continue
		}
		// Readers never observe a mix of the two stacks.
		require.Contains(t, []int{4, 6}, len(snap.Addrs))
		require.Equal(t, chainCode, snap.Addrs[0])
	}
	close(stop)
	wg.Wait()
}

func TestPrintLastFault(t *testing.T) {
	t.Cleanup(faultsnap.Reset)
	faultsnap.Reset()
	withBackend(t, unwind.FP())
	tab := withTable(t)
	// Covers one byte below the chain's first pc: every line resolves
	// through the return-address adjustment.
	require.NoError(t, tab.Add(&symtab.Func{
		Name:  "crash_site",
		File:  "boom.sp",
		Lo:    chainCode - 0x10,
		Hi:    chainCode + 0x1000,
		Lines: []symtab.Line{{Off: 0, Line: 99}},
	}))

	var sink safeprint.Recording
	require.False(t, PrintLastFault(&sink))

	RecordFault(chainThread(2))
	require.True(t, PrintLastFault(&sink))
	require.Equal(t, []string{
		"crash_site at boom.sp:99",
		"crash_site at boom.sp:99",
	}, sink.Lines())
}
