package symtab

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoaderCachesPerPath(t *testing.T) {
	l := NewLoader()
	var loads atomic.Int32
	l.load = func(path string, bias uintptr, native bool) (*DWARFData, error) {
		loads.Add(1)
		return &DWARFData{bias: bias, native: native}, nil
	}

	var wg sync.WaitGroup
	results := make([]*DWARFData, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := l.Load("/opt/spindle/libdemo.so", 0x1000, false)
			require.NoError(t, err)
			results[i] = d
		}(i)
	}
	wg.Wait()

	for _, d := range results {
		require.Same(t, results[0], d)
	}
	// The flight caches before releasing its key, so a second read can
	// never happen.
	require.Equal(t, int32(1), loads.Load())

	d, err := l.Load("/opt/spindle/libdemo.so", 0x1000, false)
	require.NoError(t, err)
	require.Same(t, results[0], d)
}

func TestLoaderDoesNotCacheFailures(t *testing.T) {
	l := NewLoader()
	var loads int
	l.load = func(path string, bias uintptr, native bool) (*DWARFData, error) {
		loads++
		if loads == 1 {
			return nil, fmt.Errorf("short read")
		}
		return &DWARFData{}, nil
	}

	_, err := l.Load("/tmp/broken.so", 0, false)
	require.Error(t, err)

	d, err := l.Load("/tmp/broken.so", 0, false)
	require.NoError(t, err)
	require.NotNil(t, d)
	require.Equal(t, 2, loads)
}

func TestLoaderEvict(t *testing.T) {
	l := NewLoader()
	var loads int
	l.load = func(path string, bias uintptr, native bool) (*DWARFData, error) {
		loads++
		return &DWARFData{}, nil
	}

	first, err := l.Load("/tmp/lib.so", 0, true)
	require.NoError(t, err)
	l.Evict("/tmp/lib.so")
	second, err := l.Load("/tmp/lib.so", 0, true)
	require.NoError(t, err)
	require.NotSame(t, first, second)
	require.Equal(t, 2, loads)
}

func TestLoadELFMissingFile(t *testing.T) {
	_, err := LoadELF("/nonexistent/image.so", 0, false)
	require.ErrorContains(t, err, "failed to open image")
}
