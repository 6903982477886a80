//go:build linux

package procmem

import (
	"sync"

	"github.com/prometheus/procfs"
)

// pageMap caches the readable mappings of the process. A miss triggers a
// reload, since the JIT maps new regions over time.
var pageMap struct {
	mu      sync.Mutex
	regions []Region
	loaded  bool
}

func mappedReadable(addr, n uintptr) bool {
	pageMap.mu.Lock()
	defer pageMap.mu.Unlock()
	if pageMap.loaded && coveredLocked(addr, n) {
		return true
	}
	if err := reloadLocked(); err != nil {
		return false
	}
	return coveredLocked(addr, n)
}

func coveredLocked(addr, n uintptr) bool {
	for _, r := range pageMap.regions {
		if addr >= r.Lo && addr+n <= r.Hi {
			return true
		}
	}
	return false
}

func reloadLocked() error {
	p, err := procfs.Self()
	if err != nil {
		return err
	}
	maps, err := p.ProcMaps()
	if err != nil {
		return err
	}
	regions := make([]Region, 0, len(maps))
	for _, m := range maps {
		if m.Perms == nil || !m.Perms.Read {
			continue
		}
		regions = append(regions, Region{Lo: m.StartAddr, Hi: m.EndAddr})
	}
	pageMap.regions = regions
	pageMap.loaded = true
	return nil
}
