package symtab

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Loader caches DWARF providers per image path and collapses concurrent
// loads of the same image into one parse.
type Loader struct {
	log  *logrus.Entry
	sf   singleflight.Group
	load func(path string, bias uintptr, native bool) (*DWARFData, error)

	mu struct {
		sync.Mutex
		cache map[string]*DWARFData
	}
}

// NewLoader returns an empty loader.
func NewLoader() *Loader {
	l := &Loader{
		log:  logrus.WithField("component", "symtab"),
		load: LoadELF,
	}
	l.mu.cache = make(map[string]*DWARFData)
	return l
}

// Load returns the provider for the image at path, reading its debug
// information on first use. Failures are not cached; a later call
// retries the read.
func (l *Loader) Load(path string, bias uintptr, native bool) (*DWARFData, error) {
	l.mu.Lock()
	d, ok := l.mu.cache[path]
	l.mu.Unlock()
	if ok {
		return d, nil
	}

	v, err, _ := l.sf.Do(path, func() (interface{}, error) {
		l.mu.Lock()
		d, ok := l.mu.cache[path]
		l.mu.Unlock()
		if ok {
			return d, nil
		}
		start := time.Now()
		d, err := l.load(path, bias, native)
		if err != nil {
			l.log.WithError(err).WithField("path", path).Warn("failed to load debug info")
			return nil, err
		}
		l.mu.Lock()
		l.mu.cache[path] = d
		l.mu.Unlock()
		l.log.WithFields(logrus.Fields{
			"path":     path,
			"duration": time.Since(start),
		}).Debug("loaded debug info")
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*DWARFData), nil
}

// Evict drops the cached provider for path, typically after the image is
// unloaded.
func (l *Loader) Evict(path string) {
	l.mu.Lock()
	delete(l.mu.cache, path)
	l.mu.Unlock()
}
