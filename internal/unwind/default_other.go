//go:build !amd64 && !arm64

package unwind

import (
	"fmt"
	"runtime"
)

// DefaultBackend returns the backend captures use on this build
// configuration.
func DefaultBackend() Backend { return Disabled() }

// Supported reports whether this build configuration can unwind stacks.
func Supported() error {
	return fmt.Errorf("stack unwinding is not supported on %s/%s", runtime.GOOS, runtime.GOARCH)
}
