//go:build (amd64 || arm64) && !windows

package unwind

// DefaultBackend returns the backend captures use on this build
// configuration.
func DefaultBackend() Backend { return CFI() }

// Supported reports whether this build configuration can unwind stacks.
func Supported() error { return nil }
