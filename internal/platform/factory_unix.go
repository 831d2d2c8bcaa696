//go:build !windows

package platform

// New returns the platform adapter for the current OS.
func New() Platform { return NewUnix() }
