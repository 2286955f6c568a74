package id

import (
	"sync"
)

// DefaultMachineID is used when configuration does not name one.
const DefaultMachineID = 1

// Bootstrap builds the process generator. It is meant to be called once at
// startup and the result passed to everything that allocates ids.
func Bootstrap(machineID *int64) (*Generator, error) {
	if machineID == nil {
		return New(DefaultMachineID)
	}
	return New(*machineID)
}

var (
	fallbackOnce sync.Once
	fallback     *Generator
)

// Fallback returns a lazily built generator with DefaultMachineID for code
// that runs before Bootstrap has produced the real one. It is the same
// instance on every call so monotonicity holds among its callers.
func Fallback() *Generator {
	fallbackOnce.Do(func() {
		fallback, _ = New(DefaultMachineID)
	})
	return fallback
}

// OrFallback returns src, or Fallback() when src is nil.
func OrFallback(src Source) Source {
	if src == nil {
		return Fallback()
	}
	return src
}
