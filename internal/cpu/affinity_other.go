//go:build !linux && !windows

package cpu

import (
	"fmt"
	"runtime"
)

// PinCurrentThread always fails: this platform has no thread affinity API.
// macOS only offers affinity tags, which are hints rather than pinning.
func PinCurrentThread(cpuID int) error {
	return fmt.Errorf("%w: pinning to core %d is not supported on %s", ErrAffinity, cpuID, runtime.GOOS)
}

// CurrentCores always fails on this platform.
func CurrentCores() ([]int, error) {
	return nil, fmt.Errorf("%w: not supported on %s", ErrAffinity, runtime.GOOS)
}
