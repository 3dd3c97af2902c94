//go:build linux

package cpu

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// PinCurrentThread restricts the current OS thread to cpuID.
func PinCurrentThread(cpuID int) error {
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpuID)

	// 0 selects the calling thread.
	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		return fmt.Errorf("%w: pin thread to core %d: %w", ErrAffinity, cpuID, err)
	}
	return nil
}

// CurrentCores returns the cores the current OS thread may run on.
func CurrentCores() ([]int, error) {
	var mask unix.CPUSet
	if err := unix.SchedGetaffinity(0, &mask); err != nil {
		return nil, fmt.Errorf("%w: read affinity: %w", ErrAffinity, err)
	}

	n := mask.Count()
	cores := make([]int, 0, n)
	for i := 0; len(cores) < n; i++ {
		if mask.IsSet(i) {
			cores = append(cores, i)
		}
	}
	return cores, nil
}
