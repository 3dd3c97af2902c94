//go:build windows

package cpu

import (
	"fmt"

	"golang.org/x/sys/windows"
)

var (
	kernel32              = windows.NewLazySystemDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
)

// PinCurrentThread restricts the current OS thread to cpuID.
// Only the first processor group (64 cores) is addressable.
func PinCurrentThread(cpuID int) error {
	if cpuID < 0 || cpuID >= 64 {
		return fmt.Errorf("%w: core %d outside the first processor group", ErrAffinity, cpuID)
	}

	mask := uintptr(1) << uint(cpuID)
	prev, _, err := setThreadAffinityMask.Call(uintptr(windows.CurrentThread()), mask)
	if prev == 0 {
		return fmt.Errorf("%w: pin thread to core %d: %w", ErrAffinity, cpuID, err)
	}
	return nil
}

// CurrentCores is not implemented on Windows.
func CurrentCores() ([]int, error) {
	return nil, fmt.Errorf("%w: reading thread affinity is not supported on windows", ErrAffinity)
}
