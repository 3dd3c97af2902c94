// Package cpu binds the calling OS thread to a single CPU core.
//
// Every function that changes affinity operates on the current OS thread, so
// the calling goroutine must already hold runtime.LockOSThread.
package cpu

import (
	"errors"
	"runtime"
)

// ErrAffinity is returned when the current thread could not be pinned.
var ErrAffinity = errors.New("cpu affinity")

// NumCPU returns the number of logical CPUs usable by the process.
func NumCPU() int {
	return runtime.NumCPU()
}

// CoreFor maps a worker index onto a core, wrapping around the number of
// logical CPUs.
func CoreFor(workerID int) int {
	n := NumCPU()
	if n <= 0 {
		return 0
	}
	core := workerID % n
	if core < 0 {
		core += n
	}
	return core
}
