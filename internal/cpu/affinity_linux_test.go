//go:build linux

package cpu

import (
	"errors"
	"runtime"
	"testing"
)

func TestPinCurrentThread(t *testing.T) {
	done := make(chan struct{})

	go func() {
		defer close(done)
		runtime.LockOSThread()
		// Not unlocked: the thread's affinity was changed, so let it die
		// with the goroutine.

		before, err := CurrentCores()
		if err != nil {
			t.Errorf("CurrentCores: %v", err)
			return
		}
		if len(before) == 0 {
			t.Error("expected at least one allowed core")
			return
		}

		target := before[len(before)-1]
		if err := PinCurrentThread(target); err != nil {
			t.Errorf("PinCurrentThread(%d): %v", target, err)
			return
		}

		after, err := CurrentCores()
		if err != nil {
			t.Errorf("CurrentCores: %v", err)
			return
		}
		if len(after) != 1 || after[0] != target {
			t.Errorf("affinity after pin = %v, want [%d]", after, target)
		}
	}()

	<-done
}

func TestPinCurrentThread_InvalidCore(t *testing.T) {
	done := make(chan struct{})

	go func() {
		defer close(done)
		runtime.LockOSThread()

		// A core far beyond any real machine yields an empty usable set.
		err := PinCurrentThread(1000)
		if err == nil {
			t.Error("expected error pinning to a non-existent core")
			return
		}
		if !errors.Is(err, ErrAffinity) {
			t.Errorf("expected ErrAffinity, got %v", err)
		}
	}()

	<-done
}
