//go:build linux

package cpu

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCore pins the current OS thread to a specific CPU core.
// Must be called after runtime.LockOSThread().
func pinToCore(coreID int) error {
	if coreID < 0 || coreID >= runtime.NumCPU() {
		return fmt.Errorf("core id %d out of range [0, %d)", coreID, runtime.NumCPU())
	}

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(coreID)

	return unix.SchedSetaffinity(0, &mask) // 0 = current thread
}

// SetupWorkerAffinity locks the calling goroutine to an OS thread and pins it
// to the given core. The returned cleanup must be deferred by the worker. A
// pinning failure still locks the thread; the worker runs unpinned and the
// error is reported to the caller.
func SetupWorkerAffinity(coreID int) (func(), error) {
	runtime.LockOSThread()
	err := pinToCore(coreID)
	return runtime.UnlockOSThread, err
}
