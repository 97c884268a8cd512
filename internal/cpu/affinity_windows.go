//go:build windows

package cpu

import (
	"fmt"
	"runtime"
	"syscall"
)

var (
	kernel32              = syscall.NewLazyDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
	getCurrentThread      = kernel32.NewProc("GetCurrentThread")
)

// pinToCore pins the current OS thread to a specific CPU core.
// Must be called after runtime.LockOSThread().
func pinToCore(coreID int) error {
	if coreID < 0 || coreID >= runtime.NumCPU() || coreID >= 64 {
		return fmt.Errorf("core id %d out of range", coreID)
	}

	handle, _, _ := getCurrentThread.Call()

	// Bit N = CPU N, so for CPU 0 it's 1, for CPU 1 it's 2, etc.
	mask := uintptr(1 << coreID)

	prevMask, _, err := setThreadAffinityMask.Call(handle, mask)
	if prevMask == 0 {
		return err
	}
	return nil
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
