//go:build !linux && !darwin && !windows

package cpu

import "runtime"

// SetupWorkerAffinity locks the goroutine to an OS thread.
// CPU pinning is not implemented for this platform; the error is advisory.
func SetupWorkerAffinity(coreID int) (func(), error) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread, ErrUnsupported
}
