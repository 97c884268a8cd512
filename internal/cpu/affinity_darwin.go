//go:build darwin

package cpu

import "runtime"

// SetupWorkerAffinity locks the goroutine to an OS thread.
// CPU pinning is not available on macOS; the error is advisory.
func SetupWorkerAffinity(coreID int) (func(), error) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread, ErrUnsupported
}
