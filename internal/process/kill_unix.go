//go:build !windows

package process

import "syscall"

// Terminate sends SIGKILL to the process group led by pid, taking Chrome's
// renderer and GPU helpers down with it, then runs fallback. A pid of zero
// or less only runs fallback; -0 would address our own group.
func Terminate(pid int, fallback func()) {
	if pid > 0 {
		_ = syscall.Kill(-pid, syscall.SIGKILL)
	}
	if fallback != nil {
		fallback()
	}
}
