//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// Terminate force-kills the process tree rooted at pid with taskkill, then
// runs fallback. A pid of zero or less only runs fallback.
func Terminate(pid int, fallback func()) {
	if pid > 0 {
		// /T walks child processes, /F skips the graceful close request
		_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
	}
	if fallback != nil {
		fallback()
	}
}
