//go:build !windows

package process

import "syscall"

// KillTree kills pid and its children by sending SIGKILL to its process
// group. Non-positive pids are ignored: -0 would target our own group.
func KillTree(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort; the group is usually gone once the browser closed cleanly.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
