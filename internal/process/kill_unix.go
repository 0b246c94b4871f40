//go:build !windows

package process

import "syscall"

// killTree signals the process group led by pid. The browser launcher
// starts Chrome as a group leader.
func killTree(pid int) error {
	return syscall.Kill(-pid, syscall.SIGKILL)
}
