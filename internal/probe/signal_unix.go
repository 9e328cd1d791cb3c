//go:build unix

package probe

import "golang.org/x/sys/unix"

func signalAlive(pid int) error {
	return unix.Kill(pid, 0)
}

func signalKill(pid int) error {
	return unix.Kill(pid, unix.SIGKILL)
}
