//go:build unix

package exec

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// niceness maps each priority tier to a Unix nice value.
var niceness = [...]int{
	PriorityMinimum: 19,
	PriorityLow:     10,
	PriorityNormal:  0,
}

func launchAttr(prio Priority) *syscall.SysProcAttr {
	// Make the child a process group leader so that it and everything it
	// spawns can be killed together.
	return &syscall.SysProcAttr{Setpgid: true}
}

func hiddenAttr() *syscall.SysProcAttr {
	return nil
}

func setPriority(pid int, prio Priority) error {
	if int(prio) >= len(niceness) || niceness[prio] == 0 {
		return nil
	}
	return unix.Setpriority(unix.PRIO_PROCESS, pid, niceness[prio])
}

func pidExists(pid int) bool {
	// Signal 0 only performs the existence and permission checks. EPERM means
	// the process exists but belongs to someone else.
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}

func killGroup(pid int) error {
	if err := unix.Kill(-pid, unix.SIGKILL); err != nil {
		if err != unix.ESRCH {
			return err
		}
		// The group is gone, but the leader might not have been one.
		return unix.Kill(pid, unix.SIGKILL)
	}
	return nil
}
