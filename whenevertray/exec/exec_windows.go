//go:build windows

package exec

import (
	"os/exec"
	"strconv"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// stillActive is the exit code GetExitCodeProcess reports for a running
// process (STILL_ACTIVE).
const stillActive = 259

var priorityClasses = [...]uint32{
	PriorityMinimum: windows.IDLE_PRIORITY_CLASS,
	PriorityLow:     windows.BELOW_NORMAL_PRIORITY_CLASS,
	PriorityNormal:  0,
}

func launchAttr(prio Priority) *syscall.SysProcAttr {
	flags := uint32(windows.CREATE_NEW_PROCESS_GROUP | windows.CREATE_NO_WINDOW)
	if int(prio) < len(priorityClasses) {
		flags |= priorityClasses[prio]
	}

	return &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: flags,
	}
}

func hiddenAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}

// setPriority is a no-op: the priority class is given at creation time.
func setPriority(pid int, prio Priority) error {
	return nil
}

func pidExists(pid int) bool {
	// os.FindProcess always succeeds on Windows, so ask the kernel directly.
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(h)

	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return false
	}

	return code == stillActive
}

func killGroup(pid int) error {
	// taskkill /T walks the child tree, which is the closest thing to a
	// process group kill.
	cmd := exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid))
	cmd.SysProcAttr = hiddenAttr()

	if err := cmd.Run(); err != nil {
		return errors.Wrap(err, "taskkill failed")
	}
	return nil
}
