//go:build windows

package process

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// DecoupleFromParent starts the process in a new process group.
// That makes it addressable by CTRL_BREAK_EVENT without affecting the adapter.
func DecoupleFromParent(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: windows.CREATE_NEW_PROCESS_GROUP}
}

// Returns the running process with given PID, or ErrProcessNotFound.
func FindProcess(pid Pid_t) (*os.Process, error) {
	if pid <= 0 {
		return nil, fmt.Errorf("invalid process ID %d: %w", pid, ErrProcessNotFound)
	}

	process, err := os.FindProcess(int(pid))
	if err != nil {
		return nil, fmt.Errorf("process with pid %d: %w", pid, ErrProcessNotFound)
	}

	return process, nil
}
