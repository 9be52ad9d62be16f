//go:build !windows

package process

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// DecoupleFromParent puts the process in its own process group,
// so a terminal interrupt aimed at the adapter does not reach it directly.
func DecoupleFromParent(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// Returns the running process with given PID, or ErrProcessNotFound.
func FindProcess(pid Pid_t) (*os.Process, error) {
	if pid <= 0 {
		return nil, fmt.Errorf("invalid process ID %d: %w", pid, ErrProcessNotFound)
	}

	process, err := os.FindProcess(int(pid))
	if err != nil {
		return nil, err
	}

	// On Unix FindProcess always succeeds; signal 0 checks that the process actually exists.
	if err = process.Signal(syscall.Signal(0)); err != nil {
		return nil, fmt.Errorf("process with pid %d: %w", pid, ErrProcessNotFound)
	}

	return process, nil
}
