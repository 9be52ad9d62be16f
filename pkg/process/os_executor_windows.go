//go:build windows

package process

import (
	"os"

	"golang.org/x/sys/windows"
)

// Sends CTRL_BREAK to the process group started by DecoupleFromParent.
// Falls back to killing the process if the event cannot be delivered.
func interruptProcess(proc *os.Process) error {
	if err := windows.GenerateConsoleCtrlEvent(windows.CTRL_BREAK_EVENT, uint32(proc.Pid)); err == nil {
		return nil
	}
	return proc.Kill()
}
