package process

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"time"
)

type Pid_t int32

const (
	// A valid exit code of a process is a non-negative number. We use UnknownExitCode to indicate that we have not obtained the exit code yet.
	UnknownExitCode int32 = -1

	// Unknown PID code is used when the process is not started (or fails to start)
	UnknownPID Pid_t = -1
)

type Executor interface {
	// Starts the process described by given command instance.
	// When the passed context is cancelled, the process is automatically stopped.
	// The exit handler (if any) is called exactly once, when the process exits.
	StartProcess(ctx context.Context, cmd *exec.Cmd, exitHandler ProcessExitHandler) (pid Pid_t, startTime time.Time, err error)

	// Asks the process with given PID to exit gracefully (SIGINT where supported).
	InterruptProcess(pid Pid_t) error

	// Stops the process with a given PID, forcefully if it does not respond to interruption.
	StopProcess(pid Pid_t) error
}

type ProcessExitHandler interface {
	// Indicates that process with a given PID has finished execution
	// If err is nil, the process exit code was properly captured and the exitCode value is valid
	// if err is not nil, there was a problem tracking the process and the exitCode value is not valid
	OnProcessExited(pid Pid_t, exitCode int32, err error)
}

// Make it easy to supply a function as a process exit handler.
type ProcessExitHandlerFunc func(Pid_t, int32, error)

func (f ProcessExitHandlerFunc) OnProcessExited(pid Pid_t, exitCode int32, err error) {
	f(pid, exitCode, err)
}

func IntToPidT(pid int) (Pid_t, error) {
	if pid < 0 || pid > math.MaxInt32 {
		return UnknownPID, fmt.Errorf("process ID %d is out of range", pid)
	}
	return Pid_t(pid), nil
}
