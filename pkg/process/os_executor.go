package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/tklauser/ps"
)

// How long to wait for a process to exit after it was interrupted, before killing it.
const interruptGracePeriod = 5 * time.Second

type runningProcess struct {
	cmd    *exec.Cmd
	exited chan struct{}
}

type OSExecutor struct {
	procs map[Pid_t]*runningProcess
	lock  *sync.Mutex
	log   logr.Logger
}

func NewOSExecutor(log logr.Logger) *OSExecutor {
	return &OSExecutor{
		procs: make(map[Pid_t]*runningProcess),
		lock:  &sync.Mutex{},
		log:   log.WithName("os-executor"),
	}
}

// StartProcess starts the command in its own process group (unless the caller already set SysProcAttr)
// and watches it until it exits.
func (e *OSExecutor) StartProcess(ctx context.Context, cmd *exec.Cmd, handler ProcessExitHandler) (Pid_t, time.Time, error) {
	if cmd.SysProcAttr == nil {
		DecoupleFromParent(cmd)
	}
	if err := cmd.Start(); err != nil {
		return UnknownPID, time.Time{}, err
	}
	processStartTime := time.Now()

	osPid := cmd.Process.Pid
	pid, err := IntToPidT(osPid)
	if err != nil {
		_ = cmd.Process.Kill()
		return UnknownPID, time.Time{}, err
	}

	psProcess, psProcessErr := ps.FindProcess(osPid)
	if psProcessErr != nil {
		e.log.V(1).Info("could not find process startup time", "PID", osPid, "Error", psProcessErr.Error())
	} else if psProcess != nil {
		// This is what the OS process startup timestamp is, so it is the most accurate value we can get.
		processStartTime = psProcess.CreationTime()
	}

	rp := &runningProcess{cmd: cmd, exited: make(chan struct{})}
	e.lock.Lock()
	e.procs[pid] = rp
	e.lock.Unlock()

	go func() {
		waitErr := cmd.Wait()
		close(rp.exited)

		e.lock.Lock()
		delete(e.procs, pid)
		e.lock.Unlock()

		if handler != nil {
			exitCode, execErr := getProcessExecResult(waitErr, cmd)
			handler.OnProcessExited(pid, exitCode, execErr)
		}
	}()

	go func() {
		select {
		case <-rp.exited:
		case <-ctx.Done():
			if stopErr := e.StopProcess(pid); stopErr != nil {
				e.log.Error(stopErr, "could not stop process after its context ended", "PID", pid)
			}
		}
	}()

	return pid, processStartTime, nil
}

func (e *OSExecutor) InterruptProcess(pid Pid_t) error {
	rp, found := e.find(pid)
	if !found {
		return nil
	}

	err := interruptProcess(rp.cmd.Process)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func (e *OSExecutor) StopProcess(pid Pid_t) error {
	rp, found := e.find(pid)
	if !found {
		return nil
	}

	if err := e.InterruptProcess(pid); err != nil {
		e.log.V(1).Info("could not interrupt process, killing it", "PID", pid, "Error", err.Error())
	} else {
		select {
		case <-rp.exited:
			return nil
		case <-time.After(interruptGracePeriod):
			e.log.V(1).Info("process did not exit after interruption, killing it", "PID", pid)
		}
	}

	if err := rp.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("could not kill process %d: %w", pid, err)
	}
	<-rp.exited
	return nil
}

func (e *OSExecutor) find(pid Pid_t) (*runningProcess, bool) {
	e.lock.Lock()
	defer e.lock.Unlock()
	rp, found := e.procs[pid]
	return rp, found
}

// Returns the process execution error and process exit code depending on the result of command wait call.
func getProcessExecResult(waitErr error, cmd *exec.Cmd) (int32, error) {
	var ee *exec.ExitError
	if waitErr == nil {
		return int32(cmd.ProcessState.ExitCode()), nil
	} else if errors.As(waitErr, &ee) {
		return int32(ee.ExitCode()), nil
	} else {
		return UnknownExitCode, waitErr
	}
}

var _ Executor = (*OSExecutor)(nil)
