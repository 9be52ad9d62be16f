package phantom

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"time"

	"github.com/iradul/vscode-phantomjs-debug/pkg/process"
)

const fakePid process.Pid_t = 4242

// fakeExecutor records process lifecycle requests without starting anything.
type fakeExecutor struct {
	lock        sync.Mutex
	startErr    error
	started     []*exec.Cmd
	ctx         context.Context
	handler     process.ProcessExitHandler
	interrupted []process.Pid_t
}

func (e *fakeExecutor) StartProcess(ctx context.Context, cmd *exec.Cmd, handler process.ProcessExitHandler) (process.Pid_t, time.Time, error) {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.startErr != nil {
		return process.UnknownPID, time.Time{}, e.startErr
	}
	e.started = append(e.started, cmd)
	e.ctx = ctx
	e.handler = handler
	return fakePid, time.Now(), nil
}

func (e *fakeExecutor) InterruptProcess(pid process.Pid_t) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.interrupted = append(e.interrupted, pid)
	return nil
}

func (e *fakeExecutor) StopProcess(pid process.Pid_t) error {
	return e.InterruptProcess(pid)
}

// exit simulates the process exiting.
func (e *fakeExecutor) exit(exitCode int32, err error) error {
	e.lock.Lock()
	handler := e.handler
	e.lock.Unlock()
	if handler == nil {
		return errors.New("no process was started")
	}
	handler.OnProcessExited(fakePid, exitCode, err)
	return nil
}

func (e *fakeExecutor) Started() []*exec.Cmd {
	e.lock.Lock()
	defer e.lock.Unlock()
	return append([]*exec.Cmd(nil), e.started...)
}

func (e *fakeExecutor) Interrupted() []process.Pid_t {
	e.lock.Lock()
	defer e.lock.Unlock()
	return append([]process.Pid_t(nil), e.interrupted...)
}

func (e *fakeExecutor) ProcessContext() context.Context {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.ctx
}

var _ process.Executor = (*fakeExecutor)(nil)
