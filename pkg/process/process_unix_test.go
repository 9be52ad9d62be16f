//go:build !windows

package process

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iradul/vscode-phantomjs-debug/pkg/testutil"
)

type exitInfo struct {
	PID      Pid_t
	ExitCode int32
	Err      error
}

// exitTo returns an exit handler that sends the process exit status to c. c needs a buffer of at least one.
func exitTo(c chan<- exitInfo) ProcessExitHandler {
	return ProcessExitHandlerFunc(func(pid Pid_t, exitCode int32, err error) {
		c <- exitInfo{PID: pid, ExitCode: exitCode, Err: err}
	})
}

func TestStartProcessReportsExitCode(t *testing.T) {
	t.Parallel()

	ctx, cancel := testutil.GetTestContext(t, 10*time.Second)
	defer cancel()

	executor := NewOSExecutor(testutil.NewLogForTesting(t.Name()))
	exitCh := make(chan exitInfo, 1)

	pid, startTime, err := executor.StartProcess(ctx, exec.Command("sh", "-c", "exit 12"), exitTo(exitCh))
	require.NoError(t, err)
	require.NotEqual(t, UnknownPID, pid)
	require.False(t, startTime.IsZero())

	select {
	case <-ctx.Done():
		t.Fatal("test timed out")
	case ei := <-exitCh:
		require.NoError(t, ei.Err)
		require.Equal(t, pid, ei.PID)
		require.Equal(t, int32(12), ei.ExitCode)
	}
}

func TestInterruptProcess(t *testing.T) {
	t.Parallel()

	ctx, cancel := testutil.GetTestContext(t, 10*time.Second)
	defer cancel()

	executor := NewOSExecutor(testutil.NewLogForTesting(t.Name()))
	exitCh := make(chan exitInfo, 1)

	pid, _, err := executor.StartProcess(ctx, exec.Command("sleep", "30"), exitTo(exitCh))
	require.NoError(t, err)

	require.NoError(t, executor.InterruptProcess(pid))

	select {
	case <-ctx.Done():
		t.Fatal("process was not interrupted")
	case ei := <-exitCh:
		require.NoError(t, ei.Err)
		require.Equal(t, pid, ei.PID)
	}

	// Interrupting a process that is gone is not an error.
	require.NoError(t, executor.InterruptProcess(pid))
}

func TestProcessStoppedWhenContextEnds(t *testing.T) {
	t.Parallel()

	executor := NewOSExecutor(testutil.NewLogForTesting(t.Name()))
	exitCh := make(chan exitInfo, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, _, err := executor.StartProcess(ctx, exec.Command("sleep", "30"), exitTo(exitCh))
	require.NoError(t, err)

	select {
	case <-time.After(5 * time.Second):
		t.Fatal("process was not stopped when its context ended")
	case <-exitCh:
		require.Less(t, time.Since(start), 5*time.Second)
	}
}

func TestWaitableProcessWait(t *testing.T) {
	t.Parallel()

	ctx, cancel := testutil.GetTestContext(t, 10*time.Second)
	defer cancel()

	cmd := exec.Command("sleep", "0.2")
	require.NoError(t, cmd.Start())
	pid, pidErr := IntToPidT(cmd.Process.Pid)
	require.NoError(t, pidErr)

	wp, findErr := FindWaitableProcess(pid)
	require.NoError(t, findErr)
	wp.WaitPollInterval = 50 * time.Millisecond
	require.NoError(t, wp.Wait(ctx))

	_, findErr = FindProcess(pid)
	require.ErrorIs(t, findErr, ErrProcessNotFound)
}

func TestStringToPidT(t *testing.T) {
	t.Parallel()

	pid, err := StringToPidT("4242")
	require.NoError(t, err)
	require.Equal(t, Pid_t(4242), pid)

	_, err = StringToPidT("-1")
	require.Error(t, err)
	_, err = StringToPidT("abc")
	require.Error(t, err)
}
