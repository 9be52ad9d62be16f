package commands

import (
	"context"
	"errors"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/iradul/vscode-phantomjs-debug/pkg/process"
)

type monitorOptions struct {
	pid             int64
	intervalSeconds uint8
}

func addMonitorFlags(cmd *cobra.Command, opts *monitorOptions) {
	cmd.Flags().Int64VarP(&opts.pid, "monitor", "m", int64(process.UnknownPID), "If present, tells the adapter to monitor a given process ID (PID), usually the editor, and shut down if the monitored process exits for any reason.")
	cmd.Flags().Uint8VarP(&opts.intervalSeconds, "monitor-interval", "i", 0, "If present, specifies the time in seconds between checks for the monitor PID.")
}

// MonitorPid returns a context that is cancelled when the process with given PID exits.
func MonitorPid(ctx context.Context, pid int64, pollInterval uint8, log logr.Logger) (context.Context, error) {
	monitorPid, err := process.Int64ToPidT(pid)
	if err != nil {
		return ctx, err
	}

	monitorProc, err := process.FindWaitableProcess(monitorPid)
	if err != nil {
		return ctx, err
	}
	if pollInterval > 0 {
		monitorProc.WaitPollInterval = time.Second * time.Duration(pollInterval)
	}

	monitorCtx, monitorCtxCancel := context.WithCancel(ctx)
	go func() {
		defer monitorCtxCancel()
		if waitErr := monitorProc.Wait(monitorCtx); waitErr != nil {
			if errors.Is(waitErr, context.Canceled) {
				log.V(1).Info("Monitoring cancelled by context", "PID", monitorPid)
			} else {
				log.Error(waitErr, "Error waiting for process", "PID", monitorPid)
			}
		} else {
			log.Info("Monitored process exited, shutting down", "PID", monitorPid)
		}
	}()

	return monitorCtx, nil
}

func monitor(ctx context.Context, opts *monitorOptions, log logr.Logger) (context.Context, error) {
	if opts.pid == int64(process.UnknownPID) {
		return ctx, nil
	}
	return MonitorPid(ctx, opts.pid, opts.intervalSeconds, log)
}
