/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package process

import (
	"context"
	"errors"
	"os"
	"sync"
	"syscall"
	"time"
)

const (
	defaultWaitPollInterval = time.Second * 2
)

// WaitableProcess allows waiting for a process that is not a child of the current process.
type WaitableProcess struct {
	WaitPollInterval time.Duration
	pid              Pid_t
	process          *os.Process
	err              error
	waitChan         chan struct{}
	waitLock         sync.Mutex
}

func FindWaitableProcess(pid Pid_t) (*WaitableProcess, error) {
	foundProcess, err := FindProcess(pid)
	if err != nil {
		return nil, err
	}

	return &WaitableProcess{
		WaitPollInterval: defaultWaitPollInterval,
		pid:              pid,
		process:          foundProcess,
	}, nil
}

func (p *WaitableProcess) pollingWait(ctx context.Context) {
	// Only setup a single wait loop per-process instance
	p.waitLock.Lock()
	defer p.waitLock.Unlock()

	if p.waitChan != nil {
		return
	}

	p.waitChan = make(chan struct{})
	go func() {
		defer close(p.waitChan)

		_, err := p.process.Wait()
		if err == nil {
			return
		}

		var syscallErr syscall.Errno
		if !errors.As(err, &syscallErr) || syscallErr != syscall.ECHILD {
			p.err = err
			return
		}

		// Not our child, so the only option is to poll.
		timer := time.NewTimer(p.WaitPollInterval)
		defer timer.Stop()

		for {
			select {
			case <-timer.C:
				if _, pollErr := FindProcess(p.pid); pollErr != nil {
					return
				}
				timer.Reset(p.WaitPollInterval)

			case <-ctx.Done():
				p.err = ctx.Err()
				return
			}
		}
	}()
}

// Wait returns nil when the process has exited.
func (p *WaitableProcess) Wait(ctx context.Context) error {
	p.pollingWait(ctx)

	select {
	case <-p.waitChan:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
