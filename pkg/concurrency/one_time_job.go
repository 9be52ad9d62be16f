/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package concurrency

import (
	"sync"
)

type oneTimeJobState uint8

const (
	oneTimeJobStateInitial oneTimeJobState = iota
	oneTimeJobStateTaken
	oneTimeJobStateDone
)

// OneTimeJob guards an activity that may happen at most once.
// The job moves strictly forward: initial -> taken -> done. A job can be taken
// and never completed (e.g. when the activity is called off).
type OneTimeJob struct {
	lock  sync.Mutex
	done  chan struct{}
	state oneTimeJobState
}

func NewOneTimeJob() *OneTimeJob {
	return &OneTimeJob{done: make(chan struct{})}
}

// TryTake returns true for the first caller only. That caller owns the job.
func (otj *OneTimeJob) TryTake() bool {
	otj.lock.Lock()
	defer otj.lock.Unlock()

	if otj.state != oneTimeJobStateInitial {
		return false
	}
	otj.state = oneTimeJobStateTaken
	return true
}

// Complete marks a taken job as done. Returns false if the job was never taken or is done already.
func (otj *OneTimeJob) Complete() bool {
	otj.lock.Lock()
	defer otj.lock.Unlock()

	if otj.state != oneTimeJobStateTaken {
		return false
	}
	otj.state = oneTimeJobStateDone
	close(otj.done)
	return true
}

// Done is closed when the job completes.
func (otj *OneTimeJob) Done() <-chan struct{} {
	return otj.done
}
