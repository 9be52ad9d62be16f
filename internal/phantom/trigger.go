/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package phantom

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/iradul/vscode-phantomjs-debug/internal/bridge"
	"github.com/iradul/vscode-phantomjs-debug/pkg/concurrency"
)

const (
	// RunExpression releases PhantomJS from its initial halt; the initial script runs inside __run().
	RunExpression = "__run()"

	// DefaultTriggerDelay is how long to wait after the initial script is parsed before running it.
	// PhantomJS does not acknowledge breakpoints in a way that could be waited for,
	// so the delay gives breakpoint requests for the initial script time to land.
	DefaultTriggerDelay = time.Second
)

type TriggerState uint8

const (
	TriggerIdle TriggerState = iota
	TriggerScheduled
	TriggerFired
	TriggerCancelled
)

func (s TriggerState) String() string {
	switch s {
	case TriggerIdle:
		return "idle"
	case TriggerScheduled:
		return "scheduled"
	case TriggerFired:
		return "fired"
	case TriggerCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("TriggerState(%d)", uint8(s))
	}
}

// TriggerController runs the initial script exactly once per session,
// a fixed delay after PhantomJS reports the script as parsed.
// All methods except Done() must be called on the bridge event loop.
type TriggerController struct {
	initialURL string
	delay      time.Duration
	log        logr.Logger

	state TriggerState
	stop  func() bool

	// Taken when the trigger is scheduled (or cancelled before that), completed once the run call has returned.
	job *concurrency.OneTimeJob
}

func NewTriggerController(initialURL string, delay time.Duration, log logr.Logger) *TriggerController {
	if delay <= 0 {
		delay = DefaultTriggerDelay
	}
	return &TriggerController{
		initialURL: initialURL,
		delay:      delay,
		log:        log.WithName("trigger"),
		job:        concurrency.NewOneTimeJob(),
	}
}

// OnScriptParsed schedules the run call if the parsed script is the initial script.
// Returns true if the call was scheduled by this invocation.
func (tc *TriggerController) OnScriptParsed(s bridge.Session, url string) bool {
	if url != tc.initialURL {
		return false
	}
	if !tc.job.TryTake() {
		tc.log.V(1).Info("Initial script reported again, ignoring", "URL", url, "State", tc.state.String())
		return false
	}

	tc.state = TriggerScheduled
	tc.stop = s.AfterFunc(tc.delay, func() {
		tc.fire(s)
	})
	tc.log.V(1).Info("Scheduled initial script run", "Delay", tc.delay)
	return true
}

func (tc *TriggerController) fire(s bridge.Session) {
	if tc.state != TriggerScheduled {
		return
	}
	tc.state = TriggerFired
	tc.log.V(1).Info("Running initial script")

	resultCh := s.Evaluate(RunExpression)
	go func() {
		res := <-resultCh
		if res.Err != nil {
			tc.log.Error(res.Err, "Could not start the initial script")
		}
		tc.job.Complete()
	}()
}

// Cancel prevents the run call from happening, if it has not happened yet.
func (tc *TriggerController) Cancel() {
	switch tc.state {
	case TriggerIdle:
		tc.job.TryTake()
		tc.state = TriggerCancelled
	case TriggerScheduled:
		if tc.stop != nil {
			tc.stop()
		}
		tc.state = TriggerCancelled
	}
}

func (tc *TriggerController) State() TriggerState {
	return tc.state
}

// Done returns a channel that is closed when the run call has completed.
func (tc *TriggerController) Done() <-chan struct{} {
	return tc.job.Done()
}
