/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/go-dap"
	"github.com/smallnest/chanx"

	"github.com/iradul/vscode-phantomjs-debug/internal/cdp"
	dapconn "github.com/iradul/vscode-phantomjs-debug/internal/dap"
)

const (
	DefaultCallTimeout  = 10 * time.Second
	defaultThreadName   = "main"
	threadID            = 1
	taskQueueCapacity   = 16
	evaluateObjectGroup = "console"
)

type Config struct {
	// Runtime-specific behavior. Defaults to NopHooks.
	Hooks Hooks

	// Establishes the target connection. Defaults to DialTarget.
	Dialer Dialer

	// Name of the single thread reported to the client.
	ThreadName string

	// Maximum time to wait for a reply to a target method call.
	CallTimeout time.Duration

	Logger logr.Logger
}

// Bridge translates between a DAP client and a target debugger that speaks the Chrome DevTools Protocol.
// Requests, target notifications, and deferred work are all processed on a single event loop goroutine,
// so session state needs no locking.
type Bridge struct {
	client      *dapconn.ClientConn
	hooks       Hooks
	dialer      Dialer
	threadName  string
	callTimeout time.Duration
	log         logr.Logger

	tasks       *chanx.UnboundedChan[func()]
	lifetimeCtx context.Context
	cancel      context.CancelFunc

	// Everything below is owned by the event loop.

	target       TargetConn
	targetEvents <-chan cdp.Event
	subscribers  map[string][]func(json.RawMessage)

	scripts     *scriptTable
	breakpoints *breakpointTable

	pauseOnExceptions string
	paused            *cdp.PausedEvent
	frames            *handles[*cdp.CallFrame]
	objects           *handles[string]

	// Stop reason to report for the next pause, set when the client asks for a step or a pause.
	expectedStopReason string
	resumeRequested    bool

	launched   bool
	terminated bool
	finished   bool
	closed     bool
}

var _ Session = (*Bridge)(nil)

func New(client *dapconn.ClientConn, config Config) *Bridge {
	log := config.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	hooks := config.Hooks
	if hooks == nil {
		hooks = NopHooks{}
	}
	dialer := config.Dialer
	if dialer == nil {
		dialer = DialTarget
	}
	threadName := config.ThreadName
	if threadName == "" {
		threadName = defaultThreadName
	}
	callTimeout := config.CallTimeout
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}

	lifetimeCtx, cancel := context.WithCancel(context.Background())

	return &Bridge{
		client:      client,
		hooks:       hooks,
		dialer:      dialer,
		threadName:  threadName,
		callTimeout: callTimeout,
		log:         log.WithName("bridge"),
		tasks:       chanx.NewUnboundedChan[func()](lifetimeCtx, taskQueueCapacity),
		lifetimeCtx: lifetimeCtx,
		cancel:      cancel,
		subscribers: map[string][]func(json.RawMessage){},
		scripts:     newScriptTable(),
		breakpoints: newBreakpointTable(),
		frames:      newHandles[*cdp.CallFrame](),
		objects:     newHandles[string](),
	}
}

// Run processes the debug session until the client disconnects or the context is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	clientErrCh := make(chan error, 1)
	go func() {
		clientErrCh <- b.client.Run(ctx)
	}()

	for !b.finished {
		select {
		case req, isOpen := <-b.client.Requests():
			if !isOpen {
				b.log.V(1).Info("Client connection closed")
				b.finished = true
				continue
			}
			b.handleRequest(ctx, req)

		case ev, isOpen := <-b.targetEvents:
			if !isOpen {
				b.onTargetClosed()
				continue
			}
			b.handleTargetEvent(ev)

		case task := <-b.tasks.Out:
			task()

		case <-ctx.Done():
			b.log.V(1).Info("Debug session cancelled")
			b.finished = true
		}
	}

	b.closeSession()
	b.client.Close()

	clientErr := <-clientErrCh
	if clientErr != nil && !dapconn.IsDisconnectError(clientErr) {
		return clientErr
	}
	return nil
}

// closeSession stops the debuggee and releases target resources. Idempotent.
func (b *Bridge) closeSession() {
	if b.closed {
		return
	}
	b.closed = true

	// Deferred work must not run once the session is over.
	b.cancel()

	if hooksErr := b.hooks.Close(); hooksErr != nil {
		b.log.Error(hooksErr, "Error while cleaning up the debug session")
	}
	if b.target != nil {
		if closeErr := b.target.Close(); closeErr != nil {
			b.log.V(1).Info("Error closing target connection", "Error", closeErr.Error())
		}
	}
}

// post schedules a task to run on the event loop. No-op once the session has ended.
func (b *Bridge) post(task func()) {
	select {
	case <-b.lifetimeCtx.Done():
	case b.tasks.In <- task:
	}
}

func (b *Bridge) send(msg dap.Message) {
	if sendErr := b.client.Send(msg); sendErr != nil {
		b.log.V(1).Info("Could not send message to the client", "Error", sendErr.Error())
	}
}

func (b *Bridge) sendError(req *dap.Request, code int, err error) {
	b.send(dapconn.NewErrorResponse(req, code, err.Error()))
}

// call invokes a target method that does not execute target code and waits for the reply.
func (b *Bridge) call(ctx context.Context, method string, params any, result any) error {
	if b.target == nil {
		return ErrNotAttached
	}

	callCtx, cancel := context.WithTimeout(ctx, b.callTimeout)
	defer cancel()
	return b.target.Call(callCtx, method, params, result)
}

// Session implementation

func (b *Bridge) Attach(ctx context.Context, opts AttachOptions) error {
	if b.target != nil {
		return ErrAlreadyAttached
	}

	target, dialErr := b.dialer(ctx, opts, b.log)
	if dialErr != nil {
		return dialErr
	}
	b.target = target
	b.targetEvents = target.Events()
	b.log.V(1).Info("Connected to target debugger", "Address", opts.Address, "Port", opts.Port)

	if hooksErr := b.hooks.ConnectionStarted(ctx, b); hooksErr != nil {
		return hooksErr
	}

	if enableErr := b.call(ctx, cdp.MethodDebuggerEnable, nil, nil); enableErr != nil {
		return fmt.Errorf("could not enable the target debugger: %w", enableErr)
	}
	if enableErr := b.call(ctx, cdp.MethodRuntimeEnable, nil, nil); enableErr != nil {
		// Older targets do not implement the Runtime domain switch; console and evaluation still work.
		b.log.V(1).Info("Runtime domain could not be enabled", "Error", enableErr.Error())
	}
	if b.pauseOnExceptions != "" {
		b.applyPauseOnExceptions(ctx)
	}

	b.send(&dap.InitializedEvent{Event: dapconn.NewEvent("initialized")})
	return nil
}

func (b *Bridge) Evaluate(expression string) <-chan EvaluateResult {
	resultCh := make(chan EvaluateResult, 1)
	if b.target == nil {
		resultCh <- EvaluateResult{Err: ErrNotAttached}
		close(resultCh)
		return resultCh
	}

	replyCh := b.target.Send(cdp.MethodRuntimeEvaluate, cdp.EvaluateParams{Expression: expression})
	go func() {
		defer close(resultCh)
		var res cdp.EvaluateResult
		if decodeErr := cdp.DecodeReply(<-replyCh, &res); decodeErr != nil {
			resultCh <- EvaluateResult{Err: decodeErr}
			return
		}
		if res.WasThrown {
			resultCh <- EvaluateResult{Result: res.Result, Err: fmt.Errorf("evaluation of '%s' threw: %s", expression, renderValue(res.Result, false))}
			return
		}
		resultCh <- EvaluateResult{Result: res.Result}
	}()
	return resultCh
}

func (b *Bridge) Call(ctx context.Context, method string, params any, result any) error {
	return b.call(ctx, method, params, result)
}

func (b *Bridge) Subscribe(method string, handler func(params json.RawMessage)) {
	b.subscribers[method] = append(b.subscribers[method], handler)
}

func (b *Bridge) AfterFunc(d time.Duration, f func()) func() bool {
	timer := time.AfterFunc(d, func() {
		b.post(func() {
			if b.finished || b.closed {
				return
			}
			f()
		})
	})
	return timer.Stop
}

func (b *Bridge) Terminate(reason string) {
	b.post(func() {
		b.terminate(reason)
	})
}

func (b *Bridge) Logger() logr.Logger {
	return b.log
}

func (b *Bridge) terminate(reason string) {
	if b.terminated {
		return
	}
	b.terminated = true

	if reason != "" {
		b.send(dapconn.NewOutputEvent("console", reason+"\n"))
	}
	b.send(dapconn.NewTerminatedEvent())
}

func (b *Bridge) onTargetClosed() {
	b.log.V(1).Info("Target connection closed")
	b.targetEvents = nil
	b.clearPauseState()
	b.terminate("")
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
