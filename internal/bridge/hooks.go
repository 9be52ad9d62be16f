/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package bridge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-logr/logr"

	"github.com/iradul/vscode-phantomjs-debug/internal/cdp"
)

// BreakpointLocation is a requested breakpoint position. Lines and columns are 0-based.
type BreakpointLocation struct {
	Line      int
	Column    int
	Condition string
}

// BreakpointRequest is a set of breakpoints for one target script.
type BreakpointRequest struct {
	// URL of the target script, as reported by the target.
	URL string

	// Local path of the script the breakpoints are set in.
	ClientPath string

	// If the breakpoints were set in an authored file that was compiled into the script,
	// the path of that file. Breakpoint positions have been mapped to the script already.
	AuthoredPath string

	Breakpoints []BreakpointLocation
}

// BreakpointResult is the outcome of setting a single breakpoint. Lines and columns are 0-based.
type BreakpointResult struct {
	Verified     bool
	BreakpointID string
	Line         int
	Column       int
	Message      string
}

// SetBreakpointsFunc sets breakpoints in the target. Results are returned in request order.
type SetBreakpointsFunc func(ctx context.Context, req *BreakpointRequest) ([]BreakpointResult, error)

// ScriptParsedFunc performs the default handling of a script-parsed notification.
type ScriptParsedFunc func(ev *cdp.ScriptParsedEvent)

// PausedFunc performs the default handling of a pause notification.
type PausedFunc func(ev *cdp.PausedEvent)

// Hooks are the points where a runtime-specific adapter plugs into the bridge.
// All methods are called on the bridge event loop. Methods that receive a "next" function
// must call it to get the default behavior; not calling it suppresses the default behavior.
type Hooks interface {
	// Launch starts the debuggee according to client-supplied launch arguments and attaches to it
	// (by calling Session.Attach). A returned error fails the launch request.
	Launch(ctx context.Context, s Session, args json.RawMessage) error

	// ConnectionStarted is called once the target connection is established,
	// before the bridge enables the debugger domains.
	ConnectionStarted(ctx context.Context, s Session) error

	SetBreakpoints(ctx context.Context, req *BreakpointRequest, next SetBreakpointsFunc) ([]BreakpointResult, error)

	ScriptParsed(ev *cdp.ScriptParsedEvent, next ScriptParsedFunc)

	Paused(ev *cdp.PausedEvent, next PausedFunc)

	// TargetURLToClientPath maps a target script URL to a local file. The second return value
	// is false if there is no local file for the script.
	TargetURLToClientPath(url string) (string, bool)

	// Close releases resources held by the hooks (e.g. stops the debuggee). Called once, at session end.
	Close() error
}

// AttachOptions describe the target debugger endpoint.
type AttachOptions struct {
	Address  string
	Port     int
	PagePath string
	Timeout  time.Duration
}

// EvaluateResult is the outcome of an asynchronous expression evaluation.
type EvaluateResult struct {
	Result cdp.RemoteObject
	Err    error
}

// Session is the bridge functionality available to hooks.
type Session interface {
	// Attach connects to the target debugger. Must be called from Launch.
	Attach(ctx context.Context, opts AttachOptions) error

	// Evaluate evaluates an expression in the global scope of the target without waiting for the result.
	// The evaluation may run target code (and hit breakpoints), so the result is delivered through the returned channel.
	Evaluate(expression string) <-chan EvaluateResult

	// Call invokes a target method that does not run target code, and waits for the result.
	Call(ctx context.Context, method string, params any, result any) error

	// Subscribe registers a handler for target notifications that the bridge does not handle itself.
	// The handler runs on the event loop.
	Subscribe(method string, handler func(params json.RawMessage))

	// ConsoleAPICalled reports a target console message to the client.
	ConsoleAPICalled(ev *cdp.ConsoleAPICalledEvent)

	// AfterFunc runs f on the event loop after given delay, unless the session ends first.
	// The returned function cancels the call; it returns false if the call already ran or was cancelled.
	AfterFunc(d time.Duration, f func()) (stop func() bool)

	// Terminate ends the debug session from the debuggee side, with an optional explanation for the user.
	// Safe to call from any goroutine, any number of times.
	Terminate(reason string)

	Logger() logr.Logger
}

// NopHooks provides the default behavior for every hook point.
type NopHooks struct{}

func (NopHooks) Launch(_ context.Context, _ Session, _ json.RawMessage) error {
	return ErrLaunchNotSupported
}

func (NopHooks) ConnectionStarted(_ context.Context, _ Session) error {
	return nil
}

func (NopHooks) SetBreakpoints(ctx context.Context, req *BreakpointRequest, next SetBreakpointsFunc) ([]BreakpointResult, error) {
	return next(ctx, req)
}

func (NopHooks) ScriptParsed(ev *cdp.ScriptParsedEvent, next ScriptParsedFunc) {
	next(ev)
}

func (NopHooks) Paused(ev *cdp.PausedEvent, next PausedFunc) {
	next(ev)
}

func (NopHooks) TargetURLToClientPath(url string) (string, bool) {
	return fileURLToPath(url)
}

func (NopHooks) Close() error {
	return nil
}

var _ Hooks = NopHooks{}
