// Package bridgetest provides an in-memory target debugger for testing code built on the bridge.
package bridgetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/smallnest/chanx"

	"github.com/iradul/vscode-phantomjs-debug/internal/cdp"
)

// Call is a method call received by the fake target.
type Call struct {
	Method string
	Params json.RawMessage
}

// Handler produces the result (or error) for a method call. It runs on its own goroutine, so it may block.
type Handler func(method string, params json.RawMessage) (any, error)

// FakeTarget records method calls and delivers notifications injected by the test.
type FakeTarget struct {
	handler Handler

	lock   sync.Mutex
	calls  []Call
	closed bool

	events *chanx.UnboundedChan[cdp.Event]
	done   chan struct{}
}

func NewFakeTarget(handler Handler) *FakeTarget {
	if handler == nil {
		handler = DefaultReply
	}
	return &FakeTarget{
		handler: handler,
		// Closing the input channel stops the queue once it is drained.
		events: chanx.NewUnboundedChan[cdp.Event](context.Background(), 16),
		done:   make(chan struct{}),
	}
}

// DefaultReply answers breakpoint requests by binding the breakpoint at the requested location,
// and every other call with an empty result.
func DefaultReply(method string, params json.RawMessage) (any, error) {
	if method != cdp.MethodDebuggerSetBreakpointByURL {
		return struct{}{}, nil
	}

	var p cdp.SetBreakpointByURLParams
	if unmarshalErr := json.Unmarshal(params, &p); unmarshalErr != nil {
		return nil, unmarshalErr
	}
	return cdp.SetBreakpointByURLResult{
		BreakpointID: fmt.Sprintf("%s:%d:%d", p.URL, p.LineNumber, p.ColumnNumber),
		Locations:    []cdp.Location{{LineNumber: p.LineNumber, ColumnNumber: p.ColumnNumber}},
	}, nil
}

func (ft *FakeTarget) Send(method string, params any) <-chan cdp.Reply {
	replyCh := make(chan cdp.Reply, 1)

	raw, marshalErr := json.Marshal(params)
	if marshalErr != nil {
		replyCh <- cdp.Reply{Err: marshalErr}
		close(replyCh)
		return replyCh
	}

	ft.lock.Lock()
	closed := ft.closed
	if !closed {
		ft.calls = append(ft.calls, Call{Method: method, Params: raw})
	}
	ft.lock.Unlock()

	if closed {
		replyCh <- cdp.Reply{Err: cdp.ErrConnClosed}
		close(replyCh)
		return replyCh
	}

	go func() {
		defer close(replyCh)
		result, handlerErr := ft.handler(method, raw)
		if handlerErr != nil {
			replyCh <- cdp.Reply{Err: handlerErr}
			return
		}
		data, resultErr := json.Marshal(result)
		if resultErr != nil {
			replyCh <- cdp.Reply{Err: resultErr}
			return
		}
		replyCh <- cdp.Reply{Result: data}
	}()
	return replyCh
}

func (ft *FakeTarget) Call(ctx context.Context, method string, params any, result any) error {
	select {
	case r := <-ft.Send(method, params):
		return cdp.DecodeReply(r, result)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (ft *FakeTarget) Events() <-chan cdp.Event {
	return ft.events.Out
}

func (ft *FakeTarget) Done() <-chan struct{} {
	return ft.done
}

// Emit delivers a notification to the connection owner. No-op after the target is closed.
func (ft *FakeTarget) Emit(method string, params any) {
	raw, marshalErr := json.Marshal(params)
	if marshalErr != nil {
		panic(marshalErr)
	}

	ft.lock.Lock()
	defer ft.lock.Unlock()
	if ft.closed {
		return
	}
	ft.events.In <- cdp.Event{Method: method, Params: raw}
}

// Close simulates the connection going away. Notifications emitted earlier are still delivered.
func (ft *FakeTarget) Close() error {
	ft.lock.Lock()
	defer ft.lock.Unlock()
	if ft.closed {
		return nil
	}
	ft.closed = true
	close(ft.events.In)
	close(ft.done)
	return nil
}

func (ft *FakeTarget) IsClosed() bool {
	ft.lock.Lock()
	defer ft.lock.Unlock()
	return ft.closed
}

// Calls returns all method calls received so far.
func (ft *FakeTarget) Calls() []Call {
	ft.lock.Lock()
	defer ft.lock.Unlock()
	return append([]Call(nil), ft.calls...)
}

// CallsTo returns the received calls of given method.
func (ft *FakeTarget) CallsTo(method string) []Call {
	var matching []Call
	for _, c := range ft.Calls() {
		if c.Method == method {
			matching = append(matching, c)
		}
	}
	return matching
}

// Methods returns the names of the methods called so far, in call order.
func (ft *FakeTarget) Methods() []string {
	calls := ft.Calls()
	methods := make([]string, len(calls))
	for i, c := range calls {
		methods[i] = c.Method
	}
	return methods
}
