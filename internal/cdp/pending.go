// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package cdp

import (
	"encoding/json"
	"sync"
)

// Reply is the outcome of a method call.
// Exactly one of Result and Err is meaningful.
type Reply struct {
	Result json.RawMessage
	Err    error
}

// pendingCall tracks a method call that is awaiting a reply.
type pendingCall struct {
	method  string
	replyCh chan Reply
}

// pendingCallMap is a thread-safe map of pending calls keyed by message ID.
type pendingCallMap struct {
	mu     sync.Mutex
	calls  map[int64]*pendingCall
	closed bool
}

func newPendingCallMap() *pendingCallMap {
	return &pendingCallMap{
		calls: make(map[int64]*pendingCall),
	}
}

// Add adds a pending call to the map. Returns false if the map has been drained already.
func (m *pendingCallMap) Add(id int64, call *pendingCall) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.calls[id] = call
	return true
}

// Take retrieves and removes a pending call from the map.
// Returns nil if no call exists for the given ID.
func (m *pendingCallMap) Take(id int64) *pendingCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	call, ok := m.calls[id]
	if !ok {
		return nil
	}
	delete(m.calls, id)
	return call
}

// Len returns the number of pending calls.
func (m *pendingCallMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// DrainWithError completes all pending calls with given error and refuses new ones.
func (m *pendingCallMap) DrainWithError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, call := range m.calls {
		call.replyCh <- Reply{Err: err}
		close(call.replyCh)
	}
	m.calls = make(map[int64]*pendingCall)
	m.closed = true
}
