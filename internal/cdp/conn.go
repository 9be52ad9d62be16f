/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package cdp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorilla/websocket"
	"github.com/smallnest/chanx"
	"github.com/tidwall/gjson"
)

const (
	eventQueueInitialCapacity = 64
	closeWriteTimeout         = time.Second
)

// Event is a notification sent by the target.
type Event struct {
	Method string
	Params json.RawMessage
}

type request struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type reply struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ProtocolError  `json:"error,omitempty"`
}

// Conn is a connection to a target debugger speaking the Chrome DevTools Protocol over WebSocket.
// Method calls may be made from any goroutine. Events are delivered in the order received through Events().
type Conn struct {
	ws      *websocket.Conn
	nextID  atomic.Int64
	pending *pendingCallMap
	events  *chanx.UnboundedChan[Event]
	log     logr.Logger

	writeMu sync.Mutex

	// Stops the event queue once the owner has closed the connection.
	cancel    context.CancelFunc
	closing   atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
	err       error
}

// Dial connects to the target debugger WebSocket endpoint.
func Dial(ctx context.Context, url string, log logr.Logger) (*Conn, error) {
	ws, _, dialErr := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if dialErr != nil {
		return nil, fmt.Errorf("failed to connect to target debugger at '%s': %w", url, dialErr)
	}

	return newConn(ws, log), nil
}

func newConn(ws *websocket.Conn, log logr.Logger) *Conn {
	lifetimeCtx, cancel := context.WithCancel(context.Background())
	c := &Conn{
		ws:      ws,
		pending: newPendingCallMap(),
		events:  chanx.NewUnboundedChan[Event](lifetimeCtx, eventQueueInitialCapacity),
		log:     log.WithName("cdp"),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go c.readLoop()
	return c
}

// Events returns the channel delivering target notifications.
// The channel is closed after the connection closes and all received events have been delivered.
func (c *Conn) Events() <-chan Event {
	return c.events.Out
}

// Done returns a channel that is closed when the connection has closed.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Err returns the reason the connection closed, or nil if it is open or was closed by Close().
func (c *Conn) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Send issues a method call without waiting for the reply.
// The returned channel delivers exactly one Reply and is then closed.
func (c *Conn) Send(method string, params any) <-chan Reply {
	replyCh := make(chan Reply, 1)
	id := c.nextID.Add(1)

	if !c.pending.Add(id, &pendingCall{method: method, replyCh: replyCh}) {
		replyCh <- Reply{Err: ErrConnClosed}
		close(replyCh)
		return replyCh
	}

	c.log.V(1).Info("Sending request", "id", id, "method", method)

	c.writeMu.Lock()
	writeErr := c.ws.WriteJSON(request{ID: id, Method: method, Params: params})
	c.writeMu.Unlock()

	if writeErr != nil {
		if call := c.pending.Take(id); call != nil {
			call.replyCh <- Reply{Err: errors.Join(ErrConnClosed, writeErr)}
			close(call.replyCh)
		}
	}

	return replyCh
}

// Call issues a method call and waits for the reply. If result is not nil, the reply result is unmarshalled into it.
func (c *Conn) Call(ctx context.Context, method string, params any, result any) error {
	select {
	case r := <-c.Send(method, params):
		return DecodeReply(r, result)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DecodeReply unmarshals a successful reply into result (if not nil) or returns the reply error.
func DecodeReply(r Reply, result any) error {
	if r.Err != nil {
		return r.Err
	}
	if result == nil || len(r.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Result, result); err != nil {
		return fmt.Errorf("could not decode reply: %w", err)
	}
	return nil
}

// Close closes the connection. Pending calls complete with ErrConnClosed.
func (c *Conn) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		c.closing.Store(true)
		c.writeMu.Lock()
		_ = c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeWriteTimeout),
		)
		c.writeMu.Unlock()
		closeErr = c.ws.Close()
	})
	<-c.done
	c.cancel()
	return closeErr
}

func (c *Conn) readLoop() {
	var loopErr error
	defer func() {
		c.pending.DrainWithError(ErrConnClosed)
		if loopErr != nil && !websocket.IsCloseError(loopErr, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			c.err = loopErr
		}
		// Closing the input lets already queued events reach the consumer before Events() closes.
		close(c.events.In)
		close(c.done)
	}()

	for {
		_, data, readErr := c.ws.ReadMessage()
		if readErr != nil {
			if !c.closing.Load() {
				loopErr = readErr
			}
			c.log.V(1).Info("Target connection read loop ended", "error", readErr)
			return
		}

		if id := gjson.GetBytes(data, "id"); id.Exists() {
			c.dispatchReply(data)
			continue
		}

		method := gjson.GetBytes(data, "method")
		if !method.Exists() {
			c.log.Info("Ignoring message without method or id", "message", string(data))
			continue
		}

		ev := Event{Method: method.String()}
		if params := gjson.GetBytes(data, "params"); params.Exists() {
			ev.Params = json.RawMessage(params.Raw)
		}

		c.events.In <- ev
	}
}

func (c *Conn) dispatchReply(data []byte) {
	var r reply
	if err := json.Unmarshal(data, &r); err != nil {
		c.log.Error(err, "Could not decode reply from target", "message", string(data))
		return
	}

	call := c.pending.Take(r.ID)
	if call == nil {
		c.log.Info("Received reply for unknown request", "id", r.ID)
		return
	}

	if r.Error != nil {
		call.replyCh <- Reply{Err: fmt.Errorf("%s failed: %w", call.method, r.Error)}
	} else {
		call.replyCh <- Reply{Result: r.Result}
	}
	close(call.replyCh)
}
