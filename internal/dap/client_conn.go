/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package dap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/google/go-dap"
	"github.com/smallnest/chanx"
)

const defaultQueueCapacity = 32

// ClientConnConfig contains configuration options for a client connection.
type ClientConnConfig struct {
	// Handler is an optional message handler for inspecting and modifying messages.
	Handler MessageHandler

	// Logger is the logger for the connection. If not set, logging is disabled.
	Logger logr.Logger
}

// ClientConn is the adapter end of a DAP connection with a development tool.
// Incoming requests are delivered in order through Requests(). Outgoing responses and events
// are queued by Send() and written in order by a dedicated writer, which also assigns
// their sequence numbers.
type ClientConn struct {
	transport Transport
	handler   MessageHandler
	seq       *sequenceCounter
	log       logr.Logger

	requests *chanx.UnboundedChan[dap.RequestMessage]
	outgoing *chanx.UnboundedChan[dap.Message]

	// lifetimeCtx ends when the connection stops running.
	lifetimeCtx context.Context
	cancel      context.CancelFunc

	// Protects sendClosed and the outgoing input channel.
	sendMu     sync.Mutex
	sendClosed bool

	runOnce sync.Once
	done    chan struct{}
}

func NewClientConn(transport Transport, config ClientConnConfig) *ClientConn {
	log := config.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	lifetimeCtx, cancel := context.WithCancel(context.Background())

	return &ClientConn{
		transport:   transport,
		handler:     ComposeHandlers(TraceHandler(log), config.Handler),
		seq:         newSequenceCounter(),
		log:         log,
		requests:    chanx.NewUnboundedChan[dap.RequestMessage](lifetimeCtx, defaultQueueCapacity),
		outgoing:    chanx.NewUnboundedChan[dap.Message](lifetimeCtx, defaultQueueCapacity),
		lifetimeCtx: lifetimeCtx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// Requests returns the channel that delivers requests from the client.
// The channel is closed when the connection stops running.
func (c *ClientConn) Requests() <-chan dap.RequestMessage {
	return c.requests.Out
}

// Done returns a channel that is closed when the connection has stopped running.
func (c *ClientConn) Done() <-chan struct{} {
	return c.done
}

// Send queues a response or event for delivery to the client.
func (c *ClientConn) Send(msg dap.Message) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.sendClosed || c.lifetimeCtx.Err() != nil {
		return ErrConnClosed
	}

	select {
	case c.outgoing.In <- msg:
		return nil
	case <-c.lifetimeCtx.Done():
		return ErrConnClosed
	}
}

// Close stops accepting new messages. Messages already queued are written before the connection shuts down.
func (c *ClientConn) Close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.sendClosed {
		return
	}
	c.sendClosed = true
	close(c.outgoing.In)
}

// Run starts the message pumps and blocks until the connection terminates.
// A clean shutdown (client disconnected, or Close() called and the outgoing queue drained)
// results in nil error.
func (c *ClientConn) Run(ctx context.Context) error {
	var runErr error
	c.runOnce.Do(func() {
		runErr = c.run(ctx)
	})
	return runErr
}

func (c *ClientConn) run(ctx context.Context) error {
	errChan := make(chan error, 2)
	writerDone := make(chan struct{})

	go func() {
		errChan <- c.reader()
	}()

	go func() {
		defer close(writerDone)
		errChan <- c.writer()
	}()

	var result error
	select {
	case result = <-errChan:
	case <-ctx.Done():
		result = ctx.Err()
	}

	c.cancel()
	if closeErr := c.transport.Close(); closeErr != nil {
		c.log.V(1).Info("Error closing client transport", "error", closeErr)
	}

	// The reader may stay blocked on a stream that cannot be interrupted (e.g. stdin),
	// but it never touches shared state after the lifetime context ends.
	<-writerDone
	close(c.done)

	return filterContextError(result, ctx, c.log)
}

func (c *ClientConn) reader() error {
	for {
		msg, readErr := c.transport.ReadMessage()
		if readErr != nil {
			if c.lifetimeCtx.Err() != nil || errors.Is(readErr, io.EOF) {
				return nil
			}

			if unsupported, isUnsupported := unsupportedRequest(readErr); isUnsupported {
				c.log.Info("Received unsupported request", "command", unsupported.Command)
				resp := NewErrorResponse(unsupported, ErrCodeUnsupportedRequest, fmt.Sprintf("Unsupported request '%s'", unsupported.Command))
				_ = c.Send(resp)
				continue
			}

			return fmt.Errorf("failed to read from client: %w", readErr)
		}

		modified, forward := c.handler(msg, Inbound)
		if !forward {
			continue
		}
		if modified != nil {
			msg = modified
		}

		req, isRequest := msg.(dap.RequestMessage)
		if !isRequest {
			c.log.Info("Unexpected message type from client", "type", fmt.Sprintf("%T", msg))
			continue
		}

		select {
		case c.requests.In <- req:
		case <-c.lifetimeCtx.Done():
			return nil
		}
	}
}

func (c *ClientConn) writer() error {
	for {
		select {
		case msg, ok := <-c.outgoing.Out:
			if !ok {
				return nil
			}

			modified, forward := c.handler(msg, Outbound)
			if !forward {
				continue
			}
			if modified != nil {
				msg = modified
			}

			if pm := protocolMessageOf(msg); pm != nil {
				pm.Seq = c.seq.Next()
			}

			if writeErr := c.transport.WriteMessage(msg); writeErr != nil {
				if c.lifetimeCtx.Err() != nil {
					return nil
				}
				return fmt.Errorf("failed to write to client: %w", writeErr)
			}

		case <-c.lifetimeCtx.Done():
			return nil
		}
	}
}

// unsupportedRequest recognizes a decoding failure caused by a request command the codec does not know.
// The codec reports the message kind capitalized ("Request").
func unsupportedRequest(err error) (*dap.Request, bool) {
	var fieldErr *dap.DecodeProtocolMessageFieldError
	if !errors.As(err, &fieldErr) {
		return nil, false
	}
	if !strings.EqualFold(fieldErr.SubType, "request") || fieldErr.FieldName != "command" {
		return nil, false
	}
	return &dap.Request{
		ProtocolMessage: dap.ProtocolMessage{Seq: fieldErr.Seq, Type: "request"},
		Command:         fieldErr.FieldValue,
	}, true
}
