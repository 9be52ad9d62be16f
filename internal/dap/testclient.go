/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package dap

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/go-dap"
)

// TestClient is a DAP client (a stand-in for a development tool) for testing purposes.
// It provides helper methods for common DAP operations.
type TestClient struct {
	transport Transport
	seq       *sequenceCounter

	// eventChan receives events from the adapter
	eventChan chan dap.Message

	// responseChans tracks pending requests waiting for responses
	responseChans map[int]chan dap.Message
	responseMu    sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTestClient creates a new DAP test client with the given transport.
func NewTestClient(transport Transport) *TestClient {
	ctx, cancel := context.WithCancel(context.Background())
	c := &TestClient{
		transport:     transport,
		seq:           newSequenceCounter(),
		eventChan:     make(chan dap.Message, 256),
		responseChans: make(map[int]chan dap.Message),
		ctx:           ctx,
		cancel:        cancel,
	}

	c.wg.Add(1)
	go c.readLoop()

	return c
}

func (c *TestClient) readLoop() {
	defer c.wg.Done()
	defer close(c.eventChan)

	for {
		msg, readErr := c.transport.ReadMessage()
		if readErr != nil {
			return
		}

		switch m := msg.(type) {
		case dap.ResponseMessage:
			resp := m.GetResponse()
			c.responseMu.Lock()
			if ch, ok := c.responseChans[resp.RequestSeq]; ok {
				ch <- msg
				delete(c.responseChans, resp.RequestSeq)
			}
			c.responseMu.Unlock()

		case dap.EventMessage:
			select {
			case c.eventChan <- msg:
			case <-c.ctx.Done():
				return
			}
		}
	}
}

// Send sends a request and waits for the response.
func (c *TestClient) Send(ctx context.Context, req dap.RequestMessage) (dap.Message, error) {
	request := req.GetRequest()
	request.Type = "request"
	seq := c.seq.Next()
	request.Seq = seq

	respChan := make(chan dap.Message, 1)
	c.responseMu.Lock()
	c.responseChans[seq] = respChan
	c.responseMu.Unlock()

	if writeErr := c.transport.WriteMessage(req); writeErr != nil {
		c.responseMu.Lock()
		delete(c.responseChans, seq)
		c.responseMu.Unlock()
		return nil, fmt.Errorf("failed to send request: %w", writeErr)
	}

	select {
	case resp := <-respChan:
		return resp, nil
	case <-ctx.Done():
		c.responseMu.Lock()
		delete(c.responseChans, seq)
		c.responseMu.Unlock()
		return nil, ctx.Err()
	}
}

// sendTyped sends a request and checks that the response has the expected type and indicates success.
func sendTyped[R dap.ResponseMessage](ctx context.Context, c *TestClient, req dap.RequestMessage) (R, error) {
	var zero R
	resp, sendErr := c.Send(ctx, req)
	if sendErr != nil {
		return zero, sendErr
	}

	if errResp, isErr := resp.(*dap.ErrorResponse); isErr {
		return zero, fmt.Errorf("%s failed: %s", errResp.Command, errResp.Message)
	}

	typed, ok := resp.(R)
	if !ok {
		return zero, fmt.Errorf("unexpected response type: %T", resp)
	}
	if !typed.GetResponse().Success {
		return zero, fmt.Errorf("%s failed: %s", typed.GetResponse().Command, typed.GetResponse().Message)
	}
	return typed, nil
}

func request(command string) dap.Request {
	return dap.Request{
		ProtocolMessage: dap.ProtocolMessage{Type: "request"},
		Command:         command,
	}
}

// Initialize sends an initialize request and returns the capabilities.
func (c *TestClient) Initialize(ctx context.Context) (*dap.InitializeResponse, error) {
	return sendTyped[*dap.InitializeResponse](ctx, c, &dap.InitializeRequest{
		Request: request("initialize"),
		Arguments: dap.InitializeRequestArguments{
			ClientID:        "test-client",
			ClientName:      "DAP Test Client",
			AdapterID:       "phantomjs",
			Locale:          "en-US",
			LinesStartAt1:   true,
			ColumnsStartAt1: true,
			PathFormat:      "path",
		},
	})
}

// Launch sends a launch request with given (JSON-serializable) arguments.
func (c *TestClient) Launch(ctx context.Context, args any) error {
	argsJSON, marshalErr := json.Marshal(args)
	if marshalErr != nil {
		return fmt.Errorf("failed to marshal launch arguments: %w", marshalErr)
	}

	_, err := sendTyped[*dap.LaunchResponse](ctx, c, &dap.LaunchRequest{
		Request:   request("launch"),
		Arguments: argsJSON,
	})
	return err
}

// SetBreakpoints sets breakpoints in the given file at the specified (1-based) lines.
func (c *TestClient) SetBreakpoints(ctx context.Context, file string, lines []int) (*dap.SetBreakpointsResponse, error) {
	breakpoints := make([]dap.SourceBreakpoint, len(lines))
	for i, line := range lines {
		breakpoints[i] = dap.SourceBreakpoint{Line: line}
	}

	return sendTyped[*dap.SetBreakpointsResponse](ctx, c, &dap.SetBreakpointsRequest{
		Request: request("setBreakpoints"),
		Arguments: dap.SetBreakpointsArguments{
			Source:      dap.Source{Path: file},
			Breakpoints: breakpoints,
		},
	})
}

// ConfigurationDone signals that configuration is complete.
func (c *TestClient) ConfigurationDone(ctx context.Context) error {
	_, err := sendTyped[*dap.ConfigurationDoneResponse](ctx, c, &dap.ConfigurationDoneRequest{
		Request: request("configurationDone"),
	})
	return err
}

// StackTrace retrieves the call stack of the given thread.
func (c *TestClient) StackTrace(ctx context.Context, threadID int) (*dap.StackTraceResponse, error) {
	return sendTyped[*dap.StackTraceResponse](ctx, c, &dap.StackTraceRequest{
		Request:   request("stackTrace"),
		Arguments: dap.StackTraceArguments{ThreadId: threadID},
	})
}

// Scopes retrieves the scopes of the given stack frame.
func (c *TestClient) Scopes(ctx context.Context, frameID int) (*dap.ScopesResponse, error) {
	return sendTyped[*dap.ScopesResponse](ctx, c, &dap.ScopesRequest{
		Request:   request("scopes"),
		Arguments: dap.ScopesArguments{FrameId: frameID},
	})
}

// Variables retrieves the children of the given variable reference.
func (c *TestClient) Variables(ctx context.Context, reference int) (*dap.VariablesResponse, error) {
	return sendTyped[*dap.VariablesResponse](ctx, c, &dap.VariablesRequest{
		Request:   request("variables"),
		Arguments: dap.VariablesArguments{VariablesReference: reference},
	})
}

// Evaluate evaluates an expression, in the context of given frame if frameID is not zero.
func (c *TestClient) Evaluate(ctx context.Context, expression string, frameID int) (*dap.EvaluateResponse, error) {
	return sendTyped[*dap.EvaluateResponse](ctx, c, &dap.EvaluateRequest{
		Request:   request("evaluate"),
		Arguments: dap.EvaluateArguments{Expression: expression, FrameId: frameID, Context: "repl"},
	})
}

// Continue resumes execution of all threads.
func (c *TestClient) Continue(ctx context.Context, threadID int) error {
	_, err := sendTyped[*dap.ContinueResponse](ctx, c, &dap.ContinueRequest{
		Request:   request("continue"),
		Arguments: dap.ContinueArguments{ThreadId: threadID},
	})
	return err
}

// Disconnect sends a disconnect request to terminate the debug session.
func (c *TestClient) Disconnect(ctx context.Context, terminateDebuggee bool) error {
	_, err := sendTyped[*dap.DisconnectResponse](ctx, c, &dap.DisconnectRequest{
		Request:   request("disconnect"),
		Arguments: &dap.DisconnectArguments{TerminateDebuggee: terminateDebuggee},
	})
	return err
}

// WaitForEvent waits for an event of the specified type, discarding other events.
func (c *TestClient) WaitForEvent(eventType string, timeout time.Duration) (dap.Message, error) {
	deadline := time.After(timeout)

	for {
		select {
		case msg, ok := <-c.eventChan:
			if !ok {
				return nil, fmt.Errorf("connection closed while waiting for event %q", eventType)
			}
			if event, isEvent := msg.(dap.EventMessage); isEvent && event.GetEvent().Event == eventType {
				return msg, nil
			}

		case <-deadline:
			return nil, fmt.Errorf("timeout waiting for event %q", eventType)
		}
	}
}

// WaitForStoppedEvent waits for a stopped event.
func (c *TestClient) WaitForStoppedEvent(timeout time.Duration) (*dap.StoppedEvent, error) {
	msg, waitErr := c.WaitForEvent("stopped", timeout)
	if waitErr != nil {
		return nil, waitErr
	}

	stoppedEvent, ok := msg.(*dap.StoppedEvent)
	if !ok {
		return nil, fmt.Errorf("unexpected event type: %T", msg)
	}
	return stoppedEvent, nil
}

// WaitForTerminatedEvent waits for a terminated event.
func (c *TestClient) WaitForTerminatedEvent(timeout time.Duration) error {
	_, waitErr := c.WaitForEvent("terminated", timeout)
	return waitErr
}

// Close closes the client and its transport.
func (c *TestClient) Close() error {
	c.cancel()
	closeErr := c.transport.Close()
	c.wg.Wait()
	return closeErr
}
