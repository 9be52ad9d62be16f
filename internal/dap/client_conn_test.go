// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package dap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/go-dap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConnPair creates a client connection and a test client talking to each other over an in-memory pipe.
func newConnPair(t *testing.T, config ClientConnConfig) (*ClientConn, *TestClient) {
	t.Helper()

	adapterSide, clientSide := net.Pipe()
	conn := NewClientConn(NewConnTransport(adapterSide), config)
	client := NewTestClient(NewConnTransport(clientSide))
	t.Cleanup(func() {
		_ = client.Close()
	})
	return conn, client
}

func TestClientConnDeliversRequestsAndResponses(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, client := newConnPair(t, ClientConnConfig{})
	go func() { _ = conn.Run(ctx) }()

	go func() {
		for req := range conn.Requests() {
			r := req.GetRequest()
			switch r.Command {
			case "threads":
				resp := &dap.ThreadsResponse{Response: NewResponse(r)}
				resp.Body.Threads = []dap.Thread{{Id: 1, Name: "main"}}
				_ = conn.Send(resp)
				_ = conn.Send(NewOutputEvent("console", "hello\n"))
			default:
				_ = conn.Send(NewErrorResponse(r, ErrCodeUnsupportedRequest, "nope"))
			}
		}
	}()

	resp, err := client.Send(ctx, &dap.ThreadsRequest{Request: request("threads")})
	require.NoError(t, err)
	threads, ok := resp.(*dap.ThreadsResponse)
	require.True(t, ok, "unexpected response type %T", resp)
	require.Len(t, threads.Body.Threads, 1)
	assert.Equal(t, 1, threads.Seq, "first outgoing message should have sequence number 1")

	ev, err := client.WaitForEvent("output", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, ev.GetSeq())
	assert.Equal(t, "hello\n", ev.(*dap.OutputEvent).Body.Output)

	_, err = sendTyped[*dap.PauseResponse](ctx, client, &dap.PauseRequest{Request: request("pause")})
	require.ErrorContains(t, err, "nope")
}

func TestClientConnAnswersUnsupportedRequests(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, client := newConnPair(t, ClientConnConfig{})
	go func() { _ = conn.Run(ctx) }()

	resp, err := client.Send(ctx, &dap.Request{Command: "someCustomRequest"})
	require.NoError(t, err)
	errResp, ok := resp.(*dap.ErrorResponse)
	require.True(t, ok, "unexpected response type %T", resp)
	require.False(t, errResp.Success)
	require.Equal(t, "someCustomRequest", errResp.Command)
	require.Equal(t, ErrCodeUnsupportedRequest, errResp.Body.Error.Id)
}

func TestUnsupportedRequestRecognition(t *testing.T) {
	t.Parallel()

	readErr := fmt.Errorf("failed to read DAP message: %w", &dap.DecodeProtocolMessageFieldError{
		Seq: 4, SubType: "Request", FieldName: "command", FieldValue: "someCustomRequest",
	})
	req, isUnsupported := unsupportedRequest(readErr)
	require.True(t, isUnsupported)
	assert.Equal(t, 4, req.Seq)
	assert.Equal(t, "someCustomRequest", req.Command)

	_, isUnsupported = unsupportedRequest(&dap.DecodeProtocolMessageFieldError{SubType: "Event", FieldName: "event", FieldValue: "custom"})
	assert.False(t, isUnsupported, "unknown events are not requests")

	_, isUnsupported = unsupportedRequest(errors.New("boom"))
	assert.False(t, isUnsupported)
}

func TestClientConnHandlerCanSuppressMessages(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	suppressOutput := func(msg dap.Message, direction Direction) (dap.Message, bool) {
		if _, isOutput := msg.(*dap.OutputEvent); isOutput && direction == Outbound {
			return nil, false
		}
		return msg, true
	}

	conn, client := newConnPair(t, ClientConnConfig{Handler: suppressOutput})
	go func() { _ = conn.Run(ctx) }()

	require.NoError(t, conn.Send(NewOutputEvent("console", "hidden")))
	require.NoError(t, conn.Send(NewTerminatedEvent()))

	ev, err := client.WaitForEvent("terminated", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, ev.GetSeq(), "suppressed messages must not consume sequence numbers")
}

func TestClientConnCloseFlushesQueuedMessages(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, client := newConnPair(t, ClientConnConfig{})
	runErr := make(chan error, 1)
	go func() { runErr <- conn.Run(ctx) }()

	for i := 0; i < 10; i++ {
		require.NoError(t, conn.Send(NewOutputEvent("console", "line\n")))
	}
	require.NoError(t, conn.Send(NewTerminatedEvent()))
	conn.Close()

	require.NoError(t, client.WaitForTerminatedEvent(2*time.Second))

	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("connection did not stop after Close()")
	}

	require.ErrorIs(t, conn.Send(NewTerminatedEvent()), ErrConnClosed)
	_, open := <-conn.Requests()
	require.False(t, open)
}

func TestClientConnStopsWhenClientGoesAway(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, client := newConnPair(t, ClientConnConfig{})
	runErr := make(chan error, 1)
	go func() { runErr <- conn.Run(ctx) }()

	require.NoError(t, client.Close())

	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("connection did not stop after the client went away")
	}

	select {
	case <-conn.Done():
	default:
		t.Fatal("Done() channel should be closed")
	}
}
