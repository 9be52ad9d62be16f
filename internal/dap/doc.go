/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

/*
Package dap provides the client-facing Debug Adapter Protocol (DAP) plumbing of the adapter.

# Key Components

  - Transport: DAP message framing over a network connection or stdin/stdout
  - ClientConn: ordered request intake and response/event delivery, with sequence numbering
  - MessageHandler: optional interception of messages flowing through a ClientConn
  - TestClient: a minimal development tool stand-in used by tests

# Usage

	transport := dap.NewStdioTransport(os.Stdin, os.Stdout)
	conn := dap.NewClientConn(transport, dap.ClientConnConfig{Logger: log})
	go func() { _ = conn.Run(ctx) }()

	for req := range conn.Requests() {
		resp := &godap.ThreadsResponse{Response: dap.NewResponse(req.GetRequest())}
		_ = conn.Send(resp)
	}

Sequence numbers of outgoing messages are assigned by the writer, in the order the messages
are written, so callers never need to set them.
*/
package dap
