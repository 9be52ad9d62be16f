/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package dap

import (
	"github.com/google/go-dap"
)

// Error codes reported in error responses.
const (
	ErrCodeUnsupportedRequest = 1000 + iota
	ErrCodeLaunchFailed
	ErrCodeNotConnected
	ErrCodeTargetError
	ErrCodeInvalidArguments
)

// NewResponse creates a successful response header for the given request.
// The sequence number is assigned when the response is sent.
func NewResponse(req *dap.Request) dap.Response {
	return dap.Response{
		ProtocolMessage: dap.ProtocolMessage{Type: "response"},
		Command:         req.Command,
		RequestSeq:      req.Seq,
		Success:         true,
	}
}

// NewErrorResponse creates an error response for the given request.
func NewErrorResponse(req *dap.Request, id int, message string) *dap.ErrorResponse {
	resp := &dap.ErrorResponse{
		Response: NewResponse(req),
	}
	resp.Success = false
	resp.Message = message
	resp.Body.Error = &dap.ErrorMessage{
		Id:       id,
		Format:   message,
		ShowUser: true,
	}
	return resp
}

// NewEvent creates an event header with the given event name.
func NewEvent(event string) dap.Event {
	return dap.Event{
		ProtocolMessage: dap.ProtocolMessage{Type: "event"},
		Event:           event,
	}
}

// NewOutputEvent creates an output event with given category ("console", "stdout", "stderr" etc.).
func NewOutputEvent(category, output string) *dap.OutputEvent {
	return &dap.OutputEvent{
		Event: NewEvent("output"),
		Body: dap.OutputEventBody{
			Category: category,
			Output:   output,
		},
	}
}

// NewTerminatedEvent creates a terminated event.
func NewTerminatedEvent() *dap.TerminatedEvent {
	return &dap.TerminatedEvent{Event: NewEvent("terminated")}
}
