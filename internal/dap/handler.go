/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package dap

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/go-dap"
)

// MessageHandler is a function that can inspect and modify DAP messages as they flow
// through the client connection. It receives the message and its flow direction, and returns:
//   - modified: the (possibly modified) message to pass on
//   - forward: whether to pass the message on (false to suppress)
//
// If the handler returns nil for modified but true for forward, the original message
// is passed on unchanged.
type MessageHandler func(msg dap.Message, direction Direction) (modified dap.Message, forward bool)

// ComposeHandlers combines multiple message handlers into a single handler.
// Handlers are called in order; if any handler returns forward=false, the chain stops.
// The modified message from each handler is passed to the next handler.
func ComposeHandlers(handlers ...MessageHandler) MessageHandler {
	return func(msg dap.Message, direction Direction) (dap.Message, bool) {
		current := msg
		for _, h := range handlers {
			if h == nil {
				continue
			}

			modified, forward := h(current, direction)
			if !forward {
				return nil, false
			}

			if modified != nil {
				current = modified
			}
		}

		return current, true
	}
}

// TraceHandler returns a handler that logs every message at high verbosity and passes it on unchanged.
func TraceHandler(log logr.Logger) MessageHandler {
	return func(msg dap.Message, direction Direction) (dap.Message, bool) {
		if traceLog := log.V(2); traceLog.Enabled() {
			kv := []any{"direction", direction.String(), "type", fmt.Sprintf("%T", msg)}
			switch m := msg.(type) {
			case dap.RequestMessage:
				kv = append(kv, "command", m.GetRequest().Command, "seq", m.GetRequest().Seq)
			case dap.ResponseMessage:
				kv = append(kv, "command", m.GetResponse().Command, "requestSeq", m.GetResponse().RequestSeq, "success", m.GetResponse().Success)
			case dap.EventMessage:
				kv = append(kv, "event", m.GetEvent().Event)
			}
			traceLog.Info("DAP message", kv...)
		}
		return msg, true
	}
}
