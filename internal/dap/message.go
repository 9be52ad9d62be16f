// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package dap

import (
	"sync"

	"github.com/google/go-dap"
)

// Direction indicates the flow direction of a DAP message through the client connection.
type Direction int

const (
	// Inbound indicates a message flowing from the client (IDE) to the adapter.
	Inbound Direction = iota
	// Outbound indicates a message flowing from the adapter to the client.
	Outbound
)

// String returns a human-readable representation of the direction.
func (d Direction) String() string {
	switch d {
	case Inbound:
		return "inbound"
	case Outbound:
		return "outbound"
	default:
		return "unknown"
	}
}

// sequenceCounter provides thread-safe sequence number generation.
type sequenceCounter struct {
	mu  sync.Mutex
	seq int
}

func newSequenceCounter() *sequenceCounter {
	return &sequenceCounter{seq: 0}
}

// Next returns the next sequence number.
func (c *sequenceCounter) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the current sequence number without incrementing.
func (c *sequenceCounter) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// protocolMessageOf returns the protocol header embedded in a DAP message, or nil
// if the message type does not expose it.
func protocolMessageOf(msg dap.Message) *dap.ProtocolMessage {
	switch m := msg.(type) {
	case dap.ResponseMessage:
		return &m.GetResponse().ProtocolMessage
	case dap.EventMessage:
		return &m.GetEvent().ProtocolMessage
	case dap.RequestMessage:
		return &m.GetRequest().ProtocolMessage
	default:
		return nil
	}
}
