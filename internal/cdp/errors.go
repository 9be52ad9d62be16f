/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package cdp

import (
	"errors"
	"fmt"
)

var (
	// ErrConnClosed is returned for calls made on (or pending when) the connection closed.
	ErrConnClosed = errors.New("target connection is closed")

	// ErrEndpointUnavailable is returned when the target debugger endpoint did not come up in time.
	ErrEndpointUnavailable = errors.New("target debugger endpoint is not available")
)

// ProtocolError is an error reported by the target in reply to a method call.
type ProtocolError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *ProtocolError) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("%s (%d): %s", e.Message, e.Code, e.Data)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

// IsProtocolError returns true if the error was reported by the target (as opposed to a transport failure).
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
