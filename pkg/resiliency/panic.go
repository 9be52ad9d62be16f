/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package resiliency

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-logr/logr"
)

// MakePanicError logs a panic value with the current call stack and returns it as a permanent error.
// Returns nil if panicVal is nil.
func MakePanicError(panicVal any, log logr.Logger) error {
	if panicVal == nil {
		return nil
	}

	var panicErr error
	switch v := panicVal.(type) {
	case error:
		panicErr = v
	case string:
		panicErr = errors.New(v)
	default:
		panicErr = fmt.Errorf("%v", v)
	}

	var permanent *backoff.PermanentError
	if !errors.As(panicErr, &permanent) {
		panicErr = Permanent(panicErr)
	}

	log.Error(panicErr, "A goroutine ended prematurely due to panic", "stack", string(debug.Stack()))
	return panicErr
}

// Recover stops a panic in the calling goroutine and stores it in *errp.
// It must be deferred directly: defer resiliency.Recover(log, &err)
func Recover(log logr.Logger, errp *error) {
	if panicErr := MakePanicError(recover(), log); panicErr != nil {
		*errp = panicErr
	}
}
