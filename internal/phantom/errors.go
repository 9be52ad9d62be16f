/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package phantom

import (
	"errors"
)

var (
	// ErrMissingExecutable is returned when the launch configuration does not name the PhantomJS executable.
	ErrMissingExecutable = errors.New(`can't find PhantomJS executable - please properly set the "runtimeExecutable" field in the launch config`)

	// ErrMissingFile is returned when the launch configuration does not name the script to run.
	ErrMissingFile = errors.New(`no script to debug - please set the "file" field in the launch config`)

	// ErrInvalidLaunchArgs is returned when the launch configuration cannot be decoded.
	ErrInvalidLaunchArgs = errors.New("invalid launch configuration")

	// ErrProtocolAnomaly is returned when a position reported by PhantomJS cannot be mapped back to the client,
	// e.g. a wrapped script reports a location on the wrapper line.
	ErrProtocolAnomaly = errors.New("PhantomJS reported an invalid location")
)

// IsConfigurationError returns true if the error is caused by an incomplete or invalid launch configuration.
// Configuration errors are reported to the user and prevent the session from starting.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrMissingExecutable) ||
		errors.Is(err, ErrMissingFile) ||
		errors.Is(err, ErrInvalidLaunchArgs)
}

// IsProtocolAnomaly returns true if the error indicates PhantomJS reported data that cannot be mapped to the client.
// Such errors are logged and the affected data is ignored.
func IsProtocolAnomaly(err error) bool {
	return errors.Is(err, ErrProtocolAnomaly)
}
