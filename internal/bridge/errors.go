package bridge

import (
	"errors"
)

var (
	ErrLaunchNotSupported = errors.New("launching a debuggee is not supported by this adapter")
	ErrAttachNotSupported = errors.New("attaching to a running debuggee is not supported, use a launch configuration")
	ErrNotAttached        = errors.New("not connected to the debuggee")
	ErrAlreadyAttached    = errors.New("already connected to the debuggee")
	ErrNotPaused          = errors.New("the debuggee is not paused")
	ErrInvalidReference   = errors.New("invalid or expired reference")
)
