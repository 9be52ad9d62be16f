package commands

import (
	"context"
	"errors"
	"os"

	"github.com/iradul/vscode-phantomjs-debug/pkg/logger"
	"github.com/iradul/vscode-phantomjs-debug/pkg/osutil"
)

// ErrorExit logs the error, writes it to stderr and exits the process with given code.
func ErrorExit(log *logger.Logger, err error, code int) {
	log.Error(err, "Command failed")
	log.Flush()
	_, _ = os.Stderr.Write(osutil.WithNewline([]byte(err.Error())))
	os.Exit(code)
}

// Returns nil if the error is a consequence of the context being done, otherwise the original error.
func filterContextError(err error, ctx context.Context) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return nil
	}
	return err
}
