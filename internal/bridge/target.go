package bridge

import (
	"context"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-logr/logr"

	"github.com/iradul/vscode-phantomjs-debug/internal/cdp"
)

// TargetConn is a connection to the target debugger.
type TargetConn interface {
	Send(method string, params any) <-chan cdp.Reply
	Call(ctx context.Context, method string, params any, result any) error
	Events() <-chan cdp.Event
	Done() <-chan struct{}
	Close() error
}

var _ TargetConn = (*cdp.Conn)(nil)

// Dialer establishes the target connection.
type Dialer func(ctx context.Context, opts AttachOptions, log logr.Logger) (TargetConn, error)

// DialTarget waits for the target debugger endpoint to become available and connects to it.
func DialTarget(ctx context.Context, opts AttachOptions, log logr.Logger) (TargetConn, error) {
	wsURL, waitErr := cdp.WaitForEndpoint(ctx, cdp.EndpointOptions{
		Address:  opts.Address,
		Port:     opts.Port,
		PagePath: opts.PagePath,
		Timeout:  opts.Timeout,
	}, log)
	if waitErr != nil {
		return nil, waitErr
	}

	conn, dialErr := cdp.Dial(ctx, wsURL, log)
	if dialErr != nil {
		return nil, dialErr
	}
	return conn, nil
}

func fileURLToPath(s string) (string, bool) {
	if !strings.HasPrefix(s, "file://") {
		if filepath.IsAbs(s) {
			return s, true
		}
		return "", false
	}

	u, parseErr := url.Parse(s)
	if parseErr != nil || u.Path == "" {
		return "", false
	}
	p := u.Path
	if runtime.GOOS == "windows" {
		// file:///c:/dir/file.js
		p = strings.TrimPrefix(p, "/")
	}
	return filepath.FromSlash(p), true
}
