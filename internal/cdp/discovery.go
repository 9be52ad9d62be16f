/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package cdp

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-logr/logr"

	"github.com/iradul/vscode-phantomjs-debug/pkg/resiliency"
)

const (
	DefaultPagePath   = "/devtools/page/1"
	probeAttemptLimit = 2 * time.Second
)

// EndpointOptions describe where the target debugger listens.
type EndpointOptions struct {
	Address  string
	Port     int
	PagePath string
	Timeout  time.Duration
}

// WaitForEndpoint waits until the target debugger answers HTTP requests on given address and port,
// then returns the WebSocket URL of the debugged page.
// PhantomJS only starts listening some time after the process is spawned, and offers no other readiness signal.
func WaitForEndpoint(ctx context.Context, opts EndpointOptions, log logr.Logger) (string, error) {
	hostPort := net.JoinHostPort(opts.Address, strconv.Itoa(opts.Port))
	probeURL := "http://" + hostPort
	pagePath := opts.PagePath
	if pagePath == "" {
		pagePath = DefaultPagePath
	}

	waitCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	client := &http.Client{Timeout: probeAttemptLimit}
	attempt := 0

	_, err := resiliency.RetryGet(waitCtx, resiliency.ShortExponentialBackoff(opts.Timeout), func() (struct{}, error) {
		attempt++
		req, reqErr := http.NewRequestWithContext(waitCtx, http.MethodGet, probeURL, nil)
		if reqErr != nil {
			return struct{}{}, resiliency.Permanent(reqErr)
		}

		resp, getErr := client.Do(req)
		if getErr != nil {
			log.V(1).Info("Target debugger endpoint not ready yet", "url", probeURL, "attempt", attempt)
			return struct{}{}, getErr
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		return struct{}{}, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w at %s: %w", ErrEndpointUnavailable, probeURL, err)
	}

	return "ws://" + hostPort + pagePath, nil
}
