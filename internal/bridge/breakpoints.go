/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package bridge

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/google/go-dap"

	"github.com/iradul/vscode-phantomjs-debug/internal/cdp"
	dapconn "github.com/iradul/vscode-phantomjs-debug/internal/dap"
	"github.com/iradul/vscode-phantomjs-debug/pkg/osutil"
)

const (
	msgPendingBreakpoint = "Breakpoint set but not yet bound"
	msgNoCode            = "No code was generated for this location"
)

// breakpointInfo is a client breakpoint. Positions are 0-based and refer to the file the client set the breakpoint in.
type breakpointInfo struct {
	id        int
	line      int
	column    int
	condition string

	verified bool
	message  string

	// Breakpoint ID assigned by the target, empty if the breakpoint is not set in the target.
	targetID string
}

// breakpointSet holds all client breakpoints for one file.
type breakpointSet struct {
	path        string
	breakpoints []*breakpointInfo

	// Whether the breakpoints have been sent to the target.
	bound bool
}

// breakpointTable tracks client breakpoints across files. Owned by the event loop.
type breakpointTable struct {
	nextID int
	byPath map[string]*breakpointSet
}

func newBreakpointTable() *breakpointTable {
	return &breakpointTable{
		nextID: 1,
		byPath: map[string]*breakpointSet{},
	}
}

// replace installs a new set of breakpoints for a file and returns the set it replaced (if any).
// Breakpoints at unchanged positions keep their IDs.
func (t *breakpointTable) replace(path string, requested []BreakpointLocation) (current *breakpointSet, previous *breakpointSet) {
	key := filepath.Clean(path)
	previous = t.byPath[key]

	oldIDs := map[[2]int]int{}
	if previous != nil {
		for _, bp := range previous.breakpoints {
			oldIDs[[2]int{bp.line, bp.column}] = bp.id
		}
	}

	current = &breakpointSet{path: path}
	for _, loc := range requested {
		id, found := oldIDs[[2]int{loc.Line, loc.Column}]
		if !found {
			id = t.nextID
			t.nextID++
		}
		current.breakpoints = append(current.breakpoints, &breakpointInfo{
			id:        id,
			line:      loc.Line,
			column:    loc.Column,
			condition: loc.Condition,
			message:   msgPendingBreakpoint,
		})
	}

	if len(current.breakpoints) == 0 {
		delete(t.byPath, key)
	} else {
		t.byPath[key] = current
	}
	return current, previous
}

func (t *breakpointTable) unbound() []*breakpointSet {
	var sets []*breakpointSet
	for _, set := range t.byPath {
		if !set.bound {
			sets = append(sets, set)
		}
	}
	return sets
}

// clientIDs translates target breakpoint IDs to client breakpoint IDs.
func (t *breakpointTable) clientIDs(targetIDs []string) []int {
	var ids []int
	for _, set := range t.byPath {
		for _, bp := range set.breakpoints {
			for _, targetID := range targetIDs {
				if bp.targetID != "" && bp.targetID == targetID {
					ids = append(ids, bp.id)
				}
			}
		}
	}
	return ids
}

func (set *breakpointSet) toClient() []dap.Breakpoint {
	result := make([]dap.Breakpoint, len(set.breakpoints))
	for i, bp := range set.breakpoints {
		result[i] = set.clientBreakpoint(bp)
	}
	return result
}

func (set *breakpointSet) clientBreakpoint(bp *breakpointInfo) dap.Breakpoint {
	cbp := dap.Breakpoint{
		Id:       bp.id,
		Verified: bp.verified,
		Source:   newFileSource(set.path),
		Line:     bp.line + 1,
		Column:   bp.column + 1,
	}
	if !bp.verified {
		cbp.Message = bp.message
	}
	return cbp
}

func (b *Bridge) onSetBreakpoints(ctx context.Context, req *dap.SetBreakpointsRequest) {
	path := req.Arguments.Source.Path
	if path == "" {
		b.sendError(&req.Request, dapconn.ErrCodeInvalidArguments, errors.New("breakpoints can only be set in local files"))
		return
	}

	var requested []BreakpointLocation
	if len(req.Arguments.Breakpoints) > 0 {
		for _, sbp := range req.Arguments.Breakpoints {
			requested = append(requested, BreakpointLocation{
				Line:      sbp.Line - 1,
				Column:    max(sbp.Column-1, 0),
				Condition: sbp.Condition,
			})
		}
	} else {
		for _, line := range req.Arguments.Lines {
			requested = append(requested, BreakpointLocation{Line: line - 1})
		}
	}

	current, previous := b.breakpoints.replace(path, requested)
	if previous != nil {
		b.removeTargetBreakpoints(ctx, previous)
	}
	if b.target != nil {
		b.bindBreakpoints(ctx, current)
	}

	resp := &dap.SetBreakpointsResponse{Response: dapconn.NewResponse(&req.Request)}
	resp.Body.Breakpoints = current.toClient()
	b.send(resp)
}

func (b *Bridge) removeTargetBreakpoints(ctx context.Context, set *breakpointSet) {
	if b.target == nil {
		return
	}
	for _, bp := range set.breakpoints {
		if bp.targetID == "" {
			continue
		}
		removeErr := b.call(ctx, cdp.MethodDebuggerRemoveBreakpoint, cdp.RemoveBreakpointParams{BreakpointID: bp.targetID}, nil)
		if removeErr != nil {
			b.log.V(1).Info("Could not remove breakpoint", "BreakpointID", bp.targetID, "Error", removeErr.Error())
		}
	}
}

// bindBreakpoints sends a breakpoint set to the target, if a script for the file has been parsed.
// Returns false if the set remains pending.
func (b *Bridge) bindBreakpoints(ctx context.Context, set *breakpointSet) bool {
	s, authored := b.scripts.forClientPath(set.path)
	if s == nil {
		return false
	}
	set.bound = true

	req := &BreakpointRequest{URL: s.url, ClientPath: s.clientPath}
	if authored {
		req.AuthoredPath = set.path
	}

	var sent []*breakpointInfo
	for _, bp := range set.breakpoints {
		line, column := bp.line, bp.column
		if authored {
			genLine, genColumn, found := s.sourceMap.OriginalToGenerated(set.path, line, column)
			if !found {
				bp.verified = false
				bp.message = msgNoCode
				continue
			}
			line, column = genLine, genColumn
		}
		req.Breakpoints = append(req.Breakpoints, BreakpointLocation{Line: line, Column: column, Condition: bp.condition})
		sent = append(sent, bp)
	}
	if len(sent) == 0 {
		return true
	}

	results, setErr := b.hooks.SetBreakpoints(ctx, req, b.setTargetBreakpoints)
	if setErr != nil {
		b.log.Error(setErr, "Could not set breakpoints", "Path", set.path)
		for _, bp := range sent {
			bp.verified = false
			bp.message = setErr.Error()
		}
		return true
	}

	for i, bp := range sent {
		if i >= len(results) {
			bp.verified = false
			bp.message = msgPendingBreakpoint
			continue
		}
		res := results[i]
		bp.targetID = res.BreakpointID
		bp.verified = res.Verified
		bp.message = res.Message
		if !res.Verified {
			continue
		}

		bp.line, bp.column = res.Line, res.Column
		if authored {
			source, origLine, origColumn, found := s.sourceMap.GeneratedToOriginal(res.Line, res.Column)
			if found && osutil.SamePath(source, set.path) {
				bp.line, bp.column = origLine, origColumn
			}
		}
	}
	return true
}

// setTargetBreakpoints is the default breakpoint handling: one setBreakpointByUrl call per breakpoint.
func (b *Bridge) setTargetBreakpoints(ctx context.Context, req *BreakpointRequest) ([]BreakpointResult, error) {
	results := make([]BreakpointResult, 0, len(req.Breakpoints))

	for _, bp := range req.Breakpoints {
		var res cdp.SetBreakpointByURLResult
		callErr := b.call(ctx, cdp.MethodDebuggerSetBreakpointByURL, cdp.SetBreakpointByURLParams{
			LineNumber:   bp.Line,
			URL:          req.URL,
			ColumnNumber: bp.Column,
			Condition:    bp.Condition,
		}, &res)
		if callErr != nil {
			if cdp.IsProtocolError(callErr) {
				results = append(results, BreakpointResult{Line: bp.Line, Column: bp.Column, Message: callErr.Error()})
				continue
			}
			return nil, callErr
		}

		result := BreakpointResult{BreakpointID: res.BreakpointID, Line: bp.Line, Column: bp.Column}
		if len(res.Locations) > 0 {
			result.Verified = true
			result.Line = res.Locations[0].LineNumber
			result.Column = res.Locations[0].ColumnNumber
		} else {
			result.Message = msgPendingBreakpoint
		}
		results = append(results, result)
	}

	return results, nil
}

// bindPendingBreakpoints binds breakpoints that were waiting for given script,
// and notifies the client about the outcome.
func (b *Bridge) bindPendingBreakpoints(s *script) {
	for _, set := range b.breakpoints.unbound() {
		candidate, _ := b.scripts.forClientPath(set.path)
		if candidate != s {
			continue
		}

		if !b.bindBreakpoints(b.lifetimeCtx, set) {
			continue
		}
		for _, bp := range set.breakpoints {
			ev := &dap.BreakpointEvent{Event: dapconn.NewEvent("breakpoint")}
			ev.Body.Reason = "changed"
			ev.Body.Breakpoint = set.clientBreakpoint(bp)
			b.send(ev)
		}
	}
}
