package bridge

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-dap"

	"github.com/iradul/vscode-phantomjs-debug/internal/cdp"
	dapconn "github.com/iradul/vscode-phantomjs-debug/internal/dap"
)

func (b *Bridge) handleRequest(ctx context.Context, msg dap.RequestMessage) {
	switch req := msg.(type) {
	case *dap.InitializeRequest:
		b.onInitialize(req)
	case *dap.LaunchRequest:
		b.onLaunch(ctx, req)
	case *dap.AttachRequest:
		b.sendError(&req.Request, dapconn.ErrCodeUnsupportedRequest, ErrAttachNotSupported)
	case *dap.SetBreakpointsRequest:
		b.onSetBreakpoints(ctx, req)
	case *dap.SetExceptionBreakpointsRequest:
		b.onSetExceptionBreakpoints(ctx, req)
	case *dap.ConfigurationDoneRequest:
		b.send(&dap.ConfigurationDoneResponse{Response: dapconn.NewResponse(&req.Request)})
	case *dap.ThreadsRequest:
		b.onThreads(req)
	case *dap.StackTraceRequest:
		b.onStackTrace(req)
	case *dap.ScopesRequest:
		b.onScopes(req)
	case *dap.VariablesRequest:
		b.onVariables(ctx, req)
	case *dap.EvaluateRequest:
		b.onEvaluate(req)
	case *dap.SourceRequest:
		b.onSource(ctx, req)
	case *dap.ContinueRequest:
		if b.controlExecution(ctx, &req.Request, cdp.MethodDebuggerResume, "") {
			resp := &dap.ContinueResponse{Response: dapconn.NewResponse(&req.Request)}
			resp.Body.AllThreadsContinued = true
			b.send(resp)
		}
	case *dap.NextRequest:
		if b.controlExecution(ctx, &req.Request, cdp.MethodDebuggerStepOver, "step") {
			b.send(&dap.NextResponse{Response: dapconn.NewResponse(&req.Request)})
		}
	case *dap.StepInRequest:
		if b.controlExecution(ctx, &req.Request, cdp.MethodDebuggerStepInto, "step") {
			b.send(&dap.StepInResponse{Response: dapconn.NewResponse(&req.Request)})
		}
	case *dap.StepOutRequest:
		if b.controlExecution(ctx, &req.Request, cdp.MethodDebuggerStepOut, "step") {
			b.send(&dap.StepOutResponse{Response: dapconn.NewResponse(&req.Request)})
		}
	case *dap.PauseRequest:
		b.onPause(ctx, req)
	case *dap.DisconnectRequest:
		b.onDisconnect(req)
	default:
		r := msg.GetRequest()
		b.sendError(r, dapconn.ErrCodeUnsupportedRequest, fmt.Errorf("request '%s' is not supported", r.Command))
	}
}

func (b *Bridge) onInitialize(req *dap.InitializeRequest) {
	resp := &dap.InitializeResponse{Response: dapconn.NewResponse(&req.Request)}
	resp.Body = dap.Capabilities{
		SupportsConfigurationDoneRequest: true,
		SupportsConditionalBreakpoints:   true,
		SupportsEvaluateForHovers:        true,
		ExceptionBreakpointFilters: []dap.ExceptionBreakpointsFilter{
			{Filter: exceptionFilterAll, Label: "All Exceptions"},
			{Filter: exceptionFilterUncaught, Label: "Uncaught Exceptions"},
		},
	}
	b.send(resp)
}

func (b *Bridge) onLaunch(ctx context.Context, req *dap.LaunchRequest) {
	if b.launched {
		b.sendError(&req.Request, dapconn.ErrCodeLaunchFailed, ErrAlreadyAttached)
		return
	}
	b.launched = true

	if launchErr := b.hooks.Launch(ctx, b, req.Arguments); launchErr != nil {
		b.log.Error(launchErr, "Launch failed")
		b.sendError(&req.Request, dapconn.ErrCodeLaunchFailed, launchErr)
		return
	}
	b.send(&dap.LaunchResponse{Response: dapconn.NewResponse(&req.Request)})
}

const (
	exceptionFilterAll      = "all"
	exceptionFilterUncaught = "uncaught"
)

func (b *Bridge) onSetExceptionBreakpoints(ctx context.Context, req *dap.SetExceptionBreakpointsRequest) {
	state := "none"
	for _, f := range req.Arguments.Filters {
		if f == exceptionFilterAll {
			state = "all"
			break
		}
		if f == exceptionFilterUncaught {
			state = "uncaught"
		}
	}
	b.pauseOnExceptions = state

	if b.target != nil {
		b.applyPauseOnExceptions(ctx)
	}
	b.send(&dap.SetExceptionBreakpointsResponse{Response: dapconn.NewResponse(&req.Request)})
}

func (b *Bridge) applyPauseOnExceptions(ctx context.Context) {
	callErr := b.call(ctx, cdp.MethodDebuggerSetPauseOnExceptions, cdp.SetPauseOnExceptionsParams{State: b.pauseOnExceptions}, nil)
	if callErr != nil {
		b.log.Error(callErr, "Could not change exception pause behavior", "State", b.pauseOnExceptions)
	}
}

func (b *Bridge) onThreads(req *dap.ThreadsRequest) {
	resp := &dap.ThreadsResponse{Response: dapconn.NewResponse(&req.Request)}
	resp.Body.Threads = []dap.Thread{{Id: threadID, Name: b.threadName}}
	b.send(resp)
}

func (b *Bridge) onStackTrace(req *dap.StackTraceRequest) {
	if b.paused == nil {
		b.sendError(&req.Request, dapconn.ErrCodeNotConnected, ErrNotPaused)
		return
	}

	callFrames := b.paused.CallFrames
	total := len(callFrames)
	start := min(max(req.Arguments.StartFrame, 0), total)
	end := total
	if req.Arguments.Levels > 0 {
		end = min(start+req.Arguments.Levels, total)
	}

	stackFrames := make([]dap.StackFrame, 0, end-start)
	for i := start; i < end; i++ {
		frame := &callFrames[i]
		name := frame.FunctionName
		if name == "" {
			name = "(anonymous function)"
		}

		source, line, column := b.clientLocation(frame.Location)
		stackFrames = append(stackFrames, dap.StackFrame{
			Id:     b.frames.create(frame),
			Name:   name,
			Source: source,
			Line:   line + 1,
			Column: column + 1,
		})
	}

	resp := &dap.StackTraceResponse{Response: dapconn.NewResponse(&req.Request)}
	resp.Body.StackFrames = stackFrames
	resp.Body.TotalFrames = total
	b.send(resp)
}

// clientLocation maps a target script location to the client-side source and 0-based position.
func (b *Bridge) clientLocation(loc cdp.Location) (*dap.Source, int, int) {
	line, column := loc.LineNumber, loc.ColumnNumber

	s, found := b.scripts.get(loc.ScriptID)
	if !found {
		return &dap.Source{Name: "<unknown>", PresentationHint: "deemphasize"}, line, column
	}

	if s.sourceMap != nil {
		if authored, origLine, origColumn, mapped := s.sourceMap.GeneratedToOriginal(line, column); mapped {
			return newFileSource(authored), origLine, origColumn
		}
	}
	if s.clientPath != "" {
		return newFileSource(s.clientPath), line, column
	}
	return &dap.Source{
		Name:             s.name(),
		SourceReference:  s.sourceRef,
		PresentationHint: "deemphasize",
	}, line, column
}

func (b *Bridge) onScopes(req *dap.ScopesRequest) {
	frame, found := b.frames.get(req.Arguments.FrameId)
	if !found {
		b.sendError(&req.Request, dapconn.ErrCodeInvalidArguments, ErrInvalidReference)
		return
	}

	scopes := make([]dap.Scope, 0, len(frame.ScopeChain))
	for _, scope := range frame.ScopeChain {
		if scope.Object.ObjectID == "" {
			continue
		}
		scopes = append(scopes, dap.Scope{
			Name:               scopeName(scope),
			VariablesReference: b.objects.create(scope.Object.ObjectID),
			Expensive:          scope.Type == "global",
		})
	}

	resp := &dap.ScopesResponse{Response: dapconn.NewResponse(&req.Request)}
	resp.Body.Scopes = scopes
	b.send(resp)
}

func scopeName(scope cdp.Scope) string {
	if scope.Name != "" {
		return scope.Name
	}
	if scope.Type == "" {
		return "Scope"
	}
	return strings.ToUpper(scope.Type[:1]) + scope.Type[1:]
}

func (b *Bridge) onVariables(ctx context.Context, req *dap.VariablesRequest) {
	objectID, found := b.objects.get(req.Arguments.VariablesReference)
	if !found {
		b.sendError(&req.Request, dapconn.ErrCodeInvalidArguments, ErrInvalidReference)
		return
	}

	var props cdp.GetPropertiesResult
	callErr := b.call(ctx, cdp.MethodRuntimeGetProperties, cdp.GetPropertiesParams{ObjectID: objectID, OwnProperties: true}, &props)
	if callErr != nil {
		b.sendError(&req.Request, dapconn.ErrCodeTargetError, callErr)
		return
	}

	variables := make([]dap.Variable, 0, len(props.Result))
	for _, prop := range props.Result {
		v := dap.Variable{Name: prop.Name}
		switch {
		case prop.Value != nil:
			v.Value = renderValue(*prop.Value, true)
			v.Type = prop.Value.Type
			if hasChildren(*prop.Value) {
				v.VariablesReference = b.objects.create(prop.Value.ObjectID)
			}
		case prop.Get != nil || prop.Set != nil:
			v.Value = "(...)"
		default:
			v.Value = "undefined"
		}
		variables = append(variables, v)
	}
	sort.SliceStable(variables, func(i, j int) bool {
		return variables[i].Name < variables[j].Name
	})

	resp := &dap.VariablesResponse{Response: dapconn.NewResponse(&req.Request)}
	resp.Body.Variables = variables
	b.send(resp)
}

// onEvaluate does not block the event loop: the expression may run target code that hits a breakpoint,
// and the pause notification must be processed before the evaluation can complete.
func (b *Bridge) onEvaluate(req *dap.EvaluateRequest) {
	if b.target == nil {
		b.sendError(&req.Request, dapconn.ErrCodeNotConnected, ErrNotAttached)
		return
	}

	var replyCh <-chan cdp.Reply
	if req.Arguments.FrameId != 0 {
		frame, found := b.frames.get(req.Arguments.FrameId)
		if !found {
			b.sendError(&req.Request, dapconn.ErrCodeInvalidArguments, ErrInvalidReference)
			return
		}
		replyCh = b.target.Send(cdp.MethodDebuggerEvaluateOnCallFrame, cdp.EvaluateOnCallFrameParams{
			CallFrameID: frame.CallFrameID,
			Expression:  req.Arguments.Expression,
			ObjectGroup: evaluateObjectGroup,
		})
	} else {
		replyCh = b.target.Send(cdp.MethodRuntimeEvaluate, cdp.EvaluateParams{
			Expression:  req.Arguments.Expression,
			ObjectGroup: evaluateObjectGroup,
		})
	}

	go func() {
		reply := <-replyCh
		b.post(func() {
			b.completeEvaluate(req, reply)
		})
	}()
}

func (b *Bridge) completeEvaluate(req *dap.EvaluateRequest, reply cdp.Reply) {
	var res cdp.EvaluateResult
	if decodeErr := cdp.DecodeReply(reply, &res); decodeErr != nil {
		b.sendError(&req.Request, dapconn.ErrCodeTargetError, decodeErr)
		return
	}
	if res.WasThrown {
		b.sendError(&req.Request, dapconn.ErrCodeTargetError, fmt.Errorf("%s", renderValue(res.Result, false)))
		return
	}

	resp := &dap.EvaluateResponse{Response: dapconn.NewResponse(&req.Request)}
	resp.Body.Result = renderValue(res.Result, true)
	resp.Body.Type = res.Result.Type
	if hasChildren(res.Result) {
		resp.Body.VariablesReference = b.objects.create(res.Result.ObjectID)
	}
	b.send(resp)
}

func (b *Bridge) onSource(ctx context.Context, req *dap.SourceRequest) {
	ref := req.Arguments.SourceReference
	if req.Arguments.Source != nil && req.Arguments.Source.SourceReference != 0 {
		ref = req.Arguments.Source.SourceReference
	}

	s, found := b.scripts.bySourceRef(ref)
	if !found {
		b.sendError(&req.Request, dapconn.ErrCodeInvalidArguments, ErrInvalidReference)
		return
	}

	var src cdp.GetScriptSourceResult
	if callErr := b.call(ctx, cdp.MethodDebuggerGetScriptSource, cdp.GetScriptSourceParams{ScriptID: s.id}, &src); callErr != nil {
		b.sendError(&req.Request, dapconn.ErrCodeTargetError, callErr)
		return
	}

	resp := &dap.SourceResponse{Response: dapconn.NewResponse(&req.Request)}
	resp.Body.Content = src.ScriptSource
	resp.Body.MimeType = "text/javascript"
	b.send(resp)
}

// controlExecution resumes the target with given method. Reports an error to the client and returns false on failure.
func (b *Bridge) controlExecution(ctx context.Context, req *dap.Request, method string, stopReason string) bool {
	if b.target == nil {
		b.sendError(req, dapconn.ErrCodeNotConnected, ErrNotAttached)
		return false
	}
	if b.paused == nil {
		b.sendError(req, dapconn.ErrCodeNotConnected, ErrNotPaused)
		return false
	}

	b.expectedStopReason = stopReason
	b.resumeRequested = true
	if callErr := b.call(ctx, method, nil, nil); callErr != nil {
		b.expectedStopReason = ""
		b.resumeRequested = false
		b.sendError(req, targetErrorCode(callErr), callErr)
		return false
	}
	return true
}

func (b *Bridge) onPause(ctx context.Context, req *dap.PauseRequest) {
	if b.target == nil {
		b.sendError(&req.Request, dapconn.ErrCodeNotConnected, ErrNotAttached)
		return
	}

	b.expectedStopReason = "pause"
	if callErr := b.call(ctx, cdp.MethodDebuggerPause, nil, nil); callErr != nil {
		b.expectedStopReason = ""
		b.sendError(&req.Request, targetErrorCode(callErr), callErr)
		return
	}
	b.send(&dap.PauseResponse{Response: dapconn.NewResponse(&req.Request)})
}

func (b *Bridge) onDisconnect(req *dap.DisconnectRequest) {
	b.finished = true
	b.closeSession()
	b.send(&dap.DisconnectResponse{Response: dapconn.NewResponse(&req.Request)})
}

func targetErrorCode(err error) int {
	if isTimeout(err) || cdp.IsProtocolError(err) {
		return dapconn.ErrCodeTargetError
	}
	return dapconn.ErrCodeNotConnected
}

func newFileSource(p string) *dap.Source {
	return &dap.Source{Name: baseName(p), Path: p}
}
