package bridge

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/google/go-dap"
	"github.com/tidwall/gjson"

	"github.com/iradul/vscode-phantomjs-debug/internal/cdp"
	dapconn "github.com/iradul/vscode-phantomjs-debug/internal/dap"
	"github.com/iradul/vscode-phantomjs-debug/internal/sourcemap"
)

func (b *Bridge) handleTargetEvent(ev cdp.Event) {
	switch ev.Method {
	case cdp.EventDebuggerScriptParsed:
		var params cdp.ScriptParsedEvent
		if b.decodeEvent(ev, &params) {
			b.hooks.ScriptParsed(&params, b.onScriptParsed)
		}

	case cdp.EventDebuggerPaused:
		var params cdp.PausedEvent
		if b.decodeEvent(ev, &params) {
			b.hooks.Paused(&params, b.onPaused)
		}

	case cdp.EventDebuggerResumed:
		b.onResumed()

	case cdp.EventRuntimeConsoleAPICalled:
		var params cdp.ConsoleAPICalledEvent
		if b.decodeEvent(ev, &params) {
			b.ConsoleAPICalled(&params)
		}

	case cdp.EventRuntimeExceptionThrown:
		var params cdp.ExceptionThrownEvent
		if b.decodeEvent(ev, &params) {
			b.onExceptionThrown(&params)
		}

	case cdp.EventInspectorDetached:
		b.log.V(1).Info("Target debugger detached", "Reason", gjson.GetBytes(ev.Params, "reason").String())
		b.clearPauseState()
		b.terminate("")
	}

	for _, handler := range b.subscribers[ev.Method] {
		handler(ev.Params)
	}
}

func (b *Bridge) decodeEvent(ev cdp.Event, params any) bool {
	if unmarshalErr := json.Unmarshal(ev.Params, params); unmarshalErr != nil {
		b.log.Error(unmarshalErr, "Could not decode target notification", "Method", ev.Method)
		return false
	}
	return true
}

// onScriptParsed is the default handling of a script-parsed notification.
func (b *Bridge) onScriptParsed(ev *cdp.ScriptParsedEvent) {
	s := &script{id: ev.ScriptID, url: ev.URL}
	if ev.URL != "" {
		if p, found := b.hooks.TargetURLToClientPath(ev.URL); found {
			s.clientPath = p
		}
	}

	if s.clientPath != "" {
		mapURL := ev.SourceMapURL
		if mapURL == "" {
			mapURL, _ = sourcemap.FindURL(s.clientPath)
		}
		if mapURL != "" {
			sm, loadErr := sourcemap.Load(s.clientPath, mapURL)
			if loadErr != nil {
				b.log.V(1).Info("Could not load source map", "Script", s.clientPath, "Error", loadErr.Error())
			} else {
				s.sourceMap = sm
			}
		}
	}

	b.scripts.add(s)
	b.log.V(1).Info("Script parsed", "ScriptID", s.id, "URL", s.url, "ClientPath", s.clientPath, "HasSourceMap", s.sourceMap != nil)

	b.bindPendingBreakpoints(s)
}

// onPaused is the default handling of a pause notification.
func (b *Bridge) onPaused(ev *cdp.PausedEvent) {
	b.clearPauseState()
	b.paused = ev

	reason := b.expectedStopReason
	b.expectedStopReason = ""
	b.resumeRequested = false

	stopped := &dap.StoppedEvent{Event: dapconn.NewEvent("stopped")}
	stopped.Body.ThreadId = threadID
	stopped.Body.AllThreadsStopped = true

	switch {
	case ev.Reason == "exception":
		reason = "exception"
		stopped.Body.Text = gjson.GetBytes(ev.Data, "description").String()
	case len(ev.HitBreakpoints) > 0:
		reason = "breakpoint"
		stopped.Body.HitBreakpointIds = b.breakpoints.clientIDs(ev.HitBreakpoints)
	case reason == "":
		if ev.Reason == "debugCommand" || ev.Reason == "other" {
			reason = "breakpoint"
		} else {
			reason = "pause"
		}
	}
	stopped.Body.Reason = reason

	b.send(stopped)
}

func (b *Bridge) onResumed() {
	wasRequested := b.resumeRequested
	b.resumeRequested = false
	b.clearPauseState()

	if !wasRequested {
		continued := &dap.ContinuedEvent{Event: dapconn.NewEvent("continued")}
		continued.Body.ThreadId = threadID
		continued.Body.AllThreadsContinued = true
		b.send(continued)
	}
}

func (b *Bridge) clearPauseState() {
	b.paused = nil
	b.frames.reset()
	b.objects.reset()
}

// ConsoleAPICalled reports a target console message to the client as output.
func (b *Bridge) ConsoleAPICalled(ev *cdp.ConsoleAPICalledEvent) {
	category := "stdout"
	switch ev.Type {
	case "error", "assert", "warning":
		category = "stderr"
	}

	var text string
	if len(ev.Args) > 0 {
		parts := make([]string, len(ev.Args))
		for i, arg := range ev.Args {
			parts[i] = renderValue(arg, false)
		}
		text = strings.Join(parts, " ")
	} else {
		text = ev.Text
	}

	b.send(dapconn.NewOutputEvent(category, text+"\n"))
}

func (b *Bridge) onExceptionThrown(ev *cdp.ExceptionThrownEvent) {
	details := ev.ExceptionDetails
	text := details.Text
	if details.Exception != nil {
		if description := renderValue(*details.Exception, false); description != "" {
			text = description
		}
	}
	b.send(dapconn.NewOutputEvent("stderr", text+"\n"))
}

// renderValue formats a target value for display.
func renderValue(obj cdp.RemoteObject, quoteStrings bool) string {
	switch obj.Type {
	case "undefined":
		return "undefined"

	case "string":
		if quoteStrings && len(obj.Value) > 0 {
			return string(obj.Value)
		}
		if len(obj.Value) > 0 {
			return gjson.ParseBytes(obj.Value).String()
		}
		return obj.Description

	case "object":
		if obj.Subtype == "null" {
			return "null"
		}
		if obj.Description != "" {
			return obj.Description
		}
		if obj.ClassName != "" {
			return obj.ClassName
		}
		return "Object"

	case "function":
		if obj.Description != "" {
			return obj.Description
		}
		return "function"
	}

	// Numbers and booleans; values that do not serialize to JSON (NaN, Infinity) only have a description.
	if len(obj.Value) > 0 {
		return gjson.ParseBytes(obj.Value).Raw
	}
	return obj.Description
}

func hasChildren(obj cdp.RemoteObject) bool {
	return obj.ObjectID != "" && (obj.Type == "object" || obj.Type == "function") && obj.Subtype != "null"
}

func baseName(p string) string {
	return filepath.Base(p)
}
