/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package cdp

import (
	"encoding/json"
)

// Methods and events of the Chrome DevTools Protocol used by the adapter.
// Only the subset that the PhantomJS remote debugger implements is listed.
const (
	MethodDebuggerEnable               = "Debugger.enable"
	MethodDebuggerSetBreakpointByURL   = "Debugger.setBreakpointByUrl"
	MethodDebuggerRemoveBreakpoint     = "Debugger.removeBreakpoint"
	MethodDebuggerResume               = "Debugger.resume"
	MethodDebuggerPause                = "Debugger.pause"
	MethodDebuggerStepOver             = "Debugger.stepOver"
	MethodDebuggerStepInto             = "Debugger.stepInto"
	MethodDebuggerStepOut              = "Debugger.stepOut"
	MethodDebuggerEvaluateOnCallFrame  = "Debugger.evaluateOnCallFrame"
	MethodDebuggerGetScriptSource      = "Debugger.getScriptSource"
	MethodDebuggerSetPauseOnExceptions = "Debugger.setPauseOnExceptions"
	MethodRuntimeEnable                = "Runtime.enable"
	MethodRuntimeEvaluate              = "Runtime.evaluate"
	MethodRuntimeGetProperties         = "Runtime.getProperties"
	MethodConsoleEnable                = "Console.enable"

	EventDebuggerScriptParsed             = "Debugger.scriptParsed"
	EventDebuggerPaused                   = "Debugger.paused"
	EventDebuggerResumed                  = "Debugger.resumed"
	EventRuntimeConsoleAPICalled          = "Runtime.consoleAPICalled"
	EventRuntimeExceptionThrown           = "Runtime.exceptionThrown"
	EventConsoleMessageAdded              = "Console.messageAdded"
	EventConsoleMessageRepeatCountUpdated = "Console.messageRepeatCountUpdated"
	EventInspectorDetached                = "Inspector.detached"
)

// Location in a script. Line and column numbers are 0-based.
type Location struct {
	ScriptID     string `json:"scriptId"`
	LineNumber   int    `json:"lineNumber"`
	ColumnNumber int    `json:"columnNumber,omitempty"`
}

type RemoteObject struct {
	Type        string          `json:"type"`
	Subtype     string          `json:"subtype,omitempty"`
	ClassName   string          `json:"className,omitempty"`
	Value       json.RawMessage `json:"value,omitempty"`
	Description string          `json:"description,omitempty"`
	ObjectID    string          `json:"objectId,omitempty"`
}

type Scope struct {
	Type   string       `json:"type"`
	Object RemoteObject `json:"object"`
	Name   string       `json:"name,omitempty"`
}

type CallFrame struct {
	CallFrameID  string        `json:"callFrameId"`
	FunctionName string        `json:"functionName"`
	Location     Location      `json:"location"`
	URL          string        `json:"url,omitempty"`
	ScopeChain   []Scope       `json:"scopeChain"`
	This         *RemoteObject `json:"this,omitempty"`
}

type PropertyDescriptor struct {
	Name         string        `json:"name"`
	Value        *RemoteObject `json:"value,omitempty"`
	Get          *RemoteObject `json:"get,omitempty"`
	Set          *RemoteObject `json:"set,omitempty"`
	Enumerable   bool          `json:"enumerable"`
	IsOwn        bool          `json:"isOwn,omitempty"`
	WasThrown    bool          `json:"wasThrown,omitempty"`
	Configurable bool          `json:"configurable"`
}

type ExceptionDetails struct {
	Text         string        `json:"text"`
	URL          string        `json:"url,omitempty"`
	LineNumber   int           `json:"lineNumber,omitempty"`
	ColumnNumber int           `json:"columnNumber,omitempty"`
	Exception    *RemoteObject `json:"exception,omitempty"`
}

// Events

type ScriptParsedEvent struct {
	ScriptID     string `json:"scriptId"`
	URL          string `json:"url"`
	StartLine    int    `json:"startLine"`
	StartColumn  int    `json:"startColumn"`
	EndLine      int    `json:"endLine"`
	EndColumn    int    `json:"endColumn"`
	SourceMapURL string `json:"sourceMapURL,omitempty"`
}

type PausedEvent struct {
	CallFrames     []CallFrame     `json:"callFrames"`
	Reason         string          `json:"reason"`
	Data           json.RawMessage `json:"data,omitempty"`
	HitBreakpoints []string        `json:"hitBreakpoints,omitempty"`
}

type ConsoleAPICalledEvent struct {
	Type  string         `json:"type"`
	Level string         `json:"level,omitempty"`
	Text  string         `json:"text,omitempty"`
	Args  []RemoteObject `json:"args"`
	URL   string         `json:"url,omitempty"`
	Line  int            `json:"line,omitempty"`
}

type ExceptionThrownEvent struct {
	ExceptionDetails ExceptionDetails `json:"exceptionDetails"`
}

// Method parameters and results

type SetBreakpointByURLParams struct {
	LineNumber   int    `json:"lineNumber"`
	URL          string `json:"url"`
	ColumnNumber int    `json:"columnNumber"`
	Condition    string `json:"condition,omitempty"`
}

type SetBreakpointByURLResult struct {
	BreakpointID string     `json:"breakpointId"`
	Locations    []Location `json:"locations"`
}

type RemoveBreakpointParams struct {
	BreakpointID string `json:"breakpointId"`
}

type EvaluateParams struct {
	Expression    string `json:"expression"`
	ObjectGroup   string `json:"objectGroup,omitempty"`
	ReturnByValue bool   `json:"returnByValue,omitempty"`
}

type EvaluateOnCallFrameParams struct {
	CallFrameID   string `json:"callFrameId"`
	Expression    string `json:"expression"`
	ObjectGroup   string `json:"objectGroup,omitempty"`
	ReturnByValue bool   `json:"returnByValue,omitempty"`
}

type EvaluateResult struct {
	Result           RemoteObject      `json:"result"`
	WasThrown        bool              `json:"wasThrown,omitempty"`
	ExceptionDetails *ExceptionDetails `json:"exceptionDetails,omitempty"`
}

type GetPropertiesParams struct {
	ObjectID      string `json:"objectId"`
	OwnProperties bool   `json:"ownProperties"`
}

type GetPropertiesResult struct {
	Result []PropertyDescriptor `json:"result"`
}

type GetScriptSourceParams struct {
	ScriptID string `json:"scriptId"`
}

type GetScriptSourceResult struct {
	ScriptSource string `json:"scriptSource"`
}

type SetPauseOnExceptionsParams struct {
	State string `json:"state"` // "none", "uncaught" or "all"
}
