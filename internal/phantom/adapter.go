/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package phantom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/davidwartell/go-onecontext/onecontext"
	"github.com/go-logr/logr"

	"github.com/iradul/vscode-phantomjs-debug/internal/bridge"
	"github.com/iradul/vscode-phantomjs-debug/internal/cdp"
	"github.com/iradul/vscode-phantomjs-debug/internal/config"
	"github.com/iradul/vscode-phantomjs-debug/pkg/process"
)

type Config struct {
	Settings config.Settings

	// Starts and stops the PhantomJS process. Required.
	Executor process.Executor

	// Defaults to OSFileProbe.
	Probe FileProbe

	// Delay between the initial script being parsed and the script being run. Defaults to DefaultTriggerDelay.
	TriggerDelay time.Duration

	Logger logr.Logger
}

// DebugAdapter plugs PhantomJS specifics into the debug bridge. It launches PhantomJS,
// corrects positions in scripts that PhantomJS wraps in a function, resolves phantomjs:// URLs
// to local files, and starts the initial script once breakpoints had a chance to be set.
//
// A DebugAdapter serves a single debug session.
type DebugAdapter struct {
	settings     config.Settings
	executor     process.Executor
	probe        FileProbe
	triggerDelay time.Duration
	log          logr.Logger

	lifetimeCtx context.Context
	cancel      context.CancelFunc

	registry *ScriptRegistry
	console  *consoleTranslator

	// Set by Launch.
	session    bridge.Session
	initialURL string
	resolver   *URLResolver
	trigger    *TriggerController
	pid        process.Pid_t
}

var _ bridge.Hooks = (*DebugAdapter)(nil)

func NewDebugAdapter(cfg Config) *DebugAdapter {
	log := cfg.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	probe := cfg.Probe
	if probe == nil {
		probe = OSFileProbe{}
	}

	lifetimeCtx, cancel := context.WithCancel(context.Background())

	return &DebugAdapter{
		settings:     cfg.Settings,
		executor:     cfg.Executor,
		probe:        probe,
		triggerDelay: cfg.TriggerDelay,
		log:          log.WithName("phantomjs"),
		lifetimeCtx:  lifetimeCtx,
		cancel:       cancel,
		registry:     NewScriptRegistry(),
		console:      newConsoleTranslator(),
		pid:          process.UnknownPID,
	}
}

func (a *DebugAdapter) Launch(ctx context.Context, s bridge.Session, raw json.RawMessage) error {
	if a.executor == nil {
		return errors.New("no process executor configured")
	}

	args, argsErr := ParseLaunchArgs(raw, a.settings)
	if argsErr != nil {
		return argsErr
	}

	a.session = s
	a.initialURL = InitialScriptURL(args.File)
	a.resolver = NewURLResolver(args.WebRoot, a.probe, a.log.WithName("resolver"))
	a.trigger = NewTriggerController(a.initialURL, a.triggerDelay, a.log)

	// Stop waiting for the debugger endpoint if PhantomJS goes away or the adapter is closed in the meantime.
	sessionCtx, cancelSession := onecontext.Merge(ctx, a.lifetimeCtx)
	defer cancelSession()
	attachCtx, cancelAttach := context.WithCancel(sessionCtx)
	defer cancelAttach()

	exitHandler := process.ProcessExitHandlerFunc(func(pid process.Pid_t, exitCode int32, err error) {
		a.log.V(1).Info("PhantomJS process exited", "PID", pid, "ExitCode", exitCode)
		cancelAttach()
		s.Terminate(exitReason(exitCode, err))
	})

	cmd := args.Command()
	a.log.Info("Starting PhantomJS", "Executable", cmd.Path, "Args", cmd.Args[1:])
	pid, _, startErr := a.executor.StartProcess(a.lifetimeCtx, cmd, exitHandler)
	if startErr != nil {
		return fmt.Errorf("could not start PhantomJS: %w", startErr)
	}
	a.pid = pid

	attachErr := s.Attach(attachCtx, bridge.AttachOptions{
		Address:  args.Address,
		Port:     args.Port,
		PagePath: a.settings.PagePath,
		Timeout:  a.settings.ConnectTimeout,
	})
	if attachErr != nil {
		a.stopProcess()
		return fmt.Errorf("could not connect to PhantomJS on %s:%d: %w", args.Address, args.Port, attachErr)
	}

	return nil
}

func (a *DebugAdapter) ConnectionStarted(ctx context.Context, s bridge.Session) error {
	s.Subscribe(cdp.EventConsoleMessageAdded, func(params json.RawMessage) {
		ev, err := a.console.messageAdded(params)
		if err != nil {
			a.log.V(1).Info("Ignoring console message", "Error", err.Error())
			return
		}
		s.ConsoleAPICalled(ev)
	})
	s.Subscribe(cdp.EventConsoleMessageRepeatCountUpdated, func(_ json.RawMessage) {
		if ev, found := a.console.repeated(); found {
			s.ConsoleAPICalled(ev)
		}
	})

	if enableErr := s.Call(ctx, cdp.MethodConsoleEnable, nil, nil); enableErr != nil {
		a.log.Error(enableErr, "Could not enable console messages")
	}
	return nil
}

func (a *DebugAdapter) SetBreakpoints(ctx context.Context, req *bridge.BreakpointRequest, next bridge.SetBreakpointsFunc) ([]bridge.BreakpointResult, error) {
	isWrapped := a.registry.IsWrappedByURL(req.URL)
	sourcePath := req.AuthoredPath
	if sourcePath == "" {
		sourcePath = req.ClientPath
	}

	targetReq := *req
	targetReq.Breakpoints = ToTarget(req.Breakpoints, isWrapped, IsHigherLevelSource(sourcePath))

	results, err := next(ctx, &targetReq)
	if err != nil {
		return nil, err
	}
	return FromTarget(results, isWrapped), nil
}

func (a *DebugAdapter) ScriptParsed(ev *cdp.ScriptParsedEvent, next bridge.ScriptParsedFunc) {
	isWrapped := IsPlatformURL(ev.URL) || (a.initialURL != "" && ev.URL == a.initialURL)
	a.registry.RecordScript(ev.URL, ev.ScriptID, isWrapped)

	next(ev)

	if a.trigger != nil && a.session != nil {
		a.trigger.OnScriptParsed(a.session, ev.URL)
	}
}

func (a *DebugAdapter) Paused(ev *cdp.PausedEvent, next bridge.PausedFunc) {
	for i := range ev.CallFrames {
		loc := &ev.CallFrames[i].Location
		line, lineErr := FromTargetLine(loc.LineNumber, a.registry.IsWrappedByID(loc.ScriptID))
		if lineErr != nil {
			if i == 0 {
				a.log.Error(lineErr, "Ignoring pause notification", "ScriptID", loc.ScriptID, "Reason", ev.Reason)
				return
			}
			line = 0
		}
		loc.LineNumber = line
	}

	next(ev)
}

func (a *DebugAdapter) TargetURLToClientPath(url string) (string, bool) {
	if IsPhantomURL(url) {
		if a.resolver == nil {
			return "", false
		}
		return a.resolver.Resolve(url)
	}
	return bridge.NopHooks{}.TargetURLToClientPath(url)
}

func (a *DebugAdapter) Close() error {
	if a.trigger != nil {
		a.trigger.Cancel()
	}
	a.stopProcess()
	a.cancel()
	return nil
}

// InitialScriptURL returns the URL of the launched script, or an empty string before launch.
func (a *DebugAdapter) InitialScriptURL() string {
	return a.initialURL
}

func (a *DebugAdapter) stopProcess() {
	if a.pid == process.UnknownPID {
		return
	}
	pid := a.pid
	a.pid = process.UnknownPID

	if err := a.executor.InterruptProcess(pid); err != nil {
		a.log.V(1).Info("Could not interrupt PhantomJS", "PID", pid, "Error", err.Error())
	}
}

func exitReason(exitCode int32, err error) string {
	switch {
	case err != nil:
		return fmt.Sprintf("PhantomJS error: %s", err.Error())
	case exitCode != 0:
		return fmt.Sprintf("PhantomJS exited with code %d", exitCode)
	default:
		return ""
	}
}
