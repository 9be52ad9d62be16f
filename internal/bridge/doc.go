/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

/*
Package bridge implements a debug adapter that translates Debug Adapter Protocol requests
from a development tool into Chrome DevTools Protocol calls to a target debugger,
and target notifications into DAP events.

The bridge is runtime-neutral. Runtime-specific behavior (launching the debuggee, fixing up positions
reported by the target, mapping script URLs to local files) is supplied through Hooks.

# Event loop

All client requests, target notifications and deferred work (Session.AfterFunc, Session.Terminate)
are processed sequentially on the goroutine that calls Bridge.Run. Hooks are always invoked on that goroutine.
Target calls that may run target code (expression evaluation) never block the loop;
their results are posted back to the loop when they arrive.

# Positions

The client uses 1-based lines and columns. Everything inside the bridge, the hooks, and the target
protocol uses 0-based positions; conversion happens only when requests are decoded and responses are built.
*/
package bridge
