package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iradul/vscode-phantomjs-debug/internal/bridge"
	"github.com/iradul/vscode-phantomjs-debug/internal/config"
	"github.com/iradul/vscode-phantomjs-debug/internal/dap"
	"github.com/iradul/vscode-phantomjs-debug/internal/phantom"
	"github.com/iradul/vscode-phantomjs-debug/pkg/logger"
	"github.com/iradul/vscode-phantomjs-debug/pkg/process"
	"github.com/iradul/vscode-phantomjs-debug/pkg/resiliency"
)

const phantomThreadName = "PhantomJS"

type serveOptions struct {
	address string
}

func runAdapter(log *logger.Logger, serveOpts *serveOptions, monitorOpts *monitorOptions) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		log := log.Logger.WithName("serve")

		settings, settingsErr := config.Load()
		if settingsErr != nil {
			return settingsErr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ctx, monitorErr := monitor(ctx, monitorOpts, log)
		if monitorErr != nil {
			return fmt.Errorf("could not monitor process %d: %w", monitorOpts.pid, monitorErr)
		}

		if serveOpts.address != "" {
			listener, listenErr := (&net.ListenConfig{}).Listen(ctx, "tcp", serveOpts.address)
			if listenErr != nil {
				return fmt.Errorf("could not listen on %s: %w", serveOpts.address, listenErr)
			}
			log.Info("Listening for debug sessions", "Address", listener.Addr().String())
			return serveListener(ctx, listener, settings, log)
		}

		sessionErr := runSession(ctx, dap.NewStdioTransport(os.Stdin, os.Stdout), settings, log)
		return filterContextError(sessionErr, ctx)
	}
}

// serveListener runs a debug session for every accepted connection until the context is cancelled.
// Sessions are independent of each other.
func serveListener(ctx context.Context, listener net.Listener, settings config.Settings, log logr.Logger) error {
	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	var sessions sync.WaitGroup
	defer sessions.Wait()

	for {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			if ctx.Err() != nil || errors.Is(acceptErr, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("could not accept debug session connection: %w", acceptErr)
		}

		sessions.Add(1)
		go func() {
			defer sessions.Done()
			sessionErr := runSession(ctx, dap.NewConnTransport(conn), settings, log.WithValues("Client", conn.RemoteAddr().String()))
			if sessionErr = filterContextError(sessionErr, ctx); sessionErr != nil {
				log.Error(sessionErr, "Debug session failed")
			}
		}()
	}
}

func runSession(ctx context.Context, transport dap.Transport, settings config.Settings, log logr.Logger) (err error) {
	sessionLog := log.WithValues("Session", uuid.NewString())
	defer resiliency.Recover(sessionLog, &err)
	sessionLog.V(1).Info("Debug session started")

	conn := dap.NewClientConn(transport, dap.ClientConnConfig{Logger: sessionLog})
	b := bridge.New(conn, bridge.Config{
		Hooks: phantom.NewDebugAdapter(phantom.Config{
			Settings: settings,
			Executor: process.NewOSExecutor(sessionLog),
			Logger:   sessionLog,
		}),
		ThreadName: phantomThreadName,
		Logger:     sessionLog,
	})

	runErr := b.Run(ctx)
	sessionLog.V(1).Info("Debug session ended")
	return runErr
}
