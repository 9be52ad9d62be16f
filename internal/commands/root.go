package commands

import (
	"github.com/spf13/cobra"

	"github.com/iradul/vscode-phantomjs-debug/pkg/logger"
)

func NewRootCmd(log *logger.Logger) (*cobra.Command, error) {
	serveOpts := &serveOptions{}
	monitorOpts := &monitorOptions{}

	rootCmd := &cobra.Command{
		Use:   "pjsdap",
		Short: "Debug adapter for PhantomJS scripts",
		Long: `pjsdap is a Debug Adapter Protocol server for PhantomJS.

It launches PhantomJS with its remote debugger enabled and translates between the editor
and the PhantomJS debugger. By default the adapter talks to the editor over stdin and stdout;
use --server to accept debug sessions over TCP instead.`,
		Args:             cobra.NoArgs,
		RunE:             runAdapter(log, serveOpts, monitorOpts),
		PersistentPreRun: LogVersion(log.Logger, "Starting PhantomJS debug adapter..."),
		SilenceErrors:    true,
		SilenceUsage:     true,
	}

	rootCmd.Flags().StringVar(&serveOpts.address, "server", "", "If present, listens for debug sessions on given TCP address (e.g. 127.0.0.1:4711) instead of using stdin and stdout.")
	addMonitorFlags(rootCmd, monitorOpts)
	log.AddLevelFlag(rootCmd.PersistentFlags())

	versionCmd, err := NewVersionCommand(log.Logger)
	if err != nil {
		return nil, err
	}
	rootCmd.AddCommand(versionCmd)

	infoCmd, err := NewInfoCommand(log.Logger)
	if err != nil {
		return nil, err
	}
	rootCmd.AddCommand(infoCmd)

	return rootCmd, nil
}
