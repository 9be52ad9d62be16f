package commands

import (
	"encoding/json"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/iradul/vscode-phantomjs-debug/internal/config"
	"github.com/iradul/vscode-phantomjs-debug/internal/version"
)

const (
	outputFormatJSON = "json"
	outputFormatYAML = "yaml"
)

type infoOptions struct {
	output string
}

func NewInfoCommand(log logr.Logger) (*cobra.Command, error) {
	opts := &infoOptions{}
	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Prints version information and the effective adapter settings",
		Long: `Prints version information and the effective adapter settings.

Settings are read from PJSDAP_* environment variables; launch configurations override them per session.`,
		RunE: getInfo(log, opts),
		Args: cobra.NoArgs,
	}
	infoCmd.Flags().StringVarP(&opts.output, "output", "o", outputFormatJSON, "Output format, 'json' or 'yaml'")

	return infoCmd, nil
}

type settingsInfo struct {
	DefaultPort    int    `json:"defaultPort"`
	DefaultAddress string `json:"defaultAddress"`
	ConnectTimeout string `json:"connectTimeout"`
	PagePath       string `json:"pagePath"`
}

type information struct {
	Version  version.VersionOutput `json:"version"`
	Settings settingsInfo          `json:"settings"`
}

func getInfo(log logr.Logger, opts *infoOptions) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		log := log.WithName("info")

		settings, settingsErr := config.Load()
		if settingsErr != nil {
			log.Error(settingsErr, "Could not read adapter settings")
			return settingsErr
		}

		info := information{
			Version: version.Version(),
			Settings: settingsInfo{
				DefaultPort:    settings.DefaultPort,
				DefaultAddress: settings.DefaultAddress,
				ConnectTimeout: settings.ConnectTimeout.String(),
				PagePath:       settings.PagePath,
			},
		}

		infoJSON, err := json.Marshal(info)
		if err != nil {
			log.Error(err, "Could not serialize adapter information")
			return err
		}

		switch opts.output {
		case outputFormatJSON:
			fmt.Fprintln(cmd.OutOrStdout(), string(infoJSON))
		case outputFormatYAML:
			infoYAML, yamlErr := jsonToYAML(infoJSON)
			if yamlErr != nil {
				log.Error(yamlErr, "Could not serialize adapter information")
				return yamlErr
			}
			fmt.Fprint(cmd.OutOrStdout(), string(infoYAML))
		default:
			return fmt.Errorf("unsupported output format '%s'", opts.output)
		}

		return nil
	}
}

// JSON is a subset of YAML, so decoding into a node keeps field names and order.
func jsonToYAML(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(&doc)
}
