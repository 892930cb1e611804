package metadata

import (
	"fmt"

	"github.com/0xPolygon/polygon-xt/command"
	"github.com/0xPolygon/polygon-xt/command/helper"
	"github.com/spf13/cobra"
)

var params metadataParams

// GetCommand returns the metadata command
func GetCommand() *cobra.Command {
	metadataCmd := &cobra.Command{
		Use:     "metadata",
		Short:   "Lists the modules, calls and storage entries of the connected runtime",
		Args:    cobra.NoArgs,
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	setFlags(metadataCmd)

	return metadataCmd
}

func setFlags(cmd *cobra.Command) {
	params.client.RegisterClientFlags(cmd)

	cmd.Flags().StringVar(
		&params.module,
		moduleFlag,
		"",
		"only list the given module",
	)

	cmd.Flags().BoolVar(
		&params.refresh,
		refreshFlag,
		false,
		"ignore the cached metadata and fetch it from the node",
	)
}

func runPreRun(_ *cobra.Command, _ []string) error {
	return params.validateFlags()
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	session, err := helper.NewSession(&params.client, false)
	if err != nil {
		outputter.SetError(err)

		return
	}
	defer session.Close()

	if params.refresh {
		if _, err := session.Relayer.RefreshMetadata(cmd.Context()); err != nil {
			outputter.SetError(fmt.Errorf("failed to refresh metadata: %w", err))

			return
		}
	}

	meta, rv, err := session.Relayer.Metadata(cmd.Context())
	if err != nil {
		outputter.SetError(err)

		return
	}

	res, err := newMetadataResult(meta, rv, params.module)
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(res)
}
