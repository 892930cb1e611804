package keys

import (
	"github.com/0xPolygon/polygon-xt/command"
	"github.com/spf13/cobra"
)

var showParams keysParams

func getShowCommand() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Prints the public key and address of the signer key",
		Args:  cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return showParams.validateFlags()
		},
		Run: runShowCommand,
	}

	showParams.client.RegisterClientFlags(showCmd)

	return showCmd
}

func runShowCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	res, err := showParams.readKey()
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(res)
}
