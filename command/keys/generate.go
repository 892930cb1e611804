package keys

import (
	"github.com/0xPolygon/polygon-xt/command"
	"github.com/spf13/cobra"
)

var generateParams keysParams

func getGenerateCommand() *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generates the signer key in the data directory",
		Args:  cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return generateParams.validateFlags()
		},
		Run: runGenerateCommand,
	}

	generateParams.client.RegisterClientFlags(generateCmd)

	generateCmd.Flags().StringVar(
		&generateParams.keyType,
		keyTypeFlag,
		"",
		"the key type, ed25519 or ecdsa (default from config)",
	)

	generateCmd.Flags().BoolVar(
		&generateParams.force,
		forceFlag,
		false,
		"replace an existing signer key",
	)

	return generateCmd
}

func runGenerateCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	res, err := generateParams.generateKey()
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(res)
}
