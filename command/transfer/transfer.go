package transfer

import (
	"github.com/0xPolygon/polygon-xt/command"
	"github.com/0xPolygon/polygon-xt/command/helper"
	"github.com/0xPolygon/polygon-xt/command/submit"
	"github.com/spf13/cobra"
)

var params transferParams

// GetCommand returns the transfer command
func GetCommand() *cobra.Command {
	transferCmd := &cobra.Command{
		Use:     "transfer",
		Short:   "Transfers balance from the signer to another account",
		Args:    cobra.NoArgs,
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	setFlags(transferCmd)

	return transferCmd
}

func setFlags(cmd *cobra.Command) {
	params.client.RegisterClientFlags(cmd)

	cmd.Flags().StringVar(
		&params.to,
		toFlag,
		"",
		"the destination account, ss58 or hex encoded",
	)

	cmd.Flags().StringVar(
		&params.rawAmount,
		amountFlag,
		"",
		"the amount in the smallest unit, decimal or 0x prefixed hex",
	)

	cmd.Flags().BoolVar(
		&params.wait,
		waitFlag,
		false,
		"wait until the extrinsic is finalized",
	)

	_ = cmd.MarkFlagRequired(toFlag)
	_ = cmd.MarkFlagRequired(amountFlag)
}

func runPreRun(_ *cobra.Command, _ []string) error {
	return params.validateFlags()
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	session, err := helper.NewSession(&params.client, true)
	if err != nil {
		outputter.SetError(err)

		return
	}
	defer session.Close()

	encoder, err := session.Relayer.Encoder(cmd.Context())
	if err != nil {
		outputter.SetError(err)

		return
	}

	c, err := encoder.BalancesTransfer(params.dest, params.amount)
	if err != nil {
		outputter.SetError(err)

		return
	}

	res, err := submit.Send(cmd.Context(), session, c, params.wait)
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(res)
}
