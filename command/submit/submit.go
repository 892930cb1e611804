package submit

import (
	"context"

	"github.com/0xPolygon/polygon-xt/call"
	"github.com/0xPolygon/polygon-xt/command"
	"github.com/0xPolygon/polygon-xt/command/helper"
	"github.com/spf13/cobra"
)

var params submitParams

// GetCommand returns the submit command
func GetCommand() *cobra.Command {
	submitCmd := &cobra.Command{
		Use:     "submit",
		Short:   "Encodes, signs and submits a call of the connected runtime",
		Example: `xt submit --module System --call remark --args '["0x68656c6c6f"]' --wait`,
		Args:    cobra.NoArgs,
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	setFlags(submitCmd)

	return submitCmd
}

func setFlags(cmd *cobra.Command) {
	params.client.RegisterClientFlags(cmd)

	cmd.Flags().StringVar(
		&params.module,
		moduleFlag,
		"",
		"the module holding the call",
	)

	cmd.Flags().StringVar(
		&params.call,
		callFlag,
		"",
		"the name of the call",
	)

	cmd.Flags().StringVar(
		&params.rawArgs,
		argsFlag,
		"",
		"the call arguments as a json array",
	)

	cmd.Flags().BoolVar(
		&params.wait,
		waitFlag,
		false,
		"wait until the extrinsic is finalized",
	)
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

	c, err := session.Relayer.Call(cmd.Context(), params.module, params.call, params.args...)
	if err != nil {
		outputter.SetError(err)

		return
	}

	res, err := Send(cmd.Context(), session, c, params.wait)
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(res)
}

// Send signs c for the session account, submits it and optionally waits
// for the outcome. It is shared with the transfer command.
func Send(ctx context.Context, session *helper.Session, c *call.Call, wait bool) (*Result, error) {
	watch, err := session.Relayer.SendCall(ctx, session.Account, c)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Account: session.Account.SS58(uint16(session.Config.SS58Prefix)),
		Hash:    watch.Hash(),
		Call:    c.Bytes(),
	}

	if !wait {
		watch.Unwatch()

		return res, nil
	}

	status, err := session.Relayer.Wait(ctx, watch)
	if status.IsTerminal() {
		res.Status = status.String()
	}

	journal, jerr := session.Storage.ReadJournal(watch.Hash())
	if jerr != nil {
		session.Logger.Debug("failed to read journal", "hash", watch.Hash(), "err", jerr)
	}

	for _, entry := range journal {
		res.Statuses = append(res.Statuses, entry.Status.String())
	}

	return res, err
}
