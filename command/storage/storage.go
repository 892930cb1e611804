package storage

import (
	"fmt"

	"github.com/0xPolygon/polygon-xt/command"
	"github.com/0xPolygon/polygon-xt/command/helper"
	"github.com/spf13/cobra"
)

var params storageParams

// GetCommand returns the storage command
func GetCommand() *cobra.Command {
	storageCmd := &cobra.Command{
		Use:     "storage",
		Short:   "Reads a storage entry of the connected runtime",
		Example: `xt storage --module System --entry Account --keys 5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY`,
		Args:    cobra.NoArgs,
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	setFlags(storageCmd)

	return storageCmd
}

func setFlags(cmd *cobra.Command) {
	params.client.RegisterClientFlags(cmd)

	cmd.Flags().StringVar(
		&params.module,
		moduleFlag,
		"",
		"the module holding the entry",
	)

	cmd.Flags().StringVar(
		&params.entry,
		entryFlag,
		"",
		"the name of the storage entry",
	)

	cmd.Flags().StringSliceVar(
		&params.rawKeys,
		keysFlag,
		[]string{},
		"the map keys of the entry",
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

	value, err := session.Relayer.FetchStorage(cmd.Context(), params.module, params.entry, params.keys...)
	if err != nil {
		outputter.SetError(err)

		return
	}

	res := &StorageResult{
		Module: params.module,
		Entry:  params.entry,
		Keys:   params.rawKeys,
		Found:  value != nil,
	}

	if value != nil {
		res.Value = fmt.Sprint(value)
	}

	outputter.SetCommandResult(res)
}
