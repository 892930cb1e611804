package history

import (
	"time"

	"github.com/0xPolygon/polygon-xt/command"
	"github.com/0xPolygon/polygon-xt/command/helper"
	"github.com/spf13/cobra"
)

var params historyParams

// GetCommand returns the history command
func GetCommand() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:     "history",
		Short:   "Lists the journaled statuses of submitted extrinsics",
		Args:    cobra.NoArgs,
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	setFlags(historyCmd)

	return historyCmd
}

func setFlags(cmd *cobra.Command) {
	params.client.RegisterClientFlags(cmd)

	cmd.Flags().StringVar(
		&params.hash,
		hashFlag,
		"",
		"only show the extrinsic with the given hash",
	)

	cmd.Flags().DurationVar(
		&params.prune,
		pruneFlag,
		0,
		"first remove journals not updated within the given age, e.g. 168h",
	)

	cmd.Flags().IntVar(
		&params.limit,
		limitFlag,
		20,
		"the maximum number of extrinsics to list, 0 lists all",
	)
}

func runPreRun(_ *cobra.Command, _ []string) error {
	return params.validateFlags()
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	logger := helper.NewLogger(params.config.LogLevel, params.config.JSONLogFormat)

	store, err := helper.OpenStorage(params.config, logger)
	if err != nil {
		outputter.SetError(err)

		return
	}

	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", "err", err)
		}
	}()

	res, err := params.run(store, time.Now())
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(res)
}
