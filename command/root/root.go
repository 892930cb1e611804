package root

import (
	"fmt"
	"os"

	"github.com/0xPolygon/polygon-xt/command/helper"
	"github.com/0xPolygon/polygon-xt/command/history"
	"github.com/0xPolygon/polygon-xt/command/keys"
	"github.com/0xPolygon/polygon-xt/command/metadata"
	"github.com/0xPolygon/polygon-xt/command/storage"
	"github.com/0xPolygon/polygon-xt/command/submit"
	"github.com/0xPolygon/polygon-xt/command/transfer"
	"github.com/0xPolygon/polygon-xt/command/version"
	"github.com/0xPolygon/polygon-xt/versioning"
	"github.com/spf13/cobra"
)

type RootCommand struct {
	baseCmd *cobra.Command
}

func NewRootCommand() *RootCommand {
	rootCommand := &RootCommand{
		baseCmd: &cobra.Command{
			Use:     "xt",
			Short:   "xt builds, signs and submits extrinsics to Substrate based chains",
			Version: versioning.String(),
		},
	}

	helper.RegisterJSONOutputFlag(rootCommand.baseCmd)

	rootCommand.registerSubCommands()

	return rootCommand
}

func (rc *RootCommand) registerSubCommands() {
	rc.baseCmd.AddCommand(
		version.GetCommand(),
		metadata.GetCommand(),
		submit.GetCommand(),
		transfer.GetCommand(),
		storage.GetCommand(),
		keys.GetCommand(),
		history.GetCommand(),
	)
}

func (rc *RootCommand) Execute() {
	if err := rc.baseCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}
