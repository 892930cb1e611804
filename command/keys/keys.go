package keys

import (
	"github.com/spf13/cobra"
)

// GetCommand returns the keys command
func GetCommand() *cobra.Command {
	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "Top level command for managing the local signer key. Only accepts subcommands.",
	}

	keysCmd.AddCommand(
		getGenerateCommand(),
		getShowCommand(),
	)

	return keysCmd
}
