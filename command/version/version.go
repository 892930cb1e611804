package version

import (
	"runtime"

	"github.com/0xPolygon/polygon-xt/command"
	"github.com/0xPolygon/polygon-xt/extrinsic"
	"github.com/0xPolygon/polygon-xt/metadata"
	"github.com/0xPolygon/polygon-xt/versioning"
	"github.com/spf13/cobra"
)

func GetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Returns the xt version and the runtime formats it understands",
		Args:  cobra.NoArgs,
		Run:   runCommand,
	}
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	outputter.SetCommandResult(
		&VersionResult{
			Version:          versioning.Release(),
			Commit:           versioning.Commit,
			Branch:           versioning.Branch,
			BuildTime:        versioning.BuildTime,
			GoVersion:        runtime.Version(),
			MetadataVersions: metadataVersions(),
			ExtrinsicVersion: extrinsic.Version,
		},
	)
}

// metadataVersions widens the versions so JSON output lists numbers
func metadataVersions() []int {
	out := make([]int, len(metadata.SupportedVersions))
	for i, v := range metadata.SupportedVersions {
		out[i] = int(v)
	}

	return out
}
