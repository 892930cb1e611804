package versioning

import "fmt"

// Set with -ldflags "-X github.com/0xPolygon/polygon-xt/versioning.Version=..." at build time
var (
	Version   string
	Branch    string
	Commit    string
	BuildTime string
)

const devVersion = "dev"

// Release returns the embedded version, or "dev" for builds without ldflags
func Release() string {
	if Version == "" {
		return devVersion
	}

	return Version
}

// String is the release followed by the short commit, if one was embedded
func String() string {
	if Commit == "" {
		return Release()
	}

	commit := Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}

	return fmt.Sprintf("%s (%s)", Release(), commit)
}
