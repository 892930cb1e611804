package version

import (
	"bytes"
	"encoding/json"
	"runtime"
	"testing"

	"github.com/0xPolygon/polygon-xt/versioning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	versioning.Version = "v1.2.3"
	versioning.Commit = "abcdef"

	t.Cleanup(func() {
		versioning.Version = ""
		versioning.Commit = ""
	})

	cmd := GetCommand()
	cmd.Flags().Bool("json", false, "")

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--json"})

	require.NoError(t, cmd.Execute())

	var result VersionResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))

	assert.Equal(t, VersionResult{
		Version:          "v1.2.3",
		Commit:           "abcdef",
		GoVersion:        runtime.Version(),
		MetadataVersions: []int{11, 12},
		ExtrinsicVersion: 4,
	}, result)
}

func TestVersionResult_Output(t *testing.T) {
	out := (&VersionResult{
		Version:          "dev",
		MetadataVersions: []int{11, 12},
		ExtrinsicVersion: 4,
	}).GetOutput()

	assert.Contains(t, out, "V11, V12")
	assert.Contains(t, out, "Release version")
}
