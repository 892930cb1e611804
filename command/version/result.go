package version

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/0xPolygon/polygon-xt/command/helper"
)

type VersionResult struct {
	Version          string `json:"version"`
	Commit           string `json:"commit"`
	Branch           string `json:"branch"`
	BuildTime        string `json:"buildTime"`
	GoVersion        string `json:"goVersion"`
	MetadataVersions []int  `json:"metadataVersions"`
	ExtrinsicVersion uint8  `json:"extrinsicVersion"`
}

func (r *VersionResult) GetOutput() string {
	var buffer bytes.Buffer

	metaVersions := make([]string, len(r.MetadataVersions))
	for i, v := range r.MetadataVersions {
		metaVersions[i] = fmt.Sprintf("V%d", v)
	}

	buffer.WriteString("\n[VERSION INFO]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Release version|%s", r.Version),
		fmt.Sprintf("Git branch|%s", r.Branch),
		fmt.Sprintf("Commit hash|%s", r.Commit),
		fmt.Sprintf("Build time|%s", r.BuildTime),
		fmt.Sprintf("Go version|%s", r.GoVersion),
		fmt.Sprintf("Metadata versions|%s", strings.Join(metaVersions, ", ")),
		fmt.Sprintf("Extrinsic version|%d", r.ExtrinsicVersion),
	}))

	return buffer.String()
}
