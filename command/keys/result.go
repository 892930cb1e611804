package keys

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/polygon-xt/command/helper"
)

type KeyResult struct {
	Scheme    string `json:"scheme"`
	AccountID string `json:"account_id"`
	Address   string `json:"address"`
	DataDir   string `json:"data_dir"`
	Generated bool   `json:"generated"`
}

func (r *KeyResult) GetOutput() string {
	var buffer bytes.Buffer

	if r.Generated {
		buffer.WriteString("\n[SIGNER KEY GENERATED]\n")
	} else {
		buffer.WriteString("\n[SIGNER KEY]\n")
	}

	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Scheme|%s", r.Scheme),
		fmt.Sprintf("Account id|%s", r.AccountID),
		fmt.Sprintf("Address|%s", r.Address),
		fmt.Sprintf("Data dir|%s", r.DataDir),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
