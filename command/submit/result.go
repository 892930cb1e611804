package submit

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/0xPolygon/polygon-xt/command/helper"
	"github.com/0xPolygon/polygon-xt/types"
)

type Result struct {
	Account  string         `json:"account"`
	Hash     types.Hash     `json:"hash"`
	Call     types.HexBytes `json:"call"`
	Status   string         `json:"status,omitempty"`
	Statuses []string       `json:"statuses,omitempty"`
}

func (r *Result) GetOutput() string {
	var buffer bytes.Buffer

	vals := []string{
		fmt.Sprintf("Signer|%s", r.Account),
		fmt.Sprintf("Extrinsic (hash)|%s", r.Hash),
		fmt.Sprintf("Call|%s", r.Call),
	}

	if r.Status != "" {
		vals = append(vals, fmt.Sprintf("Status|%s", r.Status))
	}

	if len(r.Statuses) > 0 {
		vals = append(vals, fmt.Sprintf("Journal|%s", strings.Join(r.Statuses, " -> ")))
	}

	buffer.WriteString("\n[EXTRINSIC SUBMITTED]\n")
	buffer.WriteString(helper.FormatKV(vals))
	buffer.WriteString("\n")

	return buffer.String()
}
