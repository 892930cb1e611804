package storage

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/0xPolygon/polygon-xt/command/helper"
)

type StorageResult struct {
	Module string   `json:"module"`
	Entry  string   `json:"entry"`
	Keys   []string `json:"keys"`
	Found  bool     `json:"found"`
	Value  string   `json:"value,omitempty"`
}

func (r *StorageResult) GetOutput() string {
	var buffer bytes.Buffer

	value := r.Value
	if !r.Found {
		value = "<none>"
	}

	buffer.WriteString("\n[STORAGE]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Entry|%s.%s", r.Module, r.Entry),
		fmt.Sprintf("Keys|%s", strings.Join(r.Keys, ", ")),
		fmt.Sprintf("Value|%s", value),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
