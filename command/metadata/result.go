package metadata

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/0xPolygon/polygon-xt/command/helper"
	rtmeta "github.com/0xPolygon/polygon-xt/metadata"
	"github.com/0xPolygon/polygon-xt/types"
)

type MetadataResult struct {
	Version     uint8          `json:"version"`
	SpecName    string         `json:"spec_name"`
	SpecVersion uint32         `json:"spec_version"`
	TxVersion   uint32         `json:"transaction_version"`
	Modules     []ModuleResult `json:"modules"`
}

type ModuleResult struct {
	Name    string   `json:"name"`
	Index   uint8    `json:"index"`
	Calls   []string `json:"calls"`
	Storage []string `json:"storage"`
}

func newMetadataResult(meta *rtmeta.Metadata, rv *types.RuntimeVersion, module string) (*MetadataResult, error) {
	res := &MetadataResult{
		Version:     meta.Version,
		SpecName:    rv.SpecName,
		SpecVersion: rv.SpecVersion,
		TxVersion:   rv.TransactionVersion,
	}

	modules := meta.Modules

	if module != "" {
		mod, err := meta.Module(module)
		if err != nil {
			return nil, err
		}

		modules = []*rtmeta.Module{mod}
	}

	for _, mod := range modules {
		m := ModuleResult{
			Name:    mod.Name,
			Index:   mod.Index,
			Calls:   make([]string, 0, len(mod.Calls)),
			Storage: []string{},
		}

		for _, c := range mod.Calls {
			args := make([]string, len(c.Args))
			for i, arg := range c.Args {
				args[i] = fmt.Sprintf("%s: %s", arg.Name, arg.Type)
			}

			m.Calls = append(m.Calls, fmt.Sprintf("%s(%s)", c.Name, strings.Join(args, ", ")))
		}

		if mod.Storage != nil {
			for _, e := range mod.Storage.Entries {
				m.Storage = append(m.Storage, formatEntry(e))
			}
		}

		res.Modules = append(res.Modules, m)
	}

	return res, nil
}

func formatEntry(e *rtmeta.StorageEntry) string {
	switch e.Kind {
	case rtmeta.EntryMap:
		return fmt.Sprintf("%s: map %s => %s", e.Name, e.Key, e.Value)
	case rtmeta.EntryDoubleMap:
		return fmt.Sprintf("%s: double map %s, %s => %s", e.Name, e.Key, e.Key2, e.Value)
	default:
		return fmt.Sprintf("%s: %s", e.Name, e.Value)
	}
}

func (r *MetadataResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[RUNTIME]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Spec|%s v%d", r.SpecName, r.SpecVersion),
		fmt.Sprintf("Transaction version|%d", r.TxVersion),
		fmt.Sprintf("Metadata version|V%d", r.Version),
	}))
	buffer.WriteString("\n")

	for _, m := range r.Modules {
		buffer.WriteString(fmt.Sprintf("\n[MODULE %s (%d)]\n", m.Name, m.Index))

		rows := make([]string, 0, len(m.Calls)+len(m.Storage))
		for _, c := range m.Calls {
			rows = append(rows, "call|"+c)
		}

		for _, s := range m.Storage {
			rows = append(rows, "storage|"+s)
		}

		buffer.WriteString(helper.FormatList(rows))
		buffer.WriteString("\n")
	}

	return buffer.String()
}
