package storage

import (
	"errors"
	"strings"

	"github.com/0xPolygon/polygon-xt/command/helper"
	"github.com/0xPolygon/polygon-xt/types"
)

const (
	moduleFlag = "module"
	entryFlag  = "entry"
	keysFlag   = "keys"
)

var errMissingEntry = errors.New("module and entry are required")

type storageParams struct {
	client  helper.ClientParams
	module  string
	entry   string
	rawKeys []string

	keys []interface{}
}

func (p *storageParams) validateFlags() error {
	if p.module == "" || p.entry == "" {
		return errMissingEntry
	}

	p.keys = parseKeys(p.rawKeys)

	return nil
}

// parseKeys turns ss58 addresses into account ids. Everything else is passed
// to the registry as is, which reads numbers and 0x prefixed bytes from strings.
func parseKeys(raw []string) []interface{} {
	keys := make([]interface{}, len(raw))

	for i, k := range raw {
		k = strings.TrimSpace(k)
		keys[i] = k

		if strings.HasPrefix(k, "0x") {
			continue
		}

		if account, _, err := types.DecodeSS58(k); err == nil {
			keys[i] = account
		}
	}

	return keys
}
