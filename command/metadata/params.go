package metadata

import (
	"strings"

	"github.com/0xPolygon/polygon-xt/command/helper"
)

const (
	moduleFlag  = "module"
	refreshFlag = "refresh"
)

type metadataParams struct {
	client  helper.ClientParams
	module  string
	refresh bool
}

func (p *metadataParams) validateFlags() error {
	p.module = strings.TrimSpace(p.module)

	return nil
}
