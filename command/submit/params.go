package submit

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/0xPolygon/polygon-xt/command/helper"
	jsoniter "github.com/json-iterator/go"
)

const (
	moduleFlag = "module"
	callFlag   = "call"
	argsFlag   = "args"
	waitFlag   = "wait"
)

var (
	errMissingCall = errors.New("module and call are required")

	argsDecoder = jsoniter.Config{UseNumber: true}.Froze()
)

type submitParams struct {
	client  helper.ClientParams
	module  string
	call    string
	rawArgs string
	wait    bool

	args []interface{}
}

func (p *submitParams) validateFlags() error {
	if p.module == "" || p.call == "" {
		return errMissingCall
	}

	args, err := parseArgs(p.rawArgs)
	if err != nil {
		return err
	}

	p.args = args

	return nil
}

// parseArgs reads the call arguments from a json array. Numbers are kept as
// decimal strings so that values above 2^53 survive.
func parseArgs(raw string) ([]interface{}, error) {
	if raw == "" {
		return []interface{}{}, nil
	}

	var args []interface{}

	if err := argsDecoder.UnmarshalFromString(raw, &args); err != nil {
		return nil, fmt.Errorf("args must be a json array: %w", err)
	}

	for i, arg := range args {
		args[i] = normalizeArg(arg)
	}

	return args, nil
}

func normalizeArg(v interface{}) interface{} {
	switch arg := v.(type) {
	case json.Number:
		return arg.String()
	case []interface{}:
		for i := range arg {
			arg[i] = normalizeArg(arg[i])
		}

		return arg
	case map[string]interface{}:
		for k := range arg {
			arg[k] = normalizeArg(arg[k])
		}

		return arg
	default:
		return v
	}
}
