package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

var ErrEmptyAmount = errors.New("empty amount")

// ParseAmount parses a decimal or 0x prefixed hex amount. An empty string is an error.
func ParseAmount(val string) (*uint256.Int, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil, ErrEmptyAmount
	}

	var (
		amount *uint256.Int
		err    error
	)

	if strings.HasPrefix(val, "0x") {
		amount, err = uint256.FromHex(val)
	} else {
		amount, err = uint256.FromDecimal(val)
	}

	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", val, err)
	}

	return amount, nil
}

// ParseUint64orHex parses a decimal or 0x prefixed hex uint64
func ParseUint64orHex(val string) (uint64, error) {
	amount, err := ParseAmount(val)
	if err != nil {
		return 0, err
	}

	if !amount.IsUint64() {
		return 0, fmt.Errorf("%s overflows uint64", val)
	}

	return amount.Uint64(), nil
}
