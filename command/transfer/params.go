package transfer

import (
	"errors"
	"fmt"

	"github.com/0xPolygon/polygon-xt/command/helper"
	"github.com/0xPolygon/polygon-xt/helper/common"
	"github.com/0xPolygon/polygon-xt/types"
	"github.com/holiman/uint256"
)

const (
	toFlag     = "to"
	amountFlag = "amount"
	waitFlag   = "wait"
)

var errZeroAmount = errors.New("amount must be greater than zero")

type transferParams struct {
	client    helper.ClientParams
	to        string
	rawAmount string
	wait      bool

	dest   types.AccountID
	amount *uint256.Int
}

func (p *transferParams) validateFlags() error {
	dest, err := types.ParseAccountID(p.to)
	if err != nil {
		return fmt.Errorf("invalid destination %q: %w", p.to, err)
	}

	amount, err := common.ParseAmount(p.rawAmount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	if amount.IsZero() {
		return errZeroAmount
	}

	p.dest = dest
	p.amount = amount

	return nil
}
