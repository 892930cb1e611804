package call

import (
	"github.com/0xPolygon/polygon-xt/types"
	"github.com/holiman/uint256"
)

// BalancesTransfer moves value from the signer to dest
func (e *Encoder) BalancesTransfer(dest types.AccountID, value *uint256.Int) (*Call, error) {
	return e.Encode("Balances", "transfer", dest, value)
}

// SystemSetCode replaces the runtime wasm blob. Needs root origin.
func (e *Encoder) SystemSetCode(code []byte) (*Call, error) {
	return e.Encode("System", "set_code", code)
}

func (e *Encoder) SystemRemark(remark []byte) (*Call, error) {
	return e.Encode("System", "remark", remark)
}
