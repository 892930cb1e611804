package extrinsic

import (
	"fmt"

	"github.com/0xPolygon/polygon-xt/crypto"
	"github.com/0xPolygon/polygon-xt/scale"
	"github.com/0xPolygon/polygon-xt/types"
	"github.com/holiman/uint256"
)

// maxUnhashedPayload is the longest payload handed to a signer verbatim.
// Longer payloads are replaced by their blake2b-256 digest.
const maxUnhashedPayload = 256

// ChainContext identifies the chain and runtime an extrinsic is valid for
type ChainContext struct {
	GenesisHash        types.Hash
	SpecVersion        uint32
	TransactionVersion uint32
}

// Params are the per-transaction values of the signed section
type Params struct {
	Nonce uint64
	Era   types.Era
	// BirthHash is the hash of the era's birth block. Ignored for immortal eras.
	BirthHash types.Hash
	// Tip defaults to zero when nil
	Tip   *uint256.Int
	Chain ChainContext
}

func (p *Params) tip() *uint256.Int {
	if p.Tip == nil {
		return new(uint256.Int)
	}

	return p.Tip
}

// checkpoint is the block hash the era is anchored to
func (p *Params) checkpoint() types.Hash {
	if p.Era.IsImmortal() {
		return p.Chain.GenesisHash
	}

	return p.BirthHash
}

// Validate reports a chain context that cannot produce a valid payload
func (p *Params) Validate() error {
	switch {
	case p.Chain.GenesisHash.IsZero():
		return fmt.Errorf("%w: genesis hash not set", ErrMissingChainContext)
	case p.Chain.SpecVersion == 0:
		return fmt.Errorf("%w: spec version not set", ErrMissingChainContext)
	case !p.Era.IsImmortal() && p.BirthHash.IsZero():
		return fmt.Errorf("%w: mortal era %s without birth block hash", ErrMissingChainContext, p.Era)
	case p.Tip != nil && p.Tip.BitLen() > 128:
		return &scale.EncodeError{Kind: scale.ErrValueOutOfRange, Msg: "tip " + p.Tip.Dec() + " does not fit u128"}
	}

	return nil
}

// SigningPayload returns the bytes a signer signs for the given call bytes:
// call, era, nonce, tip, spec version, transaction version, genesis hash and
// the era checkpoint. Payloads over 256 bytes are hashed with blake2b-256.
func SigningPayload(callBytes []byte, p *Params) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	enc := scale.AcquireEncoder()
	defer scale.ReleaseEncoder(enc)

	enc.Write(callBytes)

	if err := p.Era.EncodeSCALE(enc); err != nil {
		return nil, err
	}

	enc.EncodeCompact(p.Nonce)
	enc.EncodeCompactBig(p.tip())
	enc.EncodeUint32(p.Chain.SpecVersion)
	enc.EncodeUint32(p.Chain.TransactionVersion)

	genesis := p.Chain.GenesisHash
	checkpoint := p.checkpoint()

	enc.Write(genesis[:])
	enc.Write(checkpoint[:])

	if enc.Len() > maxUnhashedPayload {
		return crypto.Blake2b256(enc.Bytes()), nil
	}

	return enc.CopyBytes(), nil
}
