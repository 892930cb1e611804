package types

import (
	"fmt"

	"github.com/0xPolygon/polygon-xt/helper/hex"
	"github.com/0xPolygon/polygon-xt/scale"
)

const (
	HashLength      = 32
	AccountIDLength = 32
)

var (
	ZeroHash      = Hash{}
	ZeroAccountID = AccountID{}
)

// Hash is a 32 byte block or extrinsic hash
type Hash [HashLength]byte

// AccountID is the 32 byte public identity of an account
type AccountID [AccountIDLength]byte

func BytesToHash(b []byte) Hash {
	var h Hash

	size := len(b)
	if size > HashLength {
		size = HashLength
	}

	copy(h[HashLength-size:], b[len(b)-size:])

	return h
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) String() string {
	return hex.EncodeToHex(h[:])
}

func (h Hash) IsZero() bool {
	return h == ZeroHash
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(input []byte) error {
	return hex.DecodeHexInto(h[:], string(input))
}

func (h Hash) EncodeSCALE(enc *scale.Encoder) error {
	enc.Write(h[:])

	return nil
}

func (h *Hash) DecodeSCALE(dec *scale.Decoder) error {
	b, err := dec.Read(HashLength)
	if err != nil {
		return err
	}

	copy(h[:], b)

	return nil
}

// StringToHash parses a 0x prefixed 32 byte hex string
func StringToHash(str string) (Hash, error) {
	var h Hash

	if err := h.UnmarshalText([]byte(str)); err != nil {
		return ZeroHash, fmt.Errorf("invalid hash %q: %w", str, err)
	}

	return h, nil
}

func (a AccountID) Bytes() []byte {
	return a[:]
}

// String returns the account in the generic SS58 format
func (a AccountID) String() string {
	return a.SS58(DefaultSS58Prefix)
}

func (a AccountID) Hex() string {
	return hex.EncodeToHex(a[:])
}

func (a AccountID) IsZero() bool {
	return a == ZeroAccountID
}

func (a AccountID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText accepts either an SS58 address or a 0x prefixed public key
func (a *AccountID) UnmarshalText(input []byte) error {
	id, err := ParseAccountID(string(input))
	if err != nil {
		return err
	}

	*a = id

	return nil
}

func (a AccountID) EncodeSCALE(enc *scale.Encoder) error {
	enc.Write(a[:])

	return nil
}

func (a *AccountID) DecodeSCALE(dec *scale.Decoder) error {
	b, err := dec.Read(AccountIDLength)
	if err != nil {
		return err
	}

	copy(a[:], b)

	return nil
}

// BytesToAccountID copies a 32 byte public key
func BytesToAccountID(b []byte) (AccountID, error) {
	var a AccountID

	if len(b) != AccountIDLength {
		return a, fmt.Errorf("account id must be %d bytes, got %d", AccountIDLength, len(b))
	}

	copy(a[:], b)

	return a, nil
}

// HexBytes is a byte slice that travels as 0x prefixed hex in JSON
type HexBytes []byte

func (h HexBytes) String() string {
	return hex.EncodeToHex(h)
}

func (h HexBytes) Bytes() []byte {
	return h[:]
}

func (h HexBytes) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *HexBytes) UnmarshalText(input []byte) error {
	b, err := hex.DecodeHex(string(input))
	if err != nil {
		return err
	}

	*h = b

	return nil
}
