package types

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/0xPolygon/polygon-xt/helper/hex"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// DefaultSS58Prefix is the generic substrate address prefix
const DefaultSS58Prefix uint16 = 42

const ss58ChecksumLength = 2

var (
	ss58Preimage = []byte("SS58PRE")

	ErrInvalidSS58         = errors.New("invalid ss58 address")
	ErrInvalidSS58Checksum = errors.New("invalid ss58 checksum")
)

func ss58PrefixBytes(prefix uint16) []byte {
	if prefix < 64 {
		return []byte{byte(prefix)}
	}

	return []byte{
		byte((prefix&0b1111_1100)>>2) | 0b0100_0000,
		byte(prefix>>8) | byte((prefix&0b11)<<6),
	}
}

func ss58Checksum(data []byte) []byte {
	h, _ := blake2b.New512(nil)
	h.Write(ss58Preimage)
	h.Write(data)

	return h.Sum(nil)[:ss58ChecksumLength]
}

// SS58 renders the account with the given network prefix.
// Prefixes above 16383 are not representable and are masked.
func (a AccountID) SS58(prefix uint16) string {
	prefix &= 0x3fff

	data := append(ss58PrefixBytes(prefix), a[:]...)
	data = append(data, ss58Checksum(data)...)

	return base58.Encode(data)
}

// DecodeSS58 parses an address and returns the account and its network prefix
func DecodeSS58(addr string) (AccountID, uint16, error) {
	var account AccountID

	data, err := base58.Decode(addr)
	if err != nil {
		return account, 0, fmt.Errorf("%w: %v", ErrInvalidSS58, err)
	}

	if len(data) == 0 {
		return account, 0, ErrInvalidSS58
	}

	var (
		prefix    uint16
		prefixLen int
	)

	switch {
	case data[0] < 64:
		prefix, prefixLen = uint16(data[0]), 1
	case data[0] < 128:
		if len(data) < 2 {
			return account, 0, ErrInvalidSS58
		}

		lower := uint16(data[0]<<2) | uint16(data[1]>>6)
		upper := uint16(data[1] & 0b0011_1111)
		prefix, prefixLen = lower|upper<<8, 2
	default:
		return account, 0, fmt.Errorf("%w: reserved prefix byte 0x%02x", ErrInvalidSS58, data[0])
	}

	if len(data) != prefixLen+AccountIDLength+ss58ChecksumLength {
		return account, 0, fmt.Errorf("%w: unexpected length %d", ErrInvalidSS58, len(data))
	}

	body := data[:prefixLen+AccountIDLength]
	if !bytes.Equal(ss58Checksum(body), data[len(body):]) {
		return account, 0, ErrInvalidSS58Checksum
	}

	copy(account[:], body[prefixLen:])

	return account, prefix, nil
}

// ParseAccountID accepts an SS58 address or a 0x prefixed 32 byte public key
func ParseAccountID(str string) (AccountID, error) {
	if strings.HasPrefix(str, "0x") {
		var a AccountID
		if err := hex.DecodeHexInto(a[:], str); err != nil {
			return a, fmt.Errorf("invalid account id %q: %w", str, err)
		}

		return a, nil
	}

	a, _, err := DecodeSS58(str)

	return a, err
}
