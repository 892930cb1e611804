package types

import (
	"fmt"

	"github.com/0xPolygon/polygon-xt/helper/hex"
	"github.com/0xPolygon/polygon-xt/scale"
)

// SignatureScheme is the variant index of a MultiSignature
type SignatureScheme uint8

const (
	SchemeEd25519 SignatureScheme = iota
	SchemeSr25519
	SchemeEcdsa
)

var signatureLengths = [...]int{
	SchemeEd25519: 64,
	SchemeSr25519: 64,
	SchemeEcdsa:   65,
}

func (s SignatureScheme) String() string {
	switch s {
	case SchemeEd25519:
		return "ed25519"
	case SchemeSr25519:
		return "sr25519"
	case SchemeEcdsa:
		return "ecdsa"
	default:
		return fmt.Sprintf("SignatureScheme(%d)", uint8(s))
	}
}

// ParseSignatureScheme accepts the lower case scheme names. Empty means sr25519.
func ParseSignatureScheme(s string) (SignatureScheme, error) {
	switch s {
	case "ed25519":
		return SchemeEd25519, nil
	case "", "sr25519":
		return SchemeSr25519, nil
	case "ecdsa":
		return SchemeEcdsa, nil
	default:
		return 0, fmt.Errorf("unknown signature scheme %q", s)
	}
}

// SignatureLength returns the byte length of a signature of the scheme
func (s SignatureScheme) SignatureLength() int {
	if int(s) >= len(signatureLengths) {
		return 0
	}

	return signatureLengths[s]
}

// MultiSignature is a signature tagged with the scheme that produced it
type MultiSignature struct {
	Scheme    SignatureScheme
	Signature []byte
}

func NewMultiSignature(scheme SignatureScheme, sig []byte) (MultiSignature, error) {
	if want := scheme.SignatureLength(); want == 0 || len(sig) != want {
		return MultiSignature{}, fmt.Errorf("%s signature must be %d bytes, got %d", scheme, want, len(sig))
	}

	return MultiSignature{Scheme: scheme, Signature: append([]byte(nil), sig...)}, nil
}

func (m MultiSignature) String() string {
	return fmt.Sprintf("%s:%s", m.Scheme, hex.EncodeToHex(m.Signature))
}

func (m MultiSignature) EncodeSCALE(enc *scale.Encoder) error {
	want := m.Scheme.SignatureLength()
	if want == 0 || len(m.Signature) != want {
		return &scale.EncodeError{
			Kind: scale.ErrValueOutOfRange,
			Msg:  fmt.Sprintf("%s signature of %d bytes", m.Scheme, len(m.Signature)),
		}
	}

	enc.PushByte(byte(m.Scheme))
	enc.Write(m.Signature)

	return nil
}

func (m *MultiSignature) DecodeSCALE(dec *scale.Decoder) error {
	idx, err := dec.DecodeVariant(len(signatureLengths))
	if err != nil {
		return err
	}

	scheme := SignatureScheme(idx)

	sig, err := dec.Read(scheme.SignatureLength())
	if err != nil {
		return err
	}

	*m = MultiSignature{Scheme: scheme, Signature: sig}

	return nil
}

// AddressFormat selects how the signer is written into an extrinsic
type AddressFormat int

const (
	// AddressMultiAddress writes MultiAddress::Id(account), used by current runtimes
	AddressMultiAddress AddressFormat = iota
	// AddressAccountID writes the bare 32 byte account, used by older runtimes
	AddressAccountID
)

func ParseAddressFormat(s string) (AddressFormat, error) {
	switch s {
	case "", "multiaddress":
		return AddressMultiAddress, nil
	case "accountid":
		return AddressAccountID, nil
	default:
		return 0, fmt.Errorf("unknown address format %q", s)
	}
}

func (f AddressFormat) String() string {
	if f == AddressAccountID {
		return "accountid"
	}

	return "multiaddress"
}

// MultiAddress variant indices
const (
	MultiAddressID byte = iota
	MultiAddressIndex
	MultiAddressRaw
	MultiAddress32
	MultiAddress20
)

// SignerAddress is the signer section of a signed extrinsic
type SignerAddress struct {
	Format  AddressFormat
	Account AccountID
}

func (s SignerAddress) EncodeSCALE(enc *scale.Encoder) error {
	if s.Format == AddressMultiAddress {
		enc.PushByte(MultiAddressID)
	}

	enc.Write(s.Account[:])

	return nil
}

// DecodeSCALE reads an address in the format already set on s
func (s *SignerAddress) DecodeSCALE(dec *scale.Decoder) error {
	if s.Format == AddressMultiAddress {
		start := dec.Offset()

		variant, err := dec.ReadByte()
		if err != nil {
			return err
		}

		if variant != MultiAddressID {
			return dec.Fail(scale.ErrInvalidDiscriminant, start, "signer address variant %d", variant)
		}
	}

	return s.Account.DecodeSCALE(dec)
}
