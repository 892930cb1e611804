package extrinsic

import (
	"errors"
	"fmt"

	"github.com/0xPolygon/polygon-xt/call"
	"github.com/0xPolygon/polygon-xt/crypto"
	"github.com/0xPolygon/polygon-xt/helper/hex"
	"github.com/0xPolygon/polygon-xt/scale"
	"github.com/0xPolygon/polygon-xt/types"
	"github.com/holiman/uint256"
)

const (
	// Version is the extrinsic format this package builds
	Version uint8 = 4

	signedBit   uint8 = 0x80
	versionMask uint8 = 0x7f
)

var (
	// ErrMissingChainContext is returned when the genesis hash, the spec version
	// or the birth block of a mortal era is missing
	ErrMissingChainContext = errors.New("missing chain context")

	ErrUnsupportedVersion = errors.New("unsupported extrinsic version")
	ErrLengthMismatch     = errors.New("extrinsic length prefix mismatch")
)

// SigningError wraps a signer failure. Its message is the signer's message.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return e.Err.Error()
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

// Signature is the signed section of an extrinsic
type Signature struct {
	Signer    types.SignerAddress
	Signature types.MultiSignature
	Era       types.Era
	Nonce     uint64
	Tip       *uint256.Int
}

func (s *Signature) EncodeSCALE(enc *scale.Encoder) error {
	if err := s.Signer.EncodeSCALE(enc); err != nil {
		return err
	}

	if err := s.Signature.EncodeSCALE(enc); err != nil {
		return err
	}

	if err := s.Era.EncodeSCALE(enc); err != nil {
		return err
	}

	enc.EncodeCompact(s.Nonce)

	if s.Tip == nil {
		enc.EncodeCompact(0)
	} else {
		enc.EncodeCompactBig(s.Tip)
	}

	return nil
}

func (s *Signature) DecodeSCALE(dec *scale.Decoder) error {
	if err := s.Signer.DecodeSCALE(dec); err != nil {
		return err
	}

	if err := s.Signature.DecodeSCALE(dec); err != nil {
		return err
	}

	if err := s.Era.DecodeSCALE(dec); err != nil {
		return err
	}

	nonce, err := dec.DecodeCompact()
	if err != nil {
		return err
	}

	tip, err := dec.DecodeCompactBig()
	if err != nil {
		return err
	}

	s.Nonce = nonce
	s.Tip = tip

	return nil
}

// Extrinsic is a transaction in its transmitted form. It is immutable once built.
type Extrinsic struct {
	Version   uint8
	Signature *Signature
	call      []byte

	// encoded is the length-prefixed wire form
	encoded []byte
}

func newExtrinsic(sig *Signature, callBytes []byte) (*Extrinsic, error) {
	ext := &Extrinsic{
		Version:   Version,
		Signature: sig,
		call:      callBytes,
	}

	body := scale.AcquireEncoder()
	defer scale.ReleaseEncoder(body)

	if err := ext.encodeBody(body); err != nil {
		return nil, err
	}

	enc := scale.AcquireEncoder()
	defer scale.ReleaseEncoder(enc)

	enc.EncodeBytes(body.Bytes())
	ext.encoded = enc.CopyBytes()

	return ext, nil
}

func (e *Extrinsic) encodeBody(enc *scale.Encoder) error {
	if e.Signature == nil {
		enc.PushByte(e.Version)
	} else {
		enc.PushByte(e.Version | signedBit)

		if err := e.Signature.EncodeSCALE(enc); err != nil {
			return err
		}
	}

	enc.Write(e.call)

	return nil
}

func (e *Extrinsic) IsSigned() bool {
	return e.Signature != nil
}

// Call returns a copy of the call bytes
func (e *Extrinsic) Call() []byte {
	return append([]byte(nil), e.call...)
}

// Bytes returns a copy of the length-prefixed wire form
func (e *Extrinsic) Bytes() []byte {
	return append([]byte(nil), e.encoded...)
}

// Hash is the blake2b-256 digest of the length-prefixed bytes, the hash a node reports
func (e *Extrinsic) Hash() types.Hash {
	return types.BytesToHash(crypto.Blake2b256(e.encoded))
}

func (e *Extrinsic) Hex() string {
	return hex.EncodeToHex(e.encoded)
}

func (e *Extrinsic) EncodeSCALE(enc *scale.Encoder) error {
	enc.Write(e.encoded)

	return nil
}

// DecodeCall resolves the call bytes against the encoder's metadata
func (e *Extrinsic) DecodeCall(enc *call.Encoder) (*call.Decoded, error) {
	return enc.Decode(e.call)
}

// Unsigned wraps call bytes into an unsigned extrinsic
func Unsigned(c *call.Call) (*Extrinsic, error) {
	return newExtrinsic(nil, c.Bytes())
}

// Decode reads a length-prefixed extrinsic. The signer address is read in format.
func Decode(b []byte, format types.AddressFormat) (*Extrinsic, error) {
	dec := scale.NewDecoder(b)

	n, err := dec.DecodeLength()
	if err != nil {
		return nil, err
	}

	if n != dec.Remaining() {
		return nil, fmt.Errorf("%w: prefix says %d bytes, %d follow", ErrLengthMismatch, n, dec.Remaining())
	}

	start := dec.Offset()

	version, err := dec.ReadByte()
	if err != nil {
		return nil, err
	}

	if version&versionMask != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version&versionMask)
	}

	ext := &Extrinsic{Version: version & versionMask}

	if version&signedBit != 0 {
		sig := &Signature{Signer: types.SignerAddress{Format: format}}
		if err := dec.Decode(sig); err != nil {
			return nil, err
		}

		ext.Signature = sig
	}

	if dec.Remaining() < 2 {
		return nil, dec.Fail(scale.ErrTruncatedInput, dec.Offset(), "call needs at least 2 bytes, %d left", dec.Remaining())
	}

	if ext.call, err = dec.Read(dec.Remaining()); err != nil {
		return nil, err
	}

	ext.encoded = append([]byte(nil), b[:start+n]...)

	return ext, nil
}
