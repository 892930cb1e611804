package crypto

import (
	"bytes"
	"crypto/ecdsa"

	"github.com/0xPolygon/polygon-xt/types"
)

var _ Key = (*ECDSAKey)(nil)

// ECDSAKey signs the blake2b-256 digest of a payload on secp256k1. The account
// id is the blake2b-256 digest of the compressed public key.
type ECDSAKey struct {
	priv       *ecdsa.PrivateKey
	compressed []byte
	account    types.AccountID
}

// NewECDSAKey returns new instance of ECDSAKey
func NewECDSAKey(priv *ecdsa.PrivateKey) (*ECDSAKey, error) {
	compressed, err := CompressPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, err
	}

	var account types.AccountID
	copy(account[:], Blake2b256(compressed))

	return &ECDSAKey{
		priv:       priv,
		compressed: compressed,
		account:    account,
	}, nil
}

// GenerateECDSAKey generates an ECDSA private key and wraps it into ECDSA key
func GenerateECDSAKey() (*ECDSAKey, error) {
	privKey, err := GenerateECDSAPrivateKey()
	if err != nil {
		return nil, err
	}

	return NewECDSAKey(privKey)
}

// NewECDSAKeyFromRawPrivECDSA parses a raw 32 byte secret
func NewECDSAKeyFromRawPrivECDSA(rawPrivKey []byte) (*ECDSAKey, error) {
	priv, err := ParseECDSAPrivateKey(rawPrivKey)
	if err != nil {
		return nil, err
	}

	return NewECDSAKey(priv)
}

func (k *ECDSAKey) Account() types.AccountID {
	return k.account
}

func (k *ECDSAKey) Scheme() types.SignatureScheme {
	return types.SchemeEcdsa
}

// PublicKey returns the compressed public key
func (k *ECDSAKey) PublicKey() []byte {
	return append([]byte(nil), k.compressed...)
}

// Sign hashes payload with blake2b-256 and signs the digest, producing [R || S || V]
func (k *ECDSAKey) Sign(payload []byte) ([]byte, error) {
	return Sign(k.priv, Blake2b256(payload))
}

func (k *ECDSAKey) Verify(payload, signature []byte) bool {
	pub, err := RecoverPubKey(signature, Blake2b256(payload))
	if err != nil {
		return false
	}

	compressed, err := CompressPublicKey(pub)
	if err != nil {
		return false
	}

	return bytes.Equal(compressed, k.compressed)
}

// MarshalPrivateKey returns 256-bit big-endian binary-encoded representation of the private key
// padded to a length of 32 bytes.
func (k *ECDSAKey) MarshalPrivateKey() ([]byte, error) {
	return MarshalECDSAPrivateKey(k.priv)
}

// String returns the SS58 address of the key
func (k *ECDSAKey) String() string {
	return k.account.String()
}
