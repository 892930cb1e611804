package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/0xPolygon/polygon-xt/types"
)

var _ Key = (*Ed25519Key)(nil)

// Ed25519Key signs payloads as they are; the account id is the public key
type Ed25519Key struct {
	priv    ed25519.PrivateKey
	account types.AccountID
}

func NewEd25519KeyFromSeed(seed []byte) (*Ed25519Key, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid ed25519 seed length (%dB), should be %dB", len(seed), ed25519.SeedSize)
	}

	priv := ed25519.NewKeyFromSeed(seed)

	var account types.AccountID
	copy(account[:], priv.Public().(ed25519.PublicKey)) //nolint:forcetypeassert

	return &Ed25519Key{priv: priv, account: account}, nil
}

func GenerateEd25519Key() (*Ed25519Key, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}

	return NewEd25519KeyFromSeed(seed)
}

func (k *Ed25519Key) Account() types.AccountID {
	return k.account
}

func (k *Ed25519Key) Scheme() types.SignatureScheme {
	return types.SchemeEd25519
}

func (k *Ed25519Key) Sign(payload []byte) ([]byte, error) {
	return ed25519.Sign(k.priv, payload), nil
}

func (k *Ed25519Key) Verify(payload, signature []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(k.account[:]), payload, signature)
}

// MarshalPrivateKey returns the 32 byte seed
func (k *Ed25519Key) MarshalPrivateKey() ([]byte, error) {
	return k.priv.Seed(), nil
}

// String returns the SS58 address of the key
func (k *Ed25519Key) String() string {
	return k.account.String()
}
