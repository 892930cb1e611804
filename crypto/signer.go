package crypto

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/0xPolygon/polygon-xt/types"
)

// ErrUnknownAccount is returned when a signer holds no key for the requested account
var ErrUnknownAccount = errors.New("no key for account")

// Signer produces the signature of a signing payload on behalf of an account.
// Implementations may be remote or external processes and should honor ctx.
type Signer interface {
	Sign(ctx context.Context, account types.AccountID, payload []byte) (types.MultiSignature, error)
}

// SignerFunc adapts a function to the Signer interface
type SignerFunc func(ctx context.Context, account types.AccountID, payload []byte) (types.MultiSignature, error)

func (f SignerFunc) Sign(ctx context.Context, account types.AccountID, payload []byte) (types.MultiSignature, error) {
	return f(ctx, account, payload)
}

// Key is a key pair held in process
type Key interface {
	Account() types.AccountID
	Scheme() types.SignatureScheme
	Sign(payload []byte) ([]byte, error)
	Verify(payload, signature []byte) bool
	MarshalPrivateKey() ([]byte, error)
}

// Keyring is a Signer backed by in-process keys
type Keyring struct {
	lock sync.RWMutex
	keys map[types.AccountID]Key
}

var _ Signer = (*Keyring)(nil)

func NewKeyring(keys ...Key) *Keyring {
	k := &Keyring{keys: make(map[types.AccountID]Key, len(keys))}

	for _, key := range keys {
		k.Add(key)
	}

	return k
}

func (k *Keyring) Add(key Key) {
	k.lock.Lock()
	defer k.lock.Unlock()

	k.keys[key.Account()] = key
}

// Accounts lists the accounts the keyring can sign for, in byte order
func (k *Keyring) Accounts() []types.AccountID {
	k.lock.RLock()
	defer k.lock.RUnlock()

	out := make([]types.AccountID, 0, len(k.keys))
	for acc := range k.keys {
		out = append(out, acc)
	}

	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})

	return out
}

func (k *Keyring) Sign(ctx context.Context, account types.AccountID, payload []byte) (types.MultiSignature, error) {
	if err := ctx.Err(); err != nil {
		return types.MultiSignature{}, err
	}

	k.lock.RLock()
	key, ok := k.keys[account]
	k.lock.RUnlock()

	if !ok {
		return types.MultiSignature{}, fmt.Errorf("%w: %s", ErrUnknownAccount, account)
	}

	sig, err := key.Sign(payload)
	if err != nil {
		return types.MultiSignature{}, err
	}

	return types.NewMultiSignature(key.Scheme(), sig)
}
