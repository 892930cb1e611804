package txrelayer

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/0xPolygon/polygon-xt/crypto"
	"github.com/0xPolygon/polygon-xt/extrinsic"
	"github.com/0xPolygon/polygon-xt/helper/hex"
	"github.com/0xPolygon/polygon-xt/helper/tests"
	"github.com/0xPolygon/polygon-xt/metadata"
	"github.com/0xPolygon/polygon-xt/registry"
	"github.com/0xPolygon/polygon-xt/storage/memory"
	"github.com/0xPolygon/polygon-xt/submission"
	"github.com/0xPolygon/polygon-xt/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var finalizedBlock = types.BytesToHash(bytes.Repeat([]byte{0x11}, 32))

type mockChain struct {
	*submission.MockChannel

	lock          sync.Mutex
	metadataBlob  []byte
	metadataCalls int
	specVersion   uint32
	headNumber    uint64
	nonce         uint64
	values        map[string][]byte
	nonceErr      error
}

var _ Chain = (*mockChain)(nil)

func newMockChain(t *testing.T, subs ...*submission.MockSubscription) *mockChain {
	t.Helper()

	blob, err := metadata.Encode(tests.FixtureMetadata(t, 12))
	require.NoError(t, err)

	return &mockChain{
		MockChannel:  submission.NewMockChannel(subs...),
		metadataBlob: blob,
		specVersion:  268,
		headNumber:   100,
		values:       map[string][]byte{},
	}
}

func (m *mockChain) GetBlockHash(_ context.Context, n uint64) (types.Hash, error) {
	if n == 0 {
		return tests.FixtureGenesis, nil
	}

	return types.BytesToHash(bytes.Repeat([]byte{byte(n)}, 32)), nil
}

func (m *mockChain) GetRuntimeVersion(context.Context, *types.Hash) (*types.RuntimeVersion, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	return &types.RuntimeVersion{SpecVersion: m.specVersion, TransactionVersion: 2}, nil
}

func (m *mockChain) GetMetadata(context.Context, *types.Hash) ([]byte, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.metadataCalls++

	return m.metadataBlob, nil
}

func (m *mockChain) GetFinalizedHead(context.Context) (types.Hash, error) {
	return finalizedBlock, nil
}

func (m *mockChain) GetHeader(_ context.Context, hash *types.Hash) (*types.Header, error) {
	return &types.Header{Number: m.headNumber}, nil
}

func (m *mockChain) GetStorage(_ context.Context, key []byte, _ *types.Hash) ([]byte, bool, error) {
	v, ok := m.values[hex.EncodeToHex(key)]

	return v, ok, nil
}

func (m *mockChain) AccountNextIndex(context.Context, types.AccountID, uint16) (uint64, error) {
	return m.nonce, m.nonceErr
}

func (m *mockChain) calls() int {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.metadataCalls
}

func testKey(t *testing.T) crypto.Key {
	t.Helper()

	key, err := crypto.NewEd25519KeyFromSeed(bytes.Repeat([]byte{0x01}, 32))
	require.NoError(t, err)

	return key
}

func newTestRelayer(t *testing.T, chain Chain, opts ...RelayerOption) *TxRelayer {
	t.Helper()

	r, err := NewTxRelayer(append([]RelayerOption{WithChain(chain)}, opts...)...)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, r.Close())
	})

	return r
}

func TestTxRelayer_MetadataCache(t *testing.T) {
	t.Parallel()

	chain := newMockChain(t)
	store, err := memory.NewMemoryStorage(nil)
	require.NoError(t, err)

	r := newTestRelayer(t, chain, WithStorage(store))

	meta, rv, err := r.Metadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(268), rv.SpecVersion)
	assert.Equal(t, uint8(12), meta.Version)

	_, err = r.Encoder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, chain.calls())

	// a second relayer reads the blob from the shared storage
	other := newTestRelayer(t, chain, WithStorage(store))

	_, _, err = other.Metadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, chain.calls())

	_, err = r.RefreshMetadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, chain.calls())

	// a runtime upgrade misses the cache
	chain.lock.Lock()
	chain.specVersion = 269
	chain.lock.Unlock()

	_, rv, err = r.Metadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(269), rv.SpecVersion)
	assert.Equal(t, 3, chain.calls())
}

func TestTxRelayer_MetadataWithUnknownTypes(t *testing.T) {
	t.Parallel()

	modules := tests.FixtureModules()
	modules[0].Calls = append(modules[0].Calls, &metadata.Call{
		Name: "weird",
		Args: []metadata.Arg{{Name: "x", Type: "TotallyUnknownType"}},
	})

	meta, err := metadata.New(12, modules, tests.FixtureExtrinsic())
	require.NoError(t, err)

	blob, err := metadata.Encode(meta)
	require.NoError(t, err)

	chain := newMockChain(t)
	chain.metadataBlob = blob

	r := newTestRelayer(t, chain)

	assertUnresolved := func(err error) {
		t.Helper()

		var merr *metadata.Error

		require.ErrorAs(t, err, &merr)
		assert.ErrorIs(t, err, registry.ErrUnknownType)
		assert.Contains(t, err.Error(), "call System.weird argument x")
	}

	got, _, err := r.Metadata(context.Background())
	assertUnresolved(err)
	assert.Nil(t, got)

	_, err = r.Encoder(context.Background())
	assertUnresolved(err)

	_, err = r.RefreshMetadata(context.Background())
	assertUnresolved(err)

	// an alias for the unknown name makes the same blob usable
	reg, err := registry.DefaultBuilder().RegisterAlias("TotallyUnknownType", "u32").Build()
	require.NoError(t, err)

	aliased := newTestRelayer(t, chain, WithRegistry(reg))

	_, _, err = aliased.Metadata(context.Background())
	require.NoError(t, err)
}

func TestTxRelayer_Params(t *testing.T) {
	t.Parallel()

	chain := newMockChain(t)
	chain.nonce = 5

	tip := uint256.NewInt(10)

	r := newTestRelayer(t, chain, WithTip(tip))

	params, err := r.Params(context.Background(), tests.Alice)
	require.NoError(t, err)

	assert.Equal(t, uint64(5), params.Nonce)
	assert.True(t, params.Era.IsImmortal())
	assert.Equal(t, tests.FixtureGenesis, params.Chain.GenesisHash)
	assert.Equal(t, uint32(268), params.Chain.SpecVersion)
	assert.Equal(t, uint32(2), params.Chain.TransactionVersion)
	assert.Equal(t, tip, params.Tip)
	require.NoError(t, params.Validate())

	mortal := newTestRelayer(t, chain, WithEraPeriod(64))

	params, err = mortal.Params(context.Background(), tests.Alice)
	require.NoError(t, err)

	assert.False(t, params.Era.IsImmortal())
	assert.Equal(t, uint64(64), params.Era.Period)
	assert.Equal(t, uint64(100), params.Era.Birth(100))
	assert.Equal(t, finalizedBlock, params.BirthHash)
	require.NoError(t, params.Validate())

	chain.nonceErr = errors.New("boom")

	_, err = r.Params(context.Background(), tests.Alice)
	assert.ErrorContains(t, err, "boom")
}

func TestTxRelayer_SendCall(t *testing.T) {
	t.Parallel()

	sub := submission.NewMockSubscription("1")
	sub.Push(`"ready"`, `{"inBlock":"`+finalizedBlock.String()+`"}`, `{"finalized":"`+finalizedBlock.String()+`"}`)

	chain := newMockChain(t, sub)
	store, err := memory.NewMemoryStorage(nil)
	require.NoError(t, err)

	key := testKey(t)
	r := newTestRelayer(t, chain, WithStorage(store), WithSigner(crypto.NewKeyring(key)))

	c, err := r.Call(context.Background(), "System", "remark", []byte("hi"))
	require.NoError(t, err)

	watch, err := r.SendCall(context.Background(), key.Account(), c)
	require.NoError(t, err)

	status, err := r.Wait(context.Background(), watch)
	require.NoError(t, err)
	assert.Equal(t, types.StatusFinalized, status.Kind)

	// the submitted bytes decode back to a signed extrinsic of the call
	submitted := chain.Submitted()
	require.Len(t, submitted, 1)

	ext, err := extrinsic.Decode(submitted[0], types.AddressMultiAddress)
	require.NoError(t, err)
	assert.True(t, ext.IsSigned())
	assert.Equal(t, c.Bytes(), ext.Call())
	assert.Equal(t, watch.Hash(), ext.Hash())

	raw, ok, err := store.ReadExtrinsic(watch.Hash())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, submitted[0], raw)

	journal, err := store.ReadJournal(watch.Hash())
	require.NoError(t, err)
	require.Len(t, journal, 3)
	assert.Equal(t, types.StatusFinalized, journal[2].Status.Kind)
}

func TestTxRelayer_SendCallAndWait_Failures(t *testing.T) {
	t.Parallel()

	sub := submission.NewMockSubscription("1")
	sub.Push(`"ready"`, `"dropped"`)

	chain := newMockChain(t, sub)
	key := testKey(t)
	r := newTestRelayer(t, chain, WithSigner(crypto.NewKeyring(key)))

	c, err := r.Call(context.Background(), "System", "remark", []byte("hi"))
	require.NoError(t, err)

	status, err := r.SendCallAndWait(context.Background(), key.Account(), c)
	assert.ErrorIs(t, err, ErrExtrinsicFailed)
	assert.Equal(t, types.StatusDropped, status.Kind)

	// the keyring holds no key for bob
	_, err = r.SendCallAndWait(context.Background(), tests.Bob, c)

	var signErr *extrinsic.SigningError
	assert.ErrorAs(t, err, &signErr)
	assert.ErrorIs(t, err, crypto.ErrUnknownAccount)

	unsigned := newTestRelayer(t, chain)

	_, err = unsigned.SendCall(context.Background(), key.Account(), c)
	assert.ErrorIs(t, err, ErrNoSigner)

	chain.Reject(errors.New("1010: Invalid Transaction"))

	_, err = r.SendCall(context.Background(), key.Account(), c)

	var subErr *submission.SubmissionError
	assert.ErrorAs(t, err, &subErr)
}

func TestTxRelayer_FetchStorage(t *testing.T) {
	t.Parallel()

	chain := newMockChain(t)
	r := newTestRelayer(t, chain)

	meta := tests.FixtureMetadata(t, 12)

	key, err := meta.StorageKey("System", "AccountNonce", tests.Alice[:])
	require.NoError(t, err)

	chain.values[hex.EncodeToHex(key)] = []byte{0x2a, 0, 0, 0}

	v, err := r.FetchStorage(context.Background(), "System", "AccountNonce", tests.Alice)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), v)

	// a missing value reads as the default
	v, err = r.FetchStorage(context.Background(), "System", "AccountNonce", tests.Bob)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v)

	_, err = r.FetchStorage(context.Background(), "System", "Number", tests.Alice)
	assert.ErrorIs(t, err, metadata.ErrStorageKeyCount)

	_, err = r.FetchStorage(context.Background(), "System", "Missing")
	assert.ErrorIs(t, err, metadata.ErrStorageEntryNotFound)
}
