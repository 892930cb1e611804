package extrinsic

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/0xPolygon/polygon-xt/call"
	"github.com/0xPolygon/polygon-xt/crypto"
	"github.com/0xPolygon/polygon-xt/helper/hex"
	"github.com/0xPolygon/polygon-xt/helper/tests"
	"github.com/0xPolygon/polygon-xt/scale"
	"github.com/0xPolygon/polygon-xt/types"
	"github.com/holiman/uint256"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()

	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func readGolden(t *testing.T, name string) []byte {
	t.Helper()

	raw, err := os.ReadFile("testdata/golden/" + name + ".golden")
	require.NoError(t, err)

	return hex.MustDecodeHex(strings.TrimSpace(string(raw)))
}

// fixedSigner returns the same ed25519 shaped signature for every payload
func fixedSigner(payloads *[][]byte) crypto.Signer {
	return crypto.SignerFunc(func(_ context.Context, _ types.AccountID, payload []byte) (types.MultiSignature, error) {
		if payloads != nil {
			*payloads = append(*payloads, payload)
		}

		return types.NewMultiSignature(types.SchemeEd25519, bytes.Repeat([]byte{0xaa}, 64))
	})
}

func fixtureParams() *Params {
	return &Params{
		Nonce: 0,
		Era:   types.ImmortalEra,
		Chain: ChainContext{
			GenesisHash:        tests.FixtureGenesis,
			SpecVersion:        1,
			TransactionVersion: 1,
		},
	}
}

func transferCall(t *testing.T) *call.Call {
	t.Helper()

	enc := call.NewEncoder(tests.FixtureMetadata(t, 12), tests.FixtureRegistry(t))

	c, err := enc.BalancesTransfer(tests.Bob, uint256.NewInt(12345))
	require.NoError(t, err)

	return c
}

func TestBuilder_SignedTransferGolden(t *testing.T) {
	t.Parallel()

	var payloads [][]byte

	ext, err := NewBuilder(fixedSigner(&payloads)).Build(context.Background(), transferCall(t), tests.Alice, fixtureParams())
	require.NoError(t, err)

	require.Len(t, payloads, 1)
	assert.Len(t, payloads[0], 112)
	newGoldie(t).Assert(t, "signing_payload", []byte(hex.EncodeToHex(payloads[0])))
	newGoldie(t).Assert(t, "signed_transfer", []byte(ext.Hex()))

	assert.True(t, ext.IsSigned())
	assert.Equal(t, "0x2d02", hex.EncodeToHex(ext.Bytes()[:2]))
	assert.Equal(t, "0x421a63c97b3ab153a3aff89fe3814f8d5aef015ddbf9cd77e5b1bf148caa929c", ext.Hash().String())
	assert.Equal(t, crypto.Blake2b256(ext.Bytes()), ext.Hash().Bytes())

	encoded, err := scale.EncodeToBytes(ext)
	require.NoError(t, err)
	assert.Equal(t, ext.Bytes(), encoded)
}

func TestBuilder_AccountIDAddress(t *testing.T) {
	t.Parallel()

	ext, err := NewBuilder(fixedSigner(nil), WithAddressFormat(types.AddressAccountID)).
		Build(context.Background(), transferCall(t), tests.Alice, fixtureParams())
	require.NoError(t, err)

	// one byte shorter than the MultiAddress form, without the Id variant
	assert.Equal(t, "0x290284d43593c715", ext.Hex()[:18])
}

func TestBuilder_Unsigned(t *testing.T) {
	t.Parallel()

	ext, err := NewBuilder(nil).BuildUnsigned(transferCall(t))
	require.NoError(t, err)

	assert.False(t, ext.IsSigned())
	assert.Equal(t,
		"0x98040500008eaf04151687736326c9fea17e25fc5287613693c912909cb226aa4794f26a48e5c0",
		ext.Hex(),
	)
}

func TestSigningPayload_LongPayloadIsHashed(t *testing.T) {
	t.Parallel()

	enc := call.NewEncoder(tests.FixtureMetadata(t, 12), tests.FixtureRegistry(t))

	c, err := enc.SystemRemark(bytes.Repeat([]byte{1}, 300))
	require.NoError(t, err)

	p := fixtureParams()

	payload, err := SigningPayload(c.Bytes(), p)
	require.NoError(t, err)

	full := append([]byte{}, c.Bytes()...)
	full = append(full, 0x00, 0x00, 0x00)
	full = append(full, 1, 0, 0, 0, 1, 0, 0, 0)
	full = append(full, tests.FixtureGenesis[:]...)
	full = append(full, tests.FixtureGenesis[:]...)

	require.Greater(t, len(full), maxUnhashedPayload)
	assert.Equal(t, crypto.Blake2b256(full), payload)
}

func TestSigningPayload_MortalUsesBirthHash(t *testing.T) {
	t.Parallel()

	birth := types.BytesToHash(bytes.Repeat([]byte{0x11}, 32))

	p := fixtureParams()
	p.Era = types.NewMortalEra(64, 100)
	p.BirthHash = birth
	p.Nonce = 5

	c := transferCall(t)

	payload, err := SigningPayload(c.Bytes(), p)
	require.NoError(t, err)

	eraBytes, err := scale.EncodeToBytes(p.Era)
	require.NoError(t, err)
	require.Len(t, eraBytes, 2)

	assert.Equal(t, eraBytes, payload[len(c.Bytes()):len(c.Bytes())+2])
	assert.Equal(t, byte(5<<2), payload[len(c.Bytes())+2])
	assert.Equal(t, tests.FixtureGenesis[:], payload[len(payload)-64:len(payload)-32])
	assert.Equal(t, birth[:], payload[len(payload)-32:])
}

func TestSigningPayload_MissingContext(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Params)
		kind   error
	}{
		{"no genesis", func(p *Params) { p.Chain.GenesisHash = types.Hash{} }, ErrMissingChainContext},
		{"no spec version", func(p *Params) { p.Chain.SpecVersion = 0 }, ErrMissingChainContext},
		{"mortal without birth", func(p *Params) { p.Era = types.NewMortalEra(64, 10) }, ErrMissingChainContext},
		{"tip over u128", func(p *Params) { p.Tip = new(uint256.Int).Lsh(uint256.NewInt(1), 128) }, scale.ErrValueOutOfRange},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			p := fixtureParams()
			c.mutate(p)

			_, err := SigningPayload([]byte{0, 0}, p)
			assert.ErrorIs(t, err, c.kind)

			_, err = NewBuilder(fixedSigner(nil)).Build(context.Background(), transferCall(t), tests.Alice, p)
			assert.ErrorIs(t, err, c.kind)
		})
	}
}

func TestBuilder_SigningError(t *testing.T) {
	t.Parallel()

	locked := errors.New("keystore locked")

	signer := crypto.SignerFunc(func(context.Context, types.AccountID, []byte) (types.MultiSignature, error) {
		return types.MultiSignature{}, locked
	})

	_, err := NewBuilder(signer).Build(context.Background(), transferCall(t), tests.Alice, fixtureParams())
	require.Error(t, err)

	var signErr *SigningError
	require.ErrorAs(t, err, &signErr)
	assert.ErrorIs(t, err, locked)
	assert.Equal(t, "keystore locked", err.Error())

	short := crypto.SignerFunc(func(context.Context, types.AccountID, []byte) (types.MultiSignature, error) {
		return types.MultiSignature{Scheme: types.SchemeEd25519, Signature: []byte{1, 2}}, nil
	})

	_, err = NewBuilder(short).Build(context.Background(), transferCall(t), tests.Alice, fixtureParams())
	assert.ErrorAs(t, err, &signErr)

	_, err = NewBuilder(crypto.NewKeyring()).Build(context.Background(), transferCall(t), tests.Alice, fixtureParams())
	assert.ErrorIs(t, err, crypto.ErrUnknownAccount)
}

func TestBuilder_KeyringRoundTrip(t *testing.T) {
	t.Parallel()

	ed, err := crypto.GenerateEd25519Key()
	require.NoError(t, err)

	ec, err := crypto.GenerateECDSAKey()
	require.NoError(t, err)

	builder := NewBuilder(crypto.NewKeyring(ed, ec))
	c := transferCall(t)
	p := fixtureParams()
	p.Nonce = 7
	p.Tip = uint256.NewInt(1000)

	payload, err := SigningPayload(c.Bytes(), p)
	require.NoError(t, err)

	for _, key := range []crypto.Key{ed, ec} {
		ext, err := builder.Build(context.Background(), c, key.Account(), p)
		require.NoError(t, err)

		decoded, err := Decode(ext.Bytes(), types.AddressMultiAddress)
		require.NoError(t, err)

		require.True(t, decoded.IsSigned())
		assert.Equal(t, key.Account(), decoded.Signature.Signer.Account)
		assert.Equal(t, key.Scheme(), decoded.Signature.Signature.Scheme)
		assert.Equal(t, uint64(7), decoded.Signature.Nonce)
		assert.Equal(t, uint64(1000), decoded.Signature.Tip.Uint64())
		assert.Equal(t, c.Bytes(), decoded.Call())
		assert.Equal(t, ext.Hash(), decoded.Hash())

		assert.True(t, key.Verify(payload, decoded.Signature.Signature.Signature))
	}
}

func TestDecode_Golden(t *testing.T) {
	t.Parallel()

	raw := readGolden(t, "signed_transfer")

	ext, err := Decode(raw, types.AddressMultiAddress)
	require.NoError(t, err)

	assert.Equal(t, Version, ext.Version)
	assert.Equal(t, tests.Alice, ext.Signature.Signer.Account)
	assert.True(t, ext.Signature.Era.IsImmortal())
	assert.Equal(t, raw, ext.Bytes())

	enc := call.NewEncoder(tests.FixtureMetadata(t, 12), tests.FixtureRegistry(t))

	decoded, err := ext.DecodeCall(enc)
	require.NoError(t, err)
	assert.Equal(t, "Balances", decoded.Module)
	assert.Equal(t, "transfer", decoded.Name)
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	raw := readGolden(t, "signed_transfer")

	_, err := Decode(raw[:len(raw)-1], types.AddressMultiAddress)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	badVersion := append([]byte{}, raw...)
	badVersion[2] = 0x85

	_, err = Decode(badVersion, types.AddressMultiAddress)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	// unsigned with a single call byte
	_, err = Decode([]byte{0x08, 0x04, 0x05}, types.AddressMultiAddress)
	assert.ErrorIs(t, err, scale.ErrTruncatedInput)

	// multiaddress index variant is not a signer
	badAddress := append([]byte{}, raw...)
	badAddress[3] = types.MultiAddressIndex

	_, err = Decode(badAddress, types.AddressMultiAddress)
	assert.ErrorIs(t, err, scale.ErrInvalidDiscriminant)
}
