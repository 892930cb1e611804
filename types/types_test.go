package types

import (
	"encoding/json"
	"testing"

	"github.com/0xPolygon/polygon-xt/helper/hex"
	"github.com/0xPolygon/polygon-xt/scale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alicePub = "0xd43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"
	bobPub   = "0x8eaf04151687736326c9fea17e25fc5287613693c912909cb226aa4794f26a48"
)

func TestSS58_KnownAccounts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		pub  string
		ss58 string
	}{
		{alicePub, "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"},
		{bobPub, "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"},
	}

	for _, c := range cases {
		id, err := ParseAccountID(c.pub)
		require.NoError(t, err)

		assert.Equal(t, c.ss58, id.String())

		decoded, prefix, err := DecodeSS58(c.ss58)
		require.NoError(t, err)
		assert.Equal(t, id, decoded)
		assert.Equal(t, DefaultSS58Prefix, prefix)
	}
}

func TestSS58_PrefixRoundTrip(t *testing.T) {
	t.Parallel()

	id, err := ParseAccountID(alicePub)
	require.NoError(t, err)

	for _, prefix := range []uint16{0, 2, 42, 63, 64, 255, 1284, 16383} {
		addr := id.SS58(prefix)

		decoded, gotPrefix, err := DecodeSS58(addr)
		require.NoError(t, err, "prefix %d", prefix)
		assert.Equal(t, id, decoded)
		assert.Equal(t, prefix, gotPrefix)
	}
}

func TestSS58_BadChecksum(t *testing.T) {
	t.Parallel()

	// last character altered
	_, _, err := DecodeSS58("5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQZ")
	assert.Error(t, err)

	_, _, err = DecodeSS58("0OIl")
	assert.ErrorIs(t, err, ErrInvalidSS58)
}

func TestAccountID_Text(t *testing.T) {
	t.Parallel()

	var id AccountID

	require.NoError(t, json.Unmarshal([]byte(`"5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"`), &id))
	assert.Equal(t, bobPub, id.Hex())

	out, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"`, string(out))
}

func TestHash_Text(t *testing.T) {
	t.Parallel()

	h, err := StringToHash(bobPub)
	require.NoError(t, err)
	assert.Equal(t, bobPub, h.String())

	_, err = StringToHash("0x01")
	assert.Error(t, err)

	assert.Equal(t, byte(0x01), BytesToHash([]byte{0x01})[31])
}

func TestEra_Encoding(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		era     Era
		encoded []byte
	}{
		{"immortal", ImmortalEra, []byte{0x00}},
		{"period 64 phase 42", NewMortalEra(64, 42), []byte{0xa5, 0x02}},
		{"period 4 phase 0", NewMortalEra(4, 0), []byte{0x01, 0x00}},
		{"quantized phase", NewMortalEra(32768, 20000), []byte{0x4e, 0x9c}},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			b, err := scale.EncodeToBytes(c.era)
			require.NoError(t, err)
			assert.Equal(t, c.encoded, b)

			var decoded Era
			require.NoError(t, scale.DecodeFromBytes(b, &decoded))
			assert.Equal(t, c.era, decoded)
		})
	}
}

func TestEra_Construction(t *testing.T) {
	t.Parallel()

	cases := []struct {
		period, current uint64
		wantPeriod      uint64
		wantPhase       uint64
	}{
		{64, 42, 64, 42},
		{1, 5, 4, 1},
		{100, 1000, 128, 1000 % 128},
		{1 << 20, 70000, 1 << 16, (70000 % (1 << 16)) / 16 * 16},
	}

	for _, c := range cases {
		era := NewMortalEra(c.period, c.current)
		assert.True(t, era.Mortal)
		assert.Equal(t, c.wantPeriod, era.Period)
		assert.Equal(t, c.wantPhase, era.Phase)
	}
}

func TestEra_BirthDeath(t *testing.T) {
	t.Parallel()

	era := NewMortalEra(64, 42)

	assert.Equal(t, uint64(42), era.Birth(42))
	assert.Equal(t, uint64(42), era.Birth(100))
	assert.Equal(t, uint64(106), era.Birth(106))
	assert.Equal(t, uint64(42), era.Birth(10))
	assert.Equal(t, uint64(170), era.Death(106))

	assert.Equal(t, uint64(0), ImmortalEra.Birth(1000))
}

func TestEra_DecodeInvalid(t *testing.T) {
	t.Parallel()

	var era Era

	require.NoError(t, scale.DecodeFromBytes([]byte{0x00}, &era))
	assert.True(t, era.IsImmortal())

	// period 2 is below the minimum
	err := scale.DecodeFromBytes([]byte{0x10, 0x00}, &era)
	assert.ErrorIs(t, err, scale.ErrInvalidDiscriminant)

	// phase 4 in a period of 4
	err = scale.DecodeFromBytes([]byte{0x41, 0x00}, &era)
	assert.ErrorIs(t, err, scale.ErrInvalidDiscriminant)

	err = scale.DecodeFromBytes([]byte{0xa5}, &era)
	assert.ErrorIs(t, err, scale.ErrTruncatedInput)
}

func TestMultiSignature_Encoding(t *testing.T) {
	t.Parallel()

	sig, err := NewMultiSignature(SchemeEcdsa, make([]byte, 65))
	require.NoError(t, err)

	b, err := scale.EncodeToBytes(sig)
	require.NoError(t, err)
	require.Len(t, b, 66)
	assert.Equal(t, byte(2), b[0])

	var decoded MultiSignature
	require.NoError(t, scale.DecodeFromBytes(b, &decoded))
	assert.Equal(t, sig, decoded)

	_, err = NewMultiSignature(SchemeSr25519, make([]byte, 65))
	assert.Error(t, err)

	err = scale.DecodeFromBytes(append([]byte{3}, make([]byte, 64)...), &decoded)
	assert.ErrorIs(t, err, scale.ErrInvalidDiscriminant)
}

func TestSignerAddress_Formats(t *testing.T) {
	t.Parallel()

	id, err := ParseAccountID(alicePub)
	require.NoError(t, err)

	multi, err := scale.EncodeToBytes(SignerAddress{Account: id})
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0x00}, id[:]...), multi)

	raw, err := scale.EncodeToBytes(SignerAddress{Format: AddressAccountID, Account: id})
	require.NoError(t, err)
	assert.Equal(t, id[:], raw)

	decoded := SignerAddress{Format: AddressMultiAddress}
	require.NoError(t, scale.DecodeFromBytes(multi, &decoded))
	assert.Equal(t, id, decoded.Account)

	bad := append([]byte{0x01}, id[:]...)
	assert.ErrorIs(t, scale.DecodeFromBytes(bad, &decoded), scale.ErrInvalidDiscriminant)
}

func TestHexBytes_Text(t *testing.T) {
	t.Parallel()

	var b HexBytes

	require.NoError(t, json.Unmarshal([]byte(`"0x0102ff"`), &b))
	assert.Equal(t, HexBytes{0x01, 0x02, 0xff}, b)
	assert.Equal(t, "0x0102ff", b.String())
	assert.Equal(t, hex.MustDecodeHex("0x0102ff"), b.Bytes())
}
