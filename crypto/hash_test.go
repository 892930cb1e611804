package crypto

import (
	"testing"

	"github.com/0xPolygon/polygon-xt/helper/hex"
	"github.com/stretchr/testify/assert"
)

func TestTwox(t *testing.T) {
	t.Parallel()

	// storage prefixes of a stock runtime
	cases := []struct {
		input    string
		hasher   func([]byte) []byte
		expected string
	}{
		{"System", Twox128, "0x26aa394eea5630e07c48ae0c9558cef7"},
		{"Account", Twox128, "0xb99d880ec681799c0cf30e8886371da9"},
		{"Balances", Twox128, "0xc2261276cc9d1f8598ea4b6a74b15c2f"},
		{"Sudo", Twox128, "0x5c0d1176a568c1f92944340dbfed9e9c"},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, hex.EncodeToHex(c.hasher([]byte(c.input))), c.input)
	}

	assert.Len(t, Twox64([]byte("x")), 8)
	assert.Len(t, Twox256([]byte("x")), 32)
	assert.Equal(t, Twox128([]byte("x")), Twox256([]byte("x"))[:16])
}

func TestBlake2b(t *testing.T) {
	t.Parallel()

	assert.Len(t, Blake2b128([]byte("abc")), 16)
	assert.Equal(t,
		"0xbddd813c634239723171ef3fee98579b94964e3bb1cb3e427262c8c068d52319",
		hex.EncodeToHex(Blake2b256([]byte("abc"))),
	)
	assert.Equal(t, Blake2b256([]byte("abc")), Blake2b256([]byte("a"), []byte("bc")))
}
