package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want *uint256.Int
		err  bool
	}{
		{"0", uint256.NewInt(0), false},
		{"1000000000000", uint256.NewInt(1_000_000_000_000), false},
		{"0x10", uint256.NewInt(16), false},
		{" 42 ", uint256.NewInt(42), false},
		{"", nil, true},
		{"-1", nil, true},
		{"0xzz", nil, true},
		{"12ab", nil, true},
	}

	for _, c := range cases {
		got, err := ParseAmount(c.in)
		if c.err {
			assert.Error(t, err, c.in)

			continue
		}

		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseUint64orHex(t *testing.T) {
	t.Parallel()

	v, err := ParseUint64orHex("0xff")
	require.NoError(t, err)
	assert.Equal(t, uint64(255), v)

	_, err = ParseUint64orHex("18446744073709551616")
	assert.ErrorContains(t, err, "overflows")
}

func TestSetupDataDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "data")

	require.NoError(t, SetupDataDir(dir, []string{"keys", "db"}))

	assert.True(t, DirectoryExists(dir))
	assert.True(t, DirectoryExists(filepath.Join(dir, "keys")))
	assert.True(t, DirectoryExists(filepath.Join(dir, "db")))

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, []byte{1}, 0600))
	assert.False(t, DirectoryExists(file))

	// running twice is fine
	require.NoError(t, SetupDataDir(dir, []string{"keys"}))
}
