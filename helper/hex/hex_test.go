package hex

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDecodeUint64 verifies that uint64 values
// are properly decoded from hex
func TestDecodeUint64(t *testing.T) {
	t.Parallel()

	uint64Array := []uint64{
		0,
		1,
		11,
		67312,
		80604,
		^uint64(0), // max uint64
	}

	for _, value := range uint64Array {
		decodedValue, err := DecodeUint64(fmt.Sprintf("0x%x", value))
		assert.NoError(t, err)
		assert.Equal(t, value, decodedValue)

		assert.Equal(t, fmt.Sprintf("0x%x", value), EncodeUint64(value))
	}
}

func TestDecodeHexInto(t *testing.T) {
	t.Parallel()

	var dst [4]byte

	require.NoError(t, DecodeHexInto(dst[:], "0xdeadbeef"))
	assert.Equal(t, [4]byte{0xde, 0xad, 0xbe, 0xef}, dst)

	assert.Error(t, DecodeHexInto(dst[:], "0xdead"))
	assert.Error(t, DecodeHexInto(dst[:], "0xzz"))
}

func TestEncodeToHex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0x", EncodeToHex(nil))
	assert.Equal(t, "0x0102", EncodeToHex([]byte{1, 2}))
	assert.Equal(t, []byte{1, 2}, MustDecodeHex("0102"))
}
