package tests

import (
	"errors"
	"testing"

	"github.com/0xPolygon/polygon-xt/scale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertDecodeError checks that err is a codec failure of the given kind
// reported at offset
func AssertDecodeError(t *testing.T, err error, kind error, offset int) {
	t.Helper()

	var derr *scale.DecodeError

	require.True(t, errors.As(err, &derr), "expected a decode error, got %v", err)
	assert.ErrorIs(t, derr, kind)
	assert.Equal(t, offset, derr.Offset)
}
