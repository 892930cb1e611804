package memory

import (
	"testing"

	"github.com/0xPolygon/polygon-xt/storage"
	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	t.Helper()

	f := func(t *testing.T) (*storage.KeyValueStorage, func()) {
		t.Helper()

		s, err := NewMemoryStorage(nil)
		require.NoError(t, err)

		return s, func() {}
	}
	storage.TestStorage(t, f)
}
