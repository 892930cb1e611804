package boltdb

import (
	"path/filepath"
	"testing"

	"github.com/0xPolygon/polygon-xt/storage"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) (*storage.KeyValueStorage, func()) {
	t.Helper()

	s, err := NewBoltDBStorage(filepath.Join(t.TempDir(), "xt.db"), hclog.NewNullLogger())
	require.NoError(t, err)

	return s, func() {
		require.NoError(t, s.Close())
	}
}

func TestStorage(t *testing.T) {
	storage.TestStorage(t, newStorage)
}

func TestFactory(t *testing.T) {
	_, err := Factory(map[string]interface{}{"path": 42}, nil)
	assert.ErrorContains(t, err, "path is not a string")

	s, err := Factory(map[string]interface{}{"path": t.TempDir()}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}
