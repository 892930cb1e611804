package local

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/0xPolygon/polygon-xt/secrets"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (secrets.SecretsManager, string) {
	t.Helper()

	dir := t.TempDir()

	sm, err := SecretsManagerFactory(&secrets.SecretsManagerParams{
		Logger: hclog.NewNullLogger(),
		Extra:  map[string]interface{}{secrets.Path: dir},
	})
	require.NoError(t, err)

	return sm, dir
}

func TestLocalSecretsManager_Lifecycle(t *testing.T) {
	t.Parallel()

	sm, dir := newManager(t)

	assert.DirExists(t, filepath.Join(dir, secrets.KeysFolderLocal))
	assert.False(t, sm.HasSecret(secrets.SignerKey))

	_, err := sm.GetSecret(secrets.SignerKey)
	assert.ErrorIs(t, err, secrets.ErrSecretNotFound)

	require.NoError(t, sm.SetSecret(secrets.SignerKey, []byte("abcd")))
	assert.True(t, sm.HasSecret(secrets.SignerKey))

	info, err := os.Stat(filepath.Join(dir, secrets.KeysFolderLocal, secrets.SignerKeyLocal))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	value, err := sm.GetSecret(secrets.SignerKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), value)

	// secrets are never overwritten
	assert.ErrorIs(t, sm.SetSecret(secrets.SignerKey, []byte("efgh")), secrets.ErrSecretAlreadySet)

	require.NoError(t, sm.RemoveSecret(secrets.SignerKey))
	assert.False(t, sm.HasSecret(secrets.SignerKey))

	require.NoError(t, sm.SetSecret(secrets.SignerKey, []byte("efgh")))
}

func TestLocalSecretsManager_UnknownSecret(t *testing.T) {
	t.Parallel()

	sm, _ := newManager(t)

	_, err := sm.GetSecret("network-key")
	assert.ErrorIs(t, err, secrets.ErrSecretNotFound)
	assert.ErrorIs(t, sm.SetSecret("network-key", nil), secrets.ErrSecretNotFound)
	assert.ErrorIs(t, sm.RemoveSecret("network-key"), secrets.ErrSecretNotFound)
}

func TestSecretsManagerFactory_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := SecretsManagerFactory(&secrets.SecretsManagerParams{Extra: map[string]interface{}{}})
	assert.Error(t, err)

	_, err = SecretsManagerFactory(&secrets.SecretsManagerParams{Extra: map[string]interface{}{secrets.Path: 42}})
	assert.Error(t, err)
}
