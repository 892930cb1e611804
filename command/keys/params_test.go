package keys

import (
	"testing"

	"github.com/0xPolygon/polygon-xt/command/helper"
	"github.com/0xPolygon/polygon-xt/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParams(t *testing.T, dataDir, keyType string, force bool) *keysParams {
	t.Helper()

	p := &keysParams{
		client:  helper.ClientParams{DataDir: dataDir},
		keyType: keyType,
		force:   force,
	}

	require.NoError(t, p.validateFlags())

	return p
}

func TestGenerateAndShow(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	generated, err := newParams(t, dir, "", false).generateKey()
	require.NoError(t, err)
	assert.True(t, generated.Generated)
	assert.Equal(t, "ed25519", generated.Scheme)

	shown, err := newParams(t, dir, "", false).readKey()
	require.NoError(t, err)
	assert.False(t, shown.Generated)
	assert.Equal(t, generated.AccountID, shown.AccountID)
	assert.Equal(t, generated.Address, shown.Address)

	_, err = newParams(t, dir, "", false).generateKey()
	assert.ErrorIs(t, err, errKeyExists)

	// the stored type wins over the requested fallback
	replaced, err := newParams(t, dir, "ecdsa", true).generateKey()
	require.NoError(t, err)
	assert.Equal(t, "ecdsa", replaced.Scheme)
	assert.NotEqual(t, generated.AccountID, replaced.AccountID)

	shown, err = newParams(t, dir, "ed25519", false).readKey()
	require.NoError(t, err)
	assert.Equal(t, "ecdsa", shown.Scheme)
	assert.Contains(t, shown.GetOutput(), replaced.Address)
}

func TestShow_NoKey(t *testing.T) {
	t.Parallel()

	_, err := newParams(t, t.TempDir(), "", false).readKey()
	assert.ErrorIs(t, err, secrets.ErrSecretNotFound)
}

func TestValidateFlags_KeyType(t *testing.T) {
	t.Parallel()

	p := &keysParams{client: helper.ClientParams{DataDir: t.TempDir()}, keyType: "rsa"}
	assert.Error(t, p.validateFlags())
}
