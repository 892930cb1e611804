package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportedServiceManager(t *testing.T) {
	testTable := []struct {
		name        string
		serviceName SecretsManagerType
		supported   bool
	}{
		{
			"Valid local secrets manager",
			Local,
			true,
		},
		{
			"Remote secrets manager",
			"hashicorp-vault",
			false,
		},
		{
			"Invalid secrets manager",
			"MarsSecretsManager",
			false,
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(
				t,
				testCase.supported,
				SupportedServiceManager(testCase.serviceName),
			)
		})
	}
}

func TestSecretsManagerMock(t *testing.T) {
	t.Parallel()

	sm := NewSecretsManagerMock()
	require.NoError(t, sm.Setup())

	assert.False(t, sm.HasSecret(SignerKey))

	_, err := sm.GetSecret(SignerKey)
	assert.ErrorIs(t, err, ErrSecretNotFound)

	require.NoError(t, sm.SetSecret(SignerKey, []byte("seed")))
	assert.True(t, sm.HasSecret(SignerKey))

	value, err := sm.GetSecret(SignerKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("seed"), value)

	require.NoError(t, sm.RemoveSecret(SignerKey))
	assert.False(t, sm.HasSecret(SignerKey))
}
