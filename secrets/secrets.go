package secrets

import (
	"errors"

	"github.com/hashicorp/go-hclog"
)

// Define constant names for available secrets
const (
	// SignerKey is the seed of the key that signs extrinsics
	SignerKey = "signer-key"

	// SignerKeyType records which scheme the signer seed belongs to
	SignerKeyType = "signer-key-type"
)

// Define constant file names for the local StorageManager
const (
	SignerKeyLocal     = "signer.key"
	SignerKeyTypeLocal = "signer.type"
)

// Define constant folder names for the local StorageManager
const (
	KeysFolderLocal = "keys"
)

var (
	// ErrSecretNotFound is returned when the secret isn't present in the manager
	ErrSecretNotFound = errors.New("secret not found")

	// ErrSecretAlreadySet is returned when a secret would be overwritten
	ErrSecretAlreadySet = errors.New("secret already set")
)

// SecretsManagerType defines the possible types of secret managers
type SecretsManagerType string

const (
	// Local pertains to the local FS [Default]
	Local SecretsManagerType = "local"
)

// Extra parameter keys
const (
	// Path is the base directory of the local secrets manager
	Path = "path"
)

// SecretsManager defines the base public interface that all
// secret manager implementations should have
type SecretsManager interface {
	// Setup performs secret manager-specific setup
	Setup() error

	// GetSecret gets the secret by name
	GetSecret(name string) ([]byte, error)

	// SetSecret sets the secret to a provided value
	SetSecret(name string, value []byte) error

	// HasSecret checks if the secret is present
	HasSecret(name string) bool

	// RemoveSecret removes the secret from storage
	RemoveSecret(name string) error
}

// SecretsManagerParams defines the configuration params for the
// secrets manager
type SecretsManagerParams struct {
	// Local logger object
	Logger hclog.Logger

	// Extra contains additional data needed for the SecretsManager to function
	Extra map[string]interface{}
}

// SecretsManagerFactory is the factory method for secrets managers
type SecretsManagerFactory func(params *SecretsManagerParams) (SecretsManager, error)

// SupportedServiceManager checks if the passed in service manager type is supported
func SupportedServiceManager(service SecretsManagerType) bool {
	return service == Local
}
