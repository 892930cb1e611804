package keystore

import (
	"encoding/hex"
	"fmt"
	"os"
)

type createFn func() ([]byte, error)

// CreateIfNotExists generates a private key at the specified path,
// or reads it if a key file is present. The file holds the hex encoding.
func CreateIfNotExists(path string, create createFn) ([]byte, error) {
	_, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat (%s): %w", path, err)
	}

	if !os.IsNotExist(err) {
		keyBuff, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read private key from disk (%s), %w", path, err)
		}

		return keyBuff, nil
	}

	keyBuff, err := CreatePrivateKey(create)
	if err != nil {
		return nil, err
	}

	if err = os.WriteFile(path, keyBuff, 0600); err != nil {
		return nil, fmt.Errorf("unable to write private key to disk (%s), %w", path, err)
	}

	return keyBuff, nil
}

// CreatePrivateKey generates a key and returns its hex encoding
func CreatePrivateKey(create createFn) ([]byte, error) {
	keyBuff, err := create()
	if err != nil {
		return nil, fmt.Errorf("unable to generate private key, %w", err)
	}

	return []byte(hex.EncodeToString(keyBuff)), nil
}
