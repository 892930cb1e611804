package secrets

import (
	"fmt"
	"sync"
)

// SecretsManagerMock keeps secrets in memory
type SecretsManagerMock struct {
	lock  sync.RWMutex
	cache map[string][]byte
}

func NewSecretsManagerMock() *SecretsManagerMock {
	return &SecretsManagerMock{cache: make(map[string][]byte)}
}

func (sm *SecretsManagerMock) Setup() error {
	return nil
}

func (sm *SecretsManagerMock) GetSecret(name string) ([]byte, error) {
	sm.lock.RLock()
	defer sm.lock.RUnlock()

	value, exists := sm.cache[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}

	return value, nil
}

func (sm *SecretsManagerMock) SetSecret(name string, value []byte) error {
	sm.lock.Lock()
	defer sm.lock.Unlock()

	sm.cache[name] = value

	return nil
}

func (sm *SecretsManagerMock) HasSecret(name string) bool {
	sm.lock.RLock()
	defer sm.lock.RUnlock()

	_, exists := sm.cache[name]

	return exists
}

func (sm *SecretsManagerMock) RemoveSecret(name string) error {
	sm.lock.Lock()
	defer sm.lock.Unlock()

	delete(sm.cache, name)

	return nil
}
