package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/0xPolygon/polygon-xt/storage"
	"github.com/hashicorp/go-hclog"
)

// NewMemoryStorage creates the new storage reference with inmemory
func NewMemoryStorage(logger hclog.Logger) (*storage.KeyValueStorage, error) {
	db := &memoryKV{db: map[string][]byte{}}

	return storage.NewKeyValueStorage(logger, db), nil
}

// Factory creates a memory storage, the config is ignored
func Factory(_ map[string]interface{}, logger hclog.Logger) (storage.Storage, error) {
	return NewMemoryStorage(logger)
}

// memoryKV is an in memory implementation of the kv storage
type memoryKV struct {
	lock sync.RWMutex
	db   map[string][]byte
}

func (m *memoryKV) Set(p []byte, v []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.db[string(p)] = append([]byte(nil), v...)

	return nil
}

func (m *memoryKV) Get(p []byte) ([]byte, bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	v, ok := m.db[string(p)]
	if !ok {
		return nil, false, nil
	}

	return append([]byte(nil), v...), true, nil
}

func (m *memoryKV) Iterate(prefix []byte, fn func(k, v []byte) bool) error {
	m.lock.RLock()

	keys := make([]string, 0)

	for k := range m.db {
		if strings.HasPrefix(k, string(prefix)) {
			keys = append(keys, k)
		}
	}

	sort.Strings(keys)

	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = m.db[k]
	}

	m.lock.RUnlock()

	for i, k := range keys {
		if !fn([]byte(k), append([]byte(nil), values[i]...)) {
			break
		}
	}

	return nil
}

func (m *memoryKV) NewBatch() storage.Batch {
	return &memoryBatch{kv: m}
}

func (m *memoryKV) Close() error {
	return nil
}

type memoryOp struct {
	key   string
	value []byte
	del   bool
}

type memoryBatch struct {
	kv  *memoryKV
	ops []memoryOp
}

func (b *memoryBatch) Delete(key []byte) {
	b.ops = append(b.ops, memoryOp{key: string(key), del: true})
}

func (b *memoryBatch) Put(k []byte, v []byte) {
	b.ops = append(b.ops, memoryOp{key: string(k), value: append([]byte(nil), v...)})
}

func (b *memoryBatch) Write() error {
	b.kv.lock.Lock()
	defer b.kv.lock.Unlock()

	for _, op := range b.ops {
		if op.del {
			delete(b.kv.db, op.key)
		} else {
			b.kv.db[op.key] = op.value
		}
	}

	b.ops = nil

	return nil
}
