package boltdb

import (
	"bytes"
	"fmt"
	"path/filepath"
	"time"

	"github.com/0xPolygon/polygon-xt/storage"
	"github.com/hashicorp/go-hclog"
	bolt "go.etcd.io/bbolt"
)

const openTimeout = time.Second

// Factory creates a boltdb storage
func Factory(config map[string]interface{}, logger hclog.Logger) (storage.Storage, error) {
	path, ok := config["path"]
	if !ok {
		return nil, fmt.Errorf("path not found")
	}

	pathStr, ok := path.(string)
	if !ok {
		return nil, fmt.Errorf("path is not a string")
	}

	return NewBoltDBStorage(filepath.Join(pathStr, "xt.db"), logger)
}

// NewBoltDBStorage creates the new storage reference with boltdb
func NewBoltDBStorage(path string, logger hclog.Logger) (*storage.KeyValueStorage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, err
	}

	kv := &boltDBKV{db}

	return storage.NewKeyValueStorage(logger, kv), nil
}

// boltDBKV is the boltdb implementation of the kv storage
type boltDBKV struct {
	db *bolt.DB
}

var bucket = []byte{'b'}

func (l *boltDBKV) Set(p []byte, v []byte) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}

		return b.Put(p, v)
	})
}

func (l *boltDBKV) Get(p []byte) ([]byte, bool, error) {
	var (
		data  []byte
		found bool
	)

	err := l.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}

		if v := b.Get(p); v != nil {
			// v is only valid for the lifetime of the tx, therefore copying
			data = append([]byte(nil), v...)
			found = true
		}

		return nil
	})

	return data, found, err
}

func (l *boltDBKV) Iterate(prefix []byte, fn func(k, v []byte) bool) error {
	return l.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}

		c := b.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if !fn(append([]byte(nil), k...), append([]byte(nil), v...)) {
				break
			}
		}

		return nil
	})
}

func (l *boltDBKV) NewBatch() storage.Batch {
	return &boltBatch{db: l.db}
}

func (l *boltDBKV) Close() error {
	return l.db.Close()
}

type boltOp struct {
	key   []byte
	value []byte
	del   bool
}

// boltBatch applies its operations in a single update transaction
type boltBatch struct {
	db  *bolt.DB
	ops []boltOp
}

func (b *boltBatch) Delete(key []byte) {
	b.ops = append(b.ops, boltOp{key: append([]byte(nil), key...), del: true})
}

func (b *boltBatch) Put(k []byte, v []byte) {
	b.ops = append(b.ops, boltOp{key: append([]byte(nil), k...), value: append([]byte(nil), v...)})
}

func (b *boltBatch) Write() error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}

		for _, op := range b.ops {
			if op.del {
				err = bkt.Delete(op.key)
			} else {
				err = bkt.Put(op.key, op.value)
			}

			if err != nil {
				return err
			}
		}

		return nil
	})
	if err == nil {
		b.ops = nil
	}

	return err
}
