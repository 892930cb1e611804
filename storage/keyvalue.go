package storage

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/0xPolygon/polygon-xt/scale"
	"github.com/0xPolygon/polygon-xt/types"
	"github.com/hashicorp/go-hclog"
)

// prefix

var (
	// METADATA is the prefix for runtime metadata blobs
	METADATA = []byte("m")

	// EXTRINSIC is the prefix for submitted extrinsic bytes
	EXTRINSIC = []byte("x")

	// JOURNAL is the prefix for status journals
	JOURNAL = []byte("j")
)

// KV is a key value storage interface
type KV interface {
	Close() error
	Set(p []byte, v []byte) error
	Get(p []byte) ([]byte, bool, error)
	// Iterate calls fn for each key with the prefix in key order until fn returns false
	Iterate(prefix []byte, fn func(k, v []byte) bool) error
	NewBatch() Batch
}

// KeyValueStorage is a generic storage for kv databases
type KeyValueStorage struct {
	logger hclog.Logger
	db     KV

	// journalLock serializes read-modify-write of journals
	journalLock sync.Mutex

	now func() time.Time
}

func NewKeyValueStorage(logger hclog.Logger, db KV) *KeyValueStorage {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &KeyValueStorage{logger: logger, db: db, now: time.Now}
}

var _ Storage = (*KeyValueStorage)(nil)

func (s *KeyValueStorage) encodeUint32(n uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, n)

	return b
}

// -- metadata --

// ReadMetadata returns the cached metadata blob of a runtime
func (s *KeyValueStorage) ReadMetadata(genesis types.Hash, specVersion uint32) ([]byte, bool, error) {
	return s.get(METADATA, genesis.Bytes(), s.encodeUint32(specVersion))
}

// WriteMetadata caches the metadata blob of a runtime
func (s *KeyValueStorage) WriteMetadata(genesis types.Hash, specVersion uint32, blob []byte) error {
	return s.set(METADATA, blob, genesis.Bytes(), s.encodeUint32(specVersion))
}

// -- extrinsics --

func (s *KeyValueStorage) WriteExtrinsic(hash types.Hash, raw []byte) error {
	return s.set(EXTRINSIC, raw, hash.Bytes())
}

func (s *KeyValueStorage) ReadExtrinsic(hash types.Hash) ([]byte, bool, error) {
	return s.get(EXTRINSIC, hash.Bytes())
}

// -- journal --

// Record appends status to the journal of hash
func (s *KeyValueStorage) Record(hash types.Hash, status types.TransactionStatus) error {
	s.journalLock.Lock()
	defer s.journalLock.Unlock()

	entries, err := s.readJournal(hash)
	if err != nil {
		return err
	}

	entries = append(entries, JournalEntry{Time: s.now(), Status: status})

	data, err := encodeJournal(entries)
	if err != nil {
		return err
	}

	s.logger.Debug("journal", "hash", hash, "status", status)

	return s.set(JOURNAL, data, hash.Bytes())
}

// ReadJournal returns the statuses recorded for hash, oldest first
func (s *KeyValueStorage) ReadJournal(hash types.Hash) ([]JournalEntry, error) {
	s.journalLock.Lock()
	defer s.journalLock.Unlock()

	entries, err := s.readJournal(hash)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("journal of %s: %w", hash, ErrNotFound)
	}

	return entries, nil
}

func (s *KeyValueStorage) readJournal(hash types.Hash) ([]JournalEntry, error) {
	data, ok, err := s.get(JOURNAL, hash.Bytes())
	if err != nil || !ok {
		return nil, err
	}

	return decodeJournal(data)
}

func (s *KeyValueStorage) Journals(fn func(hash types.Hash, entries []JournalEntry) bool) error {
	var decodeErr error

	err := s.db.Iterate(JOURNAL, func(k, v []byte) bool {
		entries, err := decodeJournal(v)
		if err != nil {
			decodeErr = fmt.Errorf("journal %x: %w", k[len(JOURNAL):], err)

			return false
		}

		return fn(types.BytesToHash(k[len(JOURNAL):]), entries)
	})
	if err != nil {
		return err
	}

	return decodeErr
}

// PruneJournals removes the journals whose last status is older than before,
// together with their extrinsics. It returns how many were removed.
func (s *KeyValueStorage) PruneJournals(before time.Time) (int, error) {
	s.journalLock.Lock()
	defer s.journalLock.Unlock()

	var stale []types.Hash

	err := s.Journals(func(hash types.Hash, entries []JournalEntry) bool {
		if len(entries) == 0 || entries[len(entries)-1].Time.Before(before) {
			stale = append(stale, hash)
		}

		return true
	})
	if err != nil {
		return 0, err
	}

	if len(stale) == 0 {
		return 0, nil
	}

	batch := s.db.NewBatch()

	for _, hash := range stale {
		batch.Delete(s.key(JOURNAL, hash.Bytes()))
		batch.Delete(s.key(EXTRINSIC, hash.Bytes()))
	}

	if err := batch.Write(); err != nil {
		return 0, err
	}

	s.logger.Info("pruned journals", "count", len(stale), "before", before)

	return len(stale), nil
}

func (s *KeyValueStorage) NewBatch() Batch {
	return s.db.NewBatch()
}

func (s *KeyValueStorage) Close() error {
	return s.db.Close()
}

func (s *KeyValueStorage) key(prefix []byte, parts ...[]byte) []byte {
	k := append([]byte{}, prefix...)
	for _, p := range parts {
		k = append(k, p...)
	}

	return k
}

func (s *KeyValueStorage) set(prefix []byte, v []byte, parts ...[]byte) error {
	return s.db.Set(s.key(prefix, parts...), v)
}

func (s *KeyValueStorage) get(prefix []byte, parts ...[]byte) ([]byte, bool, error) {
	return s.db.Get(s.key(prefix, parts...))
}

// journal entries are a SCALE vector of (unix nanos u64, kind u8, hash, peers Vec<String>)
func encodeJournal(entries []JournalEntry) ([]byte, error) {
	enc := scale.AcquireEncoder()
	defer scale.ReleaseEncoder(enc)

	enc.EncodeLength(len(entries))

	for _, e := range entries {
		enc.EncodeUint64(uint64(e.Time.UnixNano()))
		enc.EncodeUint8(uint8(e.Status.Kind))

		if err := e.Status.Hash.EncodeSCALE(enc); err != nil {
			return nil, err
		}

		enc.EncodeLength(len(e.Status.Peers))

		for _, p := range e.Status.Peers {
			enc.EncodeString(p)
		}
	}

	return enc.CopyBytes(), nil
}

func decodeJournal(data []byte) ([]JournalEntry, error) {
	dec := scale.NewDecoder(data)

	n, err := dec.DecodeLength()
	if err != nil {
		return nil, err
	}

	if n > dec.Remaining() {
		return nil, dec.Fail(scale.ErrTruncatedInput, 0, "journal of %d entries in %d bytes", n, dec.Remaining())
	}

	entries := make([]JournalEntry, 0, n)

	for i := 0; i < n; i++ {
		nanos, err := dec.DecodeUint64()
		if err != nil {
			return nil, err
		}

		kind, err := dec.DecodeUint8()
		if err != nil {
			return nil, err
		}

		var status types.TransactionStatus

		status.Kind = types.StatusKind(kind)

		if err := status.Hash.DecodeSCALE(dec); err != nil {
			return nil, err
		}

		peers, err := dec.DecodeLength()
		if err != nil {
			return nil, err
		}

		for j := 0; j < peers; j++ {
			p, err := dec.DecodeString()
			if err != nil {
				return nil, err
			}

			status.Peers = append(status.Peers, p)
		}

		entries = append(entries, JournalEntry{
			Time:   time.Unix(0, int64(nanos)),
			Status: status,
		})
	}

	if dec.Remaining() != 0 {
		return nil, fmt.Errorf("%d trailing journal bytes", dec.Remaining())
	}

	return entries, nil
}
