package storage

import (
	"errors"
	"time"

	"github.com/0xPolygon/polygon-xt/types"
	"github.com/hashicorp/go-hclog"
)

var ErrNotFound = errors.New("not found")

// Storage is the local state of the client: cached runtime metadata and the
// journal of submitted extrinsics
type Storage interface {
	ReadMetadata(genesis types.Hash, specVersion uint32) ([]byte, bool, error)
	WriteMetadata(genesis types.Hash, specVersion uint32, blob []byte) error

	WriteExtrinsic(hash types.Hash, raw []byte) error
	ReadExtrinsic(hash types.Hash) ([]byte, bool, error)

	// Record appends a status to the journal of hash
	Record(hash types.Hash, status types.TransactionStatus) error
	ReadJournal(hash types.Hash) ([]JournalEntry, error)
	// Journals calls fn for every journaled extrinsic until fn returns false
	Journals(fn func(hash types.Hash, entries []JournalEntry) bool) error
	// PruneJournals drops journals last updated before the given time
	PruneJournals(before time.Time) (int, error)

	NewBatch() Batch
	Close() error
}

// JournalEntry is one status observed for a submitted extrinsic
type JournalEntry struct {
	Time   time.Time
	Status types.TransactionStatus
}

// Batch collects writes that are committed together
type Batch interface {
	Delete(key []byte)
	Put(k []byte, v []byte)
	Write() error
}

// Factory opens a storage backend from the backend specific config
type Factory func(config map[string]interface{}, logger hclog.Logger) (Storage, error)
