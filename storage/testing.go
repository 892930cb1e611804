package storage

import (
	"testing"
	"time"

	"github.com/0xPolygon/polygon-xt/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type PlaceholderStorage func(t *testing.T) (*KeyValueStorage, func())

var (
	genesis1 = types.BytesToHash([]byte{0x01})
	genesis2 = types.BytesToHash([]byte{0x02})

	hash1 = types.BytesToHash([]byte{0x11})
	hash2 = types.BytesToHash([]byte{0x12})
	hash3 = types.BytesToHash([]byte{0x13})
)

// TestStorage tests a set of tests on a storage
func TestStorage(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	t.Run("testMetadata", func(t *testing.T) {
		testMetadata(t, m)
	})
	t.Run("testExtrinsic", func(t *testing.T) {
		testExtrinsic(t, m)
	})
	t.Run("testJournal", func(t *testing.T) {
		testJournal(t, m)
	})
	t.Run("testJournals", func(t *testing.T) {
		testJournals(t, m)
	})
	t.Run("testPruneJournals", func(t *testing.T) {
		testPruneJournals(t, m)
	})
}

func testMetadata(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	_, ok, err := s.ReadMetadata(genesis1, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.WriteMetadata(genesis1, 1, []byte("meta-1")))
	require.NoError(t, s.WriteMetadata(genesis1, 2, []byte("meta-2")))
	require.NoError(t, s.WriteMetadata(genesis2, 1, []byte("other-chain")))

	cases := []struct {
		genesis types.Hash
		version uint32
		blob    string
	}{
		{genesis1, 1, "meta-1"},
		{genesis1, 2, "meta-2"},
		{genesis2, 1, "other-chain"},
	}

	for _, c := range cases {
		blob, ok, err := s.ReadMetadata(c.genesis, c.version)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, c.blob, string(blob))
	}

	_, ok, err = s.ReadMetadata(genesis2, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testExtrinsic(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	raw := []byte{0x98, 0x04, 0x00, 0x00}
	require.NoError(t, s.WriteExtrinsic(hash1, raw))

	out, ok, err := s.ReadExtrinsic(hash1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, raw, out)

	_, ok, err = s.ReadExtrinsic(hash2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testJournal(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	_, err := s.ReadJournal(hash1)
	assert.ErrorIs(t, err, ErrNotFound)

	statuses := []types.TransactionStatus{
		{Kind: types.StatusReady},
		{Kind: types.StatusBroadcast, Peers: []string{"peer-a", "peer-b"}},
		{Kind: types.StatusInBlock, Hash: hash2},
		{Kind: types.StatusFinalized, Hash: hash2},
	}

	for _, status := range statuses {
		require.NoError(t, s.Record(hash1, status))
	}

	entries, err := s.ReadJournal(hash1)
	require.NoError(t, err)
	require.Len(t, entries, len(statuses))

	for i, entry := range entries {
		assert.True(t, statuses[i].Equal(entry.Status), "entry %d: %s", i, entry.Status)
		assert.False(t, entry.Time.IsZero())
	}

	assert.False(t, entries[3].Time.Before(entries[0].Time))
}

func testJournals(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	require.NoError(t, s.Record(hash2, types.TransactionStatus{Kind: types.StatusReady}))
	require.NoError(t, s.Record(hash1, types.TransactionStatus{Kind: types.StatusDropped}))
	require.NoError(t, s.Record(hash3, types.TransactionStatus{Kind: types.StatusInvalid}))

	// metadata shares the key space but not the prefix
	require.NoError(t, s.WriteMetadata(genesis1, 1, []byte("meta")))

	seen := make(map[types.Hash]types.StatusKind)

	require.NoError(t, s.Journals(func(hash types.Hash, entries []JournalEntry) bool {
		seen[hash] = entries[len(entries)-1].Status.Kind

		return true
	}))

	assert.Equal(t, map[types.Hash]types.StatusKind{
		hash1: types.StatusDropped,
		hash2: types.StatusReady,
		hash3: types.StatusInvalid,
	}, seen)

	count := 0

	require.NoError(t, s.Journals(func(types.Hash, []JournalEntry) bool {
		count++

		return false
	}))
	assert.Equal(t, 1, count)
}

func testPruneJournals(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	require.NoError(t, s.WriteExtrinsic(hash1, []byte{1}))
	require.NoError(t, s.Record(hash1, types.TransactionStatus{Kind: types.StatusFinalized, Hash: hash3}))
	require.NoError(t, s.Record(hash2, types.TransactionStatus{Kind: types.StatusReady}))

	n, err := s.PruneJournals(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = s.PruneJournals(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.ReadJournal(hash1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, ok, err := s.ReadExtrinsic(hash1)
	require.NoError(t, err)
	assert.False(t, ok)
}
