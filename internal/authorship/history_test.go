package authorship

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/mulberry/internal/crypto"
	"github.com/eigerco/mulberry/internal/testutils"
)

func TestHistoryContains(t *testing.T) {
	store := testutils.NewStore(t)
	w := historyWindow{store: store}

	a := testutils.RandomHash(t)
	b := testutils.RandomHash(t)

	batch := store.NewBatch()
	require.NoError(t, w.record(batch, 10, []crypto.Hash{a, b}))
	require.NoError(t, batch.Commit())

	for _, h := range []crypto.Hash{a, b} {
		ok, err := w.contains(h)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := w.contains(testutils.RandomHash(t))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHistoryRecordSkipsEmpty(t *testing.T) {
	store := testutils.NewStore(t)
	w := historyWindow{store: store}

	batch := store.NewBatch()
	require.NoError(t, w.record(batch, 10, nil))
	require.NoError(t, batch.Commit())

	ok, err := store.Has(windowKey(10))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHistoryPruneRetention(t *testing.T) {
	store := testutils.NewStore(t)
	w := historyWindow{store: store}

	// Buckets 1..6, then block 7 begins with a window of 3.
	batch := store.NewBatch()
	for number := uint64(1); number <= 6; number++ {
		require.NoError(t, w.record(batch, number, []crypto.Hash{testutils.RandomHash(t)}))
	}
	require.NoError(t, batch.Commit())

	batch = store.NewBatch()
	require.NoError(t, w.prune(batch, 7, 3))
	require.NoError(t, batch.Commit())

	for number := uint64(1); number <= 4; number++ {
		ok, err := store.Has(windowKey(number))
		require.NoError(t, err)
		assert.False(t, ok, "bucket %d should be pruned", number)
	}
	for number := uint64(5); number <= 6; number++ {
		ok, err := store.Has(windowKey(number))
		require.NoError(t, err)
		assert.True(t, ok, "bucket %d should survive", number)
	}
}

func TestHistoryPruneEarlyChain(t *testing.T) {
	store := testutils.NewStore(t)
	w := historyWindow{store: store}

	batch := store.NewBatch()
	require.NoError(t, w.record(batch, 1, []crypto.Hash{testutils.RandomHash(t)}))
	require.NoError(t, batch.Commit())

	// The chain is younger than the window, nothing to prune.
	batch = store.NewBatch()
	require.NoError(t, w.prune(batch, 2, 5))
	require.NoError(t, batch.Commit())

	ok, err := store.Has(windowKey(1))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDecodeHashesCorrupt(t *testing.T) {
	_, err := decodeHashes(make([]byte, crypto.HashSize+1))
	assert.Error(t, err)

	hashes, err := decodeHashes(nil)
	require.NoError(t, err)
	assert.Empty(t, hashes)
}
