package testutils

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eigerco/mulberry/internal/crypto"
	"github.com/eigerco/mulberry/internal/digest"
	"github.com/eigerco/mulberry/pkg/db"
	"github.com/eigerco/mulberry/pkg/db/pebble"
)

func RandomHash(t *testing.T) crypto.Hash {
	raw := make([]byte, crypto.HashSize)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	return crypto.Hash(raw)
}

func RandomAuthorID(t *testing.T) digest.AuthorID {
	raw := make([]byte, 32)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	return digest.AuthorID(raw)
}

// NewStore opens an in-memory KV store closed when the test finishes.
func NewStore(t *testing.T) db.KVStore {
	store, err := pebble.NewKVStore()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}
