package chain

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/eigerco/mulberry/internal/crypto"
	"github.com/eigerco/mulberry/pkg/db"
	"github.com/eigerco/mulberry/pkg/db/pebble"
)

var (
	headerKeyPrefix = []byte("chain/header/")
	headKey         = []byte("chain/head")
)

const headerCacheSize = 256

// RecentChain tracks the headers of the current chain and its recent forks,
// and answers the bounded ancestry queries uncle validation depends on. It is
// backed by the KV store so reopening a node resumes from the stored head;
// decoded headers are served from an LRU cache.
type RecentChain struct {
	store db.KVStore
	cache *lru.Cache

	head    crypto.Hash
	hasHead bool
}

func NewRecentChain(store db.KVStore) (*RecentChain, error) {
	cache, err := lru.New(headerCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create header cache: %w", err)
	}

	c := &RecentChain{store: store, cache: cache}

	stored, err := store.Get(headKey)
	if err != nil && !errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("failed to load chain head: %w", err)
	}
	if err == nil {
		if len(stored) != crypto.HashSize {
			return nil, fmt.Errorf("corrupt chain head key: %d bytes", len(stored))
		}
		copy(c.head[:], stored)
		c.hasHead = true
	}
	return c, nil
}

// StoreHeader records a header without moving the head. Sibling headers that
// may later be claimed as uncles go through here too.
func (c *RecentChain) StoreHeader(h Header) error {
	hash := h.Hash()
	if err := c.store.Put(headerKey(hash), h.Encode()); err != nil {
		return fmt.Errorf("failed to store header %s: %w", hash.Hex(), err)
	}
	c.cache.Add(hash, h)
	return nil
}

// SetHead stores the header and makes it the canonical tip.
func (c *RecentChain) SetHead(h Header) error {
	if err := c.StoreHeader(h); err != nil {
		return err
	}
	hash := h.Hash()
	if err := c.store.Put(headKey, hash[:]); err != nil {
		return fmt.Errorf("failed to store chain head: %w", err)
	}
	c.head = hash
	c.hasHead = true
	return nil
}

// Head returns the canonical tip hash, if any block has been recorded yet.
func (c *RecentChain) Head() (crypto.Hash, bool) {
	return c.head, c.hasHead
}

// Header looks up a stored header by hash.
func (c *RecentChain) Header(hash crypto.Hash) (Header, bool, error) {
	if cached, ok := c.cache.Get(hash); ok {
		return cached.(Header), true, nil
	}

	encoded, err := c.store.Get(headerKey(hash))
	if errors.Is(err, pebble.ErrNotFound) {
		return Header{}, false, nil
	}
	if err != nil {
		return Header{}, false, fmt.Errorf("failed to load header %s: %w", hash.Hex(), err)
	}

	h, err := DecodeHeader(encoded)
	if err != nil {
		return Header{}, false, fmt.Errorf("failed to decode header %s: %w", hash.Hex(), err)
	}
	c.cache.Add(hash, h)
	return h, true, nil
}

// IsAncestorWithin reports whether target is the head or one of its ancestors
// reachable in at most depth parent steps. The walk follows stored parent
// links only, so the answer is identical on every node with the same chain.
func (c *RecentChain) IsAncestorWithin(target crypto.Hash, depth uint64) (bool, error) {
	if !c.hasHead {
		return false, nil
	}
	hash := c.head
	for i := uint64(0); i <= depth; i++ {
		if hash == target {
			return true, nil
		}
		h, ok, err := c.Header(hash)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		hash = h.ParentHash
	}
	return false, nil
}

func headerKey(hash crypto.Hash) []byte {
	return append(append([]byte(nil), headerKeyPrefix...), hash[:]...)
}
