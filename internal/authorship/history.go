package authorship

import (
	"fmt"

	"github.com/eigerco/mulberry/internal/crypto"
	"github.com/eigerco/mulberry/pkg/db"
)

// historyWindow is the sliding-window record of uncle hashes seen recently.
// Hashes accepted while executing block n land in bucket n; buckets older
// than the most recent UncleGenerations block numbers are pruned at block
// start, so the window never holds more than UncleGenerations buckets.
type historyWindow struct {
	store db.KVStore
}

// contains reports whether hash appears anywhere in the retained window.
// Buckets are scanned in block-number order.
func (w historyWindow) contains(hash crypto.Hash) (bool, error) {
	iter, err := w.store.NewIterator(windowKey(0), windowKey(^uint64(0)))
	if err != nil {
		return false, fmt.Errorf("failed to scan history window: %w", err)
	}
	defer iter.Close() //nolint:errcheck

	for iter.Next() {
		value, err := iter.Value()
		if err != nil {
			return false, fmt.Errorf("failed to read history bucket: %w", err)
		}
		hashes, err := decodeHashes(value)
		if err != nil {
			return false, err
		}
		for _, h := range hashes {
			if h == hash {
				return true, nil
			}
		}
	}
	return false, nil
}

// record stages the hashes accepted during block number into its bucket.
// Called at most once per block, so the bucket is always written whole.
func (w historyWindow) record(batch db.Batch, number uint64, hashes []crypto.Hash) error {
	if len(hashes) == 0 {
		return nil
	}
	if err := batch.Put(windowKey(number), encodeHashes(hashes)); err != nil {
		return fmt.Errorf("failed to record history bucket %d: %w", number, err)
	}
	return nil
}

// prune stages deletion of every bucket outside the retention window of the
// block about to execute: only buckets current-generations+1 .. current stay.
func (w historyWindow) prune(batch db.Batch, current, generations uint64) error {
	if current < generations {
		return nil
	}
	oldest := current - generations + 1

	iter, err := w.store.NewIterator(windowKey(0), windowKey(oldest))
	if err != nil {
		return fmt.Errorf("failed to scan history window: %w", err)
	}
	defer iter.Close() //nolint:errcheck

	for iter.Next() {
		if err := batch.Delete(iter.Key()); err != nil {
			return fmt.Errorf("failed to prune history bucket: %w", err)
		}
	}
	return nil
}
