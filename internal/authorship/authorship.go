// Package authorship tracks the author of each block and validates the uncle
// headers submitted alongside it for partial reward credit. It runs inside a
// deterministic state-transition engine: given the same block and prior chain
// state, every node must derive the same accept/reject decisions and the same
// storage mutations.
package authorship

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eigerco/mulberry/internal/chain"
	"github.com/eigerco/mulberry/internal/crypto"
	"github.com/eigerco/mulberry/internal/digest"
	"github.com/eigerco/mulberry/pkg/db"
	"github.com/eigerco/mulberry/pkg/db/pebble"
)

type phase uint8

const (
	phaseIdle phase = iota
	phaseAuthorPending
	phaseAuthorResolved
	phaseFinalized
)

// Controller drives the per-block authorship lifecycle: reset at block start,
// at most one uncle submission during execution, reward dispatch at
// finalization. The author slot, submission flag and history window are its
// only durable keys; all mutations of one submission commit as a single batch
// so a rejected submission leaves no trace.
type Controller struct {
	cfg     Config
	store   db.KVStore
	chain   *chain.RecentChain
	history historyWindow
	logger  zerolog.Logger

	phase    phase
	current  uint64
	accepted []UncleRecord
}

func New(cfg Config, store db.KVStore, c *chain.RecentChain, logger zerolog.Logger) (*Controller, error) {
	if cfg.UncleGenerations == 0 {
		return nil, errors.New("uncle generations must be positive")
	}
	if cfg.MaxUncleCount < 0 {
		return nil, errors.New("max uncle count must not be negative")
	}
	if cfg.AuthorSource == nil {
		cfg.AuthorSource = DigestFilterSource{}
	}
	return &Controller{
		cfg:     cfg,
		store:   store,
		chain:   c,
		history: historyWindow{store: store},
		logger:  logger,
	}, nil
}

// OnInitialize starts the lifecycle of block number: transient state of the
// previous block is cleared and history buckets that fell out of the window
// are pruned, all in one batch.
func (c *Controller) OnInitialize(number uint64) error {
	batch := c.store.NewBatch()
	defer batch.Close() //nolint:errcheck

	if err := batch.Delete(authorKey); err != nil {
		return fmt.Errorf("failed to clear author slot: %w", err)
	}
	if err := batch.Delete(unclesSetKey); err != nil {
		return fmt.Errorf("failed to clear submission flag: %w", err)
	}
	if err := c.history.prune(batch, number, c.cfg.UncleGenerations); err != nil {
		return err
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("failed to initialize block %d: %w", number, err)
	}

	c.phase = phaseAuthorPending
	c.current = number
	c.accepted = nil
	return nil
}

// SetUnclesAndAuthor is the one-shot inherent operation of the block: it
// resolves the block author from authorDigest and validates every candidate
// uncle as one atomic batch. Any failure aborts the whole call with no
// surviving writes; the host treats that as a block-validity failure.
func (c *Controller) SetUnclesAndAuthor(authorDigest digest.Digest, uncles []chain.Header) error {
	if c.phase == phaseIdle || c.phase == phaseFinalized {
		return ErrNotInitialized
	}

	set, err := c.UnclesSet()
	if err != nil {
		return err
	}
	if set {
		return ErrUnclesAlreadySet
	}

	if len(uncles) > c.cfg.MaxUncleCount {
		return ErrTooManyUncles
	}

	author, hasAuthor := c.cfg.AuthorSource.FindAuthor(authorDigest)

	validator := newUncleValidator(c.cfg, c.chain, c.history)
	var (
		hashes  []crypto.Hash
		records []UncleRecord
	)
	for i, uncle := range uncles {
		hash, record, err := validator.verify(c.current, uncle)
		if err != nil {
			return fmt.Errorf("uncle %d: %w", i, err)
		}
		hashes = append(hashes, hash)
		if record != nil {
			records = append(records, *record)
		}
	}

	batch := c.store.NewBatch()
	defer batch.Close() //nolint:errcheck

	if err := c.history.record(batch, c.current, hashes); err != nil {
		return err
	}
	if hasAuthor {
		if err := batch.Put(authorKey, author[:]); err != nil {
			return fmt.Errorf("failed to store author slot: %w", err)
		}
	}
	if err := batch.Put(unclesSetKey, []byte{1}); err != nil {
		return fmt.Errorf("failed to store submission flag: %w", err)
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("failed to commit submission for block %d: %w", c.current, err)
	}

	c.accepted = records
	c.phase = phaseAuthorResolved

	c.logger.Debug().
		Uint64("block", c.current).
		Int("uncles", len(hashes)).
		Int("rewarded", len(records)).
		Bool("author", hasAuthor).
		Msg("authorship inherent applied")
	return nil
}

// OnFinalize dispatches the block author, if known, and every accepted uncle
// record to the configured handlers in order, then clears the transient
// state. The history window survives into following blocks by design.
func (c *Controller) OnFinalize() error {
	if c.phase == phaseIdle || c.phase == phaseFinalized {
		return ErrNotInitialized
	}

	author, hasAuthor, err := c.Author()
	if err != nil {
		return err
	}
	if hasAuthor {
		for _, sink := range c.cfg.EventHandlers {
			sink.NoteAuthor(author)
		}
	}
	for _, record := range c.accepted {
		for _, sink := range c.cfg.EventHandlers {
			sink.NoteUncle(record.Author, record.Generation)
		}
	}

	if err := c.store.Delete(authorKey); err != nil {
		return fmt.Errorf("failed to clear author slot: %w", err)
	}

	c.accepted = nil
	c.phase = phaseFinalized
	return nil
}

// Author returns the author slot of the block being executed, if the
// submission resolved one.
func (c *Controller) Author() (digest.AuthorID, bool, error) {
	value, err := c.store.Get(authorKey)
	if errors.Is(err, pebble.ErrNotFound) {
		return digest.AuthorID{}, false, nil
	}
	if err != nil {
		return digest.AuthorID{}, false, fmt.Errorf("failed to read author slot: %w", err)
	}
	if len(value) != len(digest.AuthorID{}) {
		return digest.AuthorID{}, false, fmt.Errorf("corrupt author slot: %d bytes", len(value))
	}
	var author digest.AuthorID
	copy(author[:], value)
	return author, true, nil
}

// UnclesSet reports whether the one-shot submission already ran this block.
func (c *Controller) UnclesSet() (bool, error) {
	ok, err := c.store.Has(unclesSetKey)
	if err != nil {
		return false, fmt.Errorf("failed to read submission flag: %w", err)
	}
	return ok, nil
}
