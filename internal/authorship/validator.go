package authorship

import (
	"fmt"

	"github.com/eigerco/mulberry/internal/chain"
	"github.com/eigerco/mulberry/internal/crypto"
	"github.com/eigerco/mulberry/internal/digest"
)

// UncleRecord is what an accepted, author-bearing uncle contributes to reward
// dispatch: whose sibling block it was and how many generations back it sits.
type UncleRecord struct {
	Author     digest.AuthorID
	Generation uint64
}

// uncleValidator applies the acceptance rules to one submission batch.
// Validation order is fixed and the first failure wins, so every node derives
// the same verdict from the same inputs.
type uncleValidator struct {
	cfg     Config
	chain   *chain.RecentChain
	history historyWindow

	// hashes already accepted earlier in the same batch
	seen map[crypto.Hash]struct{}
}

func newUncleValidator(cfg Config, c *chain.RecentChain, history historyWindow) *uncleValidator {
	return &uncleValidator{
		cfg:     cfg,
		chain:   c,
		history: history,
		seen:    make(map[crypto.Hash]struct{}),
	}
}

// verify checks one candidate against block number current. It returns the
// candidate's hash and, when the uncle carries a resolvable author, the
// reward record. An author-less uncle is accepted with a nil record:
// structural validity and reward eligibility are deliberately decoupled.
func (v *uncleValidator) verify(current uint64, candidate chain.Header) (crypto.Hash, *UncleRecord, error) {
	if v.cfg.FilterUncle != nil {
		if err := v.cfg.FilterUncle(candidate); err != nil {
			return crypto.Hash{}, nil, fmt.Errorf("uncle rejected by filter: %w", err)
		}
	}

	// An uncle must sit strictly behind the including block, inside the
	// retention window.
	if candidate.Number >= current {
		return crypto.Hash{}, nil, ErrGenerationTooOld
	}
	generation := current - candidate.Number
	if generation > v.cfg.UncleGenerations {
		return crypto.Hash{}, nil, ErrGenerationTooOld
	}

	// The parent must be a recent canonical block, which makes the candidate
	// a true sibling of the chain. The window head is block current-1, so the
	// parent of a generation-g uncle sits g parent steps below it.
	parentOK, err := v.chain.IsAncestorWithin(candidate.ParentHash, v.cfg.UncleGenerations)
	if err != nil {
		return crypto.Hash{}, nil, err
	}
	if !parentOK {
		return crypto.Hash{}, nil, ErrInvalidUncleParent
	}
	parent, found, err := v.chain.Header(candidate.ParentHash)
	if err != nil {
		return crypto.Hash{}, nil, err
	}
	if !found || parent.Number+1 != candidate.Number {
		return crypto.Hash{}, nil, ErrInvalidUncleParent
	}

	// A block already on the canonical chain cannot be its own uncle.
	hash := candidate.Hash()
	canonical, err := v.chain.IsAncestorWithin(hash, v.cfg.UncleGenerations)
	if err != nil {
		return crypto.Hash{}, nil, err
	}
	if canonical {
		return crypto.Hash{}, nil, ErrUncleIsAncestor
	}

	// Each hash is credited at most once across the window, including
	// duplicates within the batch being validated.
	if _, dup := v.seen[hash]; dup {
		return crypto.Hash{}, nil, ErrUncleAlreadyIncluded
	}
	included, err := v.history.contains(hash)
	if err != nil {
		return crypto.Hash{}, nil, err
	}
	if included {
		return crypto.Hash{}, nil, ErrUncleAlreadyIncluded
	}
	v.seen[hash] = struct{}{}

	author, ok := v.cfg.AuthorSource.FindAuthor(candidate.Digest)
	if !ok {
		return hash, nil, nil
	}
	return hash, &UncleRecord{Author: author, Generation: generation}, nil
}
