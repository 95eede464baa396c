package authorship

import (
	"github.com/eigerco/mulberry/internal/chain"
	"github.com/eigerco/mulberry/internal/digest"
)

// AuthorSource resolves a block author from a header digest. A negative answer
// is not an error, blocks without a recognizable author are legal.
type AuthorSource interface {
	FindAuthor(d digest.Digest) (digest.AuthorID, bool)
}

// DigestFilterSource is the default AuthorSource: an ordered scan of the
// digest against an ordered filter of recognized engine ids.
type DigestFilterSource struct {
	Filter []digest.ConsensusEngineID
}

func (s DigestFilterSource) FindAuthor(d digest.Digest) (digest.AuthorID, bool) {
	return digest.FindAuthor(d, s.Filter)
}

// Config is the compile-time surface the embedding runtime supplies.
type Config struct {
	// UncleGenerations is the depth of the sliding window: an uncle must be
	// between 1 and UncleGenerations blocks behind the block including it,
	// and seen uncle hashes are remembered for as many block numbers.
	UncleGenerations uint64

	// MaxUncleCount caps the candidates of a single submission.
	MaxUncleCount int

	// AuthorSource extracts author identities from header digests.
	AuthorSource AuthorSource

	// FilterUncle, when set, runs against each candidate before the built-in
	// checks. A returned error rejects the whole submission.
	FilterUncle func(h chain.Header) error

	// EventHandlers are notified of accepted authors and uncles at block
	// finalization, in order.
	EventHandlers []RewardSink
}

// DefaultConfig mirrors common runtime parameters: a five block window with up
// to ten uncles per block and no engine filter (no authors resolved until the
// runtime installs one).
func DefaultConfig() Config {
	return Config{
		UncleGenerations: 5,
		MaxUncleCount:    10,
		AuthorSource:     DigestFilterSource{},
	}
}
