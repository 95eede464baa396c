// Package digest models the opaque, engine-tagged metadata items a consensus
// engine embeds in a block header, and the extraction of an author identity
// from them.
package digest

import "encoding/hex"

// ConsensusEngineID identifies the consensus engine that produced a digest item.
type ConsensusEngineID [4]byte

func EngineID(s string) ConsensusEngineID {
	var id ConsensusEngineID
	copy(id[:], s)
	return id
}

func (id ConsensusEngineID) String() string {
	return string(id[:])
}

// AuthorID is the identity credited with producing a block.
type AuthorID [32]byte

func (a AuthorID) Hex() string {
	return hex.EncodeToString(a[:])
}

// DigestItem is a single opaque metadata item tagged with the engine that
// produced it. The payload format is private to that engine.
type DigestItem struct {
	Engine ConsensusEngineID
	Data   []byte
}

// Digest is the ordered list of items embedded in one header.
type Digest []DigestItem

// FindAuthor scans the digest in order and returns the author decoded from the
// first item whose engine id matches any filter entry. A missing or undecodable
// author is a legal outcome, not an error: downstream reward logic must
// tolerate a block with no known author.
func FindAuthor(d Digest, filter []ConsensusEngineID) (AuthorID, bool) {
	for _, item := range d {
		for _, engine := range filter {
			if item.Engine == engine {
				return decodeAuthor(item.Data)
			}
		}
	}
	return AuthorID{}, false
}

func decodeAuthor(data []byte) (AuthorID, bool) {
	if len(data) != len(AuthorID{}) {
		return AuthorID{}, false
	}
	var author AuthorID
	copy(author[:], data)
	return author, true
}
