package authorship

import (
	"encoding/binary"
	"fmt"

	"github.com/eigerco/mulberry/internal/crypto"
)

// Durable keys owned by the engine. Everything else it touches is transient
// and lives for one block only.
var (
	authorKey       = []byte("authorship/author")
	unclesSetKey    = []byte("authorship/uncles_set")
	windowKeyPrefix = []byte("authorship/window/")
)

// windowKey maps a block number to its history bucket. The big-endian suffix
// keeps buckets in block-number order under the store's byte-ordered
// iteration.
func windowKey(number uint64) []byte {
	key := make([]byte, 0, len(windowKeyPrefix)+8)
	key = append(key, windowKeyPrefix...)
	return binary.BigEndian.AppendUint64(key, number)
}

func encodeHashes(hashes []crypto.Hash) []byte {
	out := make([]byte, 0, len(hashes)*crypto.HashSize)
	for _, h := range hashes {
		out = append(out, h[:]...)
	}
	return out
}

func decodeHashes(value []byte) ([]crypto.Hash, error) {
	if len(value)%crypto.HashSize != 0 {
		return nil, fmt.Errorf("corrupt history bucket: %d bytes", len(value))
	}
	hashes := make([]crypto.Hash, 0, len(value)/crypto.HashSize)
	for offset := 0; offset < len(value); offset += crypto.HashSize {
		var h crypto.Hash
		copy(h[:], value[offset:offset+crypto.HashSize])
		hashes = append(hashes, h)
	}
	return hashes, nil
}
