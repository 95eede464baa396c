package chain

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/eigerco/mulberry/internal/crypto"
	"github.com/eigerco/mulberry/internal/digest"
)

var ErrHeaderTruncated = errors.New("header bytes truncated")

// Header is the view of a block header the authorship engine needs: position
// in the chain plus the consensus digest the author identity is decoded from.
type Header struct {
	Number     uint64
	ParentHash crypto.Hash
	Digest     digest.Digest
}

// Encode produces the canonical byte representation of the header. Header
// hashes are computed over this encoding, so it must stay deterministic.
func (h Header) Encode() []byte {
	size := 8 + crypto.HashSize + 4
	for _, item := range h.Digest {
		size += 4 + 4 + len(item.Data)
	}

	out := make([]byte, 0, size)
	out = binary.BigEndian.AppendUint64(out, h.Number)
	out = append(out, h.ParentHash[:]...)
	out = binary.BigEndian.AppendUint32(out, uint32(len(h.Digest)))
	for _, item := range h.Digest {
		out = append(out, item.Engine[:]...)
		out = binary.BigEndian.AppendUint32(out, uint32(len(item.Data)))
		out = append(out, item.Data...)
	}
	return out
}

// DecodeHeader parses a header from its canonical encoding.
func DecodeHeader(data []byte) (Header, error) {
	var h Header
	if len(data) < 8+crypto.HashSize+4 {
		return Header{}, ErrHeaderTruncated
	}
	h.Number = binary.BigEndian.Uint64(data[:8])
	copy(h.ParentHash[:], data[8:8+crypto.HashSize])
	offset := 8 + crypto.HashSize

	count := binary.BigEndian.Uint32(data[offset : offset+4])
	offset += 4

	for i := uint32(0); i < count; i++ {
		if len(data) < offset+8 {
			return Header{}, fmt.Errorf("digest item %d: %w", i, ErrHeaderTruncated)
		}
		var item digest.DigestItem
		copy(item.Engine[:], data[offset:offset+4])
		length := int(binary.BigEndian.Uint32(data[offset+4 : offset+8]))
		offset += 8
		if len(data) < offset+length {
			return Header{}, fmt.Errorf("digest item %d: %w", i, ErrHeaderTruncated)
		}
		item.Data = append([]byte(nil), data[offset:offset+length]...)
		offset += length
		h.Digest = append(h.Digest, item)
	}
	return h, nil
}

// Hash returns the Blake2b-256 hash of the canonical encoding.
func (h Header) Hash() crypto.Hash {
	return crypto.HashData(h.Encode())
}
