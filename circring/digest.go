package circring

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// Digest fingerprints the ring state: SHA3-256 over the cursor's clockwise
// offset from the origin followed by every value clockwise from the origin,
// all little-endian uint64. Two rings with the same order and cursor
// position digest equally regardless of their slot layout.
func (r *Ring) Digest() [32]byte {
	h := sha3.New256()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(r.cursorOffset()))
	h.Write(buf[:])

	cur := r.origin
	for i := 0; i < r.Len(); i++ {
		n := r.node(cur)
		binary.LittleEndian.PutUint64(buf[:], n.Value)
		h.Write(buf[:])
		cur = n.Next
	}

	var out [32]byte
	h.Sum(out[:0])
	return out
}
