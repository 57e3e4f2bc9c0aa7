// Package xhash provides the keyed 64-bit hash used by color refinement
// (bucketing), by the search tree (node indicators) and by
// canonicalization (the final stable hash). It wraps
// github.com/cespare/xxhash/v2 and returns it as a hash.Hash64, the
// shape the teacher's RDF canonicalization hashing threads through
// (graph/formats/rdf/iso_canonical.go's hashTuple takes a hash.Hash
// parameter). The hash function itself is fixed: New, Tuple and Ints
// always use xxhash, and there is no way to supply another one.
package xhash

import (
	"encoding/binary"
	"hash"

	"github.com/cespare/xxhash/v2"
)

// New returns a fresh keyed 64-bit hash.Hash64. The seed distinguishes
// independent hash "channels" (e.g. refinement's per-round hash from
// canonicalization's final hash) without needing two different hash
// functions.
func New(seed uint64) hash.Hash64 {
	h := xxhash.New()
	if seed != 0 {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], seed)
		h.Write(buf[:])
	}
	return h
}

// Tuple hashes the concatenation of the given byte strings using a
// fresh instance derived from New(seed), mirroring the teacher's
// hashTuple helper in iso_canonical.go.
func Tuple(seed uint64, parts ...[]byte) uint64 {
	h := New(seed)
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum64()
}

// Ints hashes the little-endian encoding of a slice of ints, used to
// hash a color's ColorData vector (spec.md §4.2 step 2).
func Ints(seed uint64, vs []int) uint64 {
	buf := make([]byte, 8*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(int64(v)))
	}
	return Tuple(seed, buf)
}
