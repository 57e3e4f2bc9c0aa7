// Package canon picks the canonical representative of an instance's
// isomorphism class from the discrete leaf colorings search.Run
// discovers, and
// derives a stable 64-bit hash from it (spec.md §4.5).
//
// The "apply every automorphism, sort, take the minimum" shape mirrors
// the teacher's C14n entry point in graph/formats/rdf/iso_canonical.go,
// which applies every candidate blank-node labeling and keeps the one
// graphLess ranks lowest; here the candidates are pseudo-structure
// relabelings (lifted back to the attributed schema when the input had
// attributes) and the ranking is schema-order-driven instead of
// graphLess's fixed triple ordering.
package canon

import (
	"encoding/binary"
	"fmt"

	"github.com/csetauto/csetauto/cset"
	"github.com/csetauto/csetauto/cset/internal/keysort"
	"github.com/csetauto/csetauto/cset/order"
	"github.com/csetauto/csetauto/cset/perm"
	"github.com/csetauto/csetauto/cset/pseudo"
	"github.com/csetauto/csetauto/cset/xhash"
)

const hashSeed = 0x63616e6f6e // "canon" in hex-ish ASCII

// Canonical applies every leaf coloring of leaves (the discrete leaf
// labelings of pseudoInst discovered by search.Run, its Result.Leaves)
// to pseudoInst as a relabeling, lifts each result
// back to the attributed schema when info is non-nil, and returns the
// lexicographically minimum candidate under schema order together with
// its hash. Canonical panics if leaves is empty: the identity is
// always among an instance's automorphisms (spec.md I1), so an empty
// set means the caller violated that invariant upstream.
func Canonical(pseudoInst *cset.Instance, leaves []cset.Coloring, info *pseudo.Info) (*cset.Instance, uint64) {
	if len(leaves) == 0 {
		panic("canon: empty automorphism set")
	}

	targetSchema := pseudoInst.Schema()
	if info != nil {
		targetSchema = info.Orig
	}
	ord := order.Compute(targetSchema)

	var best *cset.Instance
	for _, rho := range leaves {
		candidate := perm.Apply(pseudoInst, perm.Perm(rho))
		if info != nil {
			candidate = pseudo.Lift(candidate, info)
		}
		if best == nil || less(candidate, best, ord) {
			best = candidate
		}
	}
	return best, hashInstance(best, ord)
}

// Hash returns canon's stable hash of inst directly, for callers that
// already hold a canonical instance (e.g. to re-verify a hash computed
// earlier, or to test I4/I5 on hand-built fixtures) without running a
// full search.
func Hash(inst *cset.Instance) uint64 {
	return hashInstance(inst, order.Compute(inst.Schema()))
}

// less implements spec.md §4.5 step 2's sort key κ: for attributed
// schemas, attribute arrows (in declaration order — spec.md does not
// define a separate score-based order for attribute arrows, only for
// tables and ordinary arrows) precede ordinary arrows, which follow
// ord's schema order.
func less(a, b *cset.Instance, ord *order.Order) bool {
	schema := a.Schema()
	if schema.Attributed() {
		for _, at := range schema.AttrArrows() {
			if c := compareValues(a.AttrValues(at), b.AttrValues(at)); c != 0 {
				return c < 0
			}
		}
	}
	for _, ar := range ord.Arrows() {
		ia, ib := a.Image(ar), b.Image(ar)
		if !keysort.IntsEqual(ia, ib) {
			return keysort.IntsLess(ia, ib)
		}
	}
	return false
}

func compareValues(a, b []cset.Value) int {
	for i := range a {
		switch {
		case a[i].Less(b[i]):
			return -1
		case b[i].Less(a[i]):
			return 1
		}
	}
	return 0
}

func hashInstance(inst *cset.Instance, ord *order.Order) uint64 {
	schema := inst.Schema()
	var buf []byte
	var tmp [8]byte
	putInt := func(v int) {
		binary.LittleEndian.PutUint64(tmp[:], uint64(int64(v)))
		buf = append(buf, tmp[:]...)
	}

	for _, t := range ord.Tables() {
		putInt(inst.Size(t))
	}
	if schema.Attributed() {
		for _, at := range schema.AttrArrows() {
			for _, v := range inst.AttrValues(at) {
				buf = append(buf, serializeValue(v)...)
			}
		}
	}
	for _, a := range ord.Arrows() {
		for _, v := range inst.Image(a) {
			putInt(v)
		}
	}
	return xhash.Tuple(hashSeed, buf)
}

// serializeValue renders a Value's bytes for hashing. The two concrete
// domain types this module ships, cset.StringValue and cset.IntValue,
// get exact byte renderings; any other Orderable domain a caller
// supplies falls back to its fmt.Stringer/%v form, which is stable only
// if that type's formatting is.
func serializeValue(v cset.Value) []byte {
	switch t := v.(type) {
	case cset.StringValue:
		return []byte(t)
	case cset.IntValue:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(t)))
		return buf[:]
	default:
		return []byte(fmt.Sprintf("%v", v))
	}
}
