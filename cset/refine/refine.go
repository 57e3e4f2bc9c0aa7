// Package refine implements color refinement: the fixed-point
// iteration that turns an initial coloring into the unique equitable
// partition of an instance (spec.md §4.2).
//
// The shape is the teacher's hashBNodes fixed-point loop in
// graph/formats/rdf/iso_canonical.go — maintain a current/previous pair
// of colorings, recompute each element's invariant from its neighbors
// under the previous round's colors, detect the fixed point by the
// distinct-value count no longer changing. Where the teacher buckets
// RDF blank nodes by a content hash with a collision-tolerant table,
// Refine buckets table elements by a content hash with the same
// tolerance: equal hashes are only trusted once the full invariant
// tuple ("ColorData" in spec.md terms) is confirmed equal.
package refine

import (
	"sort"

	"github.com/csetauto/csetauto/cset"
	"github.com/csetauto/csetauto/cset/internal/keysort"
	"github.com/csetauto/csetauto/cset/xhash"
)

// hashSeed distinguishes refinement's bucketing hash from
// canonicalization's final hash; both wrap the same xhash.New.
const hashSeed = 0x726566696e65 // "refine" in hex-ish ASCII, arbitrary

// colorData is one element's refinement invariant (spec.md §4.2 step
// 1): its previous color, the count vector of source colors over each
// in-arrow's preimage, and the single target color along each
// out-arrow.
type colorData struct {
	prev      int
	inCounts  [][]int
	outColors []int
}

// flatten renders cd as the flat integer tuple xhash.Ints and
// keysort's lexicographic comparators operate on: previous color,
// length-prefixed in-count vectors, then length-prefixed out-colors.
func (cd *colorData) flatten() []int {
	vals := make([]int, 0, 2+len(cd.outColors)+1)
	vals = append(vals, cd.prev, len(cd.inCounts))
	for _, counts := range cd.inCounts {
		vals = append(vals, len(counts))
		vals = append(vals, counts...)
	}
	vals = append(vals, len(cd.outColors))
	vals = append(vals, cd.outColors...)
	return vals
}

// topology is the in/out-arrow index of a Descriptor's tables, derived
// once per Refine call from Arrows()/Src()/Tgt() since Descriptor (spec.md
// §6) does not itself expose per-table arrow lists the way the
// concrete cset.Schema's InArrows/OutArrows do.
type topology struct {
	in, out map[cset.TableID][]cset.ArrowID
}

func buildTopology(g cset.Descriptor) *topology {
	top := &topology{in: make(map[cset.TableID][]cset.ArrowID), out: make(map[cset.TableID][]cset.ArrowID)}
	for _, a := range g.Arrows() {
		s, t := g.Src(a), g.Tgt(a)
		top.out[s] = append(top.out[s], a)
		top.in[t] = append(top.in[t], a)
	}
	return top
}

// Refine returns the unique equitable coloring refining init over g. g
// is assumed pure (un-attributed): attribute arrows are not consulted,
// since any attributed instance must first be lowered to its
// pseudo-structure by cset/pseudo before refinement sees it.
func Refine(g cset.Descriptor, init cset.Coloring) cset.Coloring {
	top := buildTopology(g)
	curr := init.Clone()

	lastTotal := -1
	// Color count is monotonically non-decreasing and bounded by the
	// total element count; this bound can only be exceeded by a bug in
	// the fixed-point test below, never by valid input (spec.md §7,
	// RefinementNonTermination).
	limit := 0
	for _, t := range g.Tables() {
		limit += g.Size(t)
	}
	for round := 0; round <= limit+1; round++ {
		next := refineOnce(g, top, curr)
		total := next.TotalColors(g.Tables())
		if total == lastTotal {
			return next
		}
		lastTotal = total
		curr = next
	}
	panic("refine: color count did not converge within the element-count bound")
}

// refineOnce performs one round of spec.md §4.2 steps 1-4 and returns
// the resulting coloring; it does not mutate curr.
func refineOnce(g cset.Descriptor, top *topology, curr cset.Coloring) cset.Coloring {
	next := make(cset.Coloring, len(curr))
	for _, t := range g.Tables() {
		next[t] = refineTable(g, top, curr, t)
	}
	return next
}

type group struct {
	hash uint64
	key  []int
}

func refineTable(g cset.Descriptor, top *topology, curr cset.Coloring, t cset.TableID) []int {
	n := g.Size(t)
	inArrows := top.in[t]
	outArrows := top.out[t]

	cds := make([]colorData, n)
	for i := 0; i < n; i++ {
		cd := colorData{prev: curr[t][i]}
		if len(inArrows) != 0 {
			cd.inCounts = make([][]int, len(inArrows))
			for ai, a := range inArrows {
				s := g.Src(a)
				counts := make([]int, curr.NumColors(s))
				for _, j := range g.Preimage(a, i) {
					counts[curr[s][j]]++
				}
				cd.inCounts[ai] = counts
			}
		}
		if len(outArrows) != 0 {
			cd.outColors = make([]int, len(outArrows))
			for bi, b := range outArrows {
				u := g.Tgt(b)
				cd.outColors[bi] = curr[u][g.Image(b)[i]]
			}
		}
		cds[i] = cd
	}

	// Bucket by (hash, full-tuple equality), per spec.md §4.2's
	// requirement to tolerate hash collisions rather than trust them.
	var groups []group
	hashToGroups := make(map[uint64][]int)
	elementGroup := make([]int, n)
	for i := range cds {
		key := cds[i].flatten()
		h := xhash.Ints(hashSeed, key)
		found := -1
		for _, gi := range hashToGroups[h] {
			if keysort.IntsEqual(groups[gi].key, key) {
				found = gi
				break
			}
		}
		if found == -1 {
			found = len(groups)
			groups = append(groups, group{hash: h, key: key})
			hashToGroups[h] = append(hashToGroups[h], found)
		}
		elementGroup[i] = found
	}

	// Deterministic dense renumbering: sort distinct groups by hash,
	// tie-broken by the flattened tuple itself (spec.md §4.2 step 3).
	order := make([]int, len(groups))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ga, gb := groups[order[a]], groups[order[b]]
		if ga.hash != gb.hash {
			return ga.hash < gb.hash
		}
		return keysort.IntsLess(ga.key, gb.key)
	})
	rank := make([]int, len(groups))
	for pos, gi := range order {
		rank[gi] = pos
	}

	out := make([]int, n)
	for i, gi := range elementGroup {
		out[i] = rank[gi]
	}
	return out
}

// IsEquitable reports whether c is a fixed point of refinement over g:
// for every arrow and every source color, all elements of that color
// share the same ColorData (spec.md invariant I6). It is used by
// tests, not by Refine itself (Refine always returns an equitable
// coloring by construction).
func IsEquitable(g cset.Descriptor, c cset.Coloring) bool {
	return Refine(g, c).Equal(c)
}
