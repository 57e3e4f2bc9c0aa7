// Package perm implements the per-table permutation algebra that every
// other component builds on: composition, inversion, validity checks,
// and applying a permutation to an Instance to get an isomorphic one
// (spec.md §4.1).
package perm

import (
	"fmt"

	"github.com/csetauto/csetauto/cset"
)

// Perm is a per-table bijection: Perm[t] is a permutation of
// {0, ..., n-1} where n is the size of table t under whichever
// Instance the permutation was derived from.
type Perm map[cset.TableID][]int

// Identity returns the identity permutation over the given per-table
// sizes.
func Identity(sizes map[cset.TableID]int) Perm {
	p := make(Perm, len(sizes))
	for t, n := range sizes {
		row := make([]int, n)
		for i := range row {
			row[i] = i
		}
		p[t] = row
	}
	return p
}

// IsPerm reports whether every component of p is a bijection of
// {0, ..., len-1}.
func IsPerm(p Perm) bool {
	for _, row := range p {
		seen := make([]bool, len(row))
		for _, v := range row {
			if v < 0 || v >= len(row) || seen[v] {
				return false
			}
			seen[v] = true
		}
	}
	return true
}

// sameShape reports whether p and q have the same table keys with
// matching lengths.
func sameShape(p, q Perm) bool {
	if len(p) != len(q) {
		return false
	}
	for t, row := range p {
		orow, ok := q[t]
		if !ok || len(orow) != len(row) {
			return false
		}
	}
	return true
}

// Compose returns p then q: (p∘q)[t][i] = q[t][p[t][i]]. Compose panics
// if p and q do not have matching table keys and lengths — a
// programmer error, since every permutation in one computation is
// defined over the same Instance's table sizes.
func Compose(p, q Perm) Perm {
	if !sameShape(p, q) {
		panic("perm: compose of permutations with mismatched tables")
	}
	r := make(Perm, len(p))
	for t, prow := range p {
		qrow := q[t]
		rrow := make([]int, len(prow))
		for i, pi := range prow {
			rrow[i] = qrow[pi]
		}
		r[t] = rrow
	}
	return r
}

// Invert returns the inverse of p. Invert panics if p is not a
// permutation.
func Invert(p Perm) Perm {
	if !IsPerm(p) {
		panic("perm: invert of non-permutation")
	}
	inv := make(Perm, len(p))
	for t, row := range p {
		irow := make([]int, len(row))
		for i, v := range row {
			irow[v] = i
		}
		inv[t] = irow
	}
	return inv
}

// Equal reports whether p and q act identically on every table they
// share. Tables present in one but not the other are ignored.
func Equal(p, q Perm) bool {
	for t, row := range p {
		orow, ok := q[t]
		if !ok {
			continue
		}
		if len(orow) != len(row) {
			return false
		}
		for i, v := range row {
			if orow[i] != v {
				return false
			}
		}
	}
	return true
}

// Apply returns a new Instance with every arrow image relabeled by p:
// for arrow a: s -> t, apply(g,P).img_a[P[s][i]] = P[t][img_a[i]], and
// every attribute arrow's values relabeled the same way along its
// source table. Apply panics if p is not a permutation; callers are
// responsible for only calling Apply with a verified automorphism (the
// NotAnAutomorphism error kind of spec.md §7 is this panic).
func Apply(inst *cset.Instance, p Perm) *cset.Instance {
	if !IsPerm(p) {
		panic("perm: apply of non-permutation")
	}
	schema := inst.Schema()
	sizes := make([]int, schema.NumTables())
	for _, t := range schema.Tables() {
		sizes[t] = inst.Size(t)
	}

	images := make([][]int, schema.NumArrows())
	for _, a := range schema.Arrows() {
		s := schema.Src(a)
		t := schema.Tgt(a)
		src := inst.Image(a)
		out := make([]int, len(src))
		ps := p[s]
		pt := p[t]
		for i, j := range src {
			out[ps[i]] = pt[j]
		}
		images[a] = out
	}

	attrs := make([][]cset.Value, schema.NumAttrArrows())
	for _, a := range schema.AttrArrows() {
		s := schema.ASrc(a)
		src := inst.AttrValues(a)
		out := make([]cset.Value, len(src))
		ps := p[s]
		for i, v := range src {
			out[ps[i]] = v
		}
		attrs[a] = out
	}

	out, err := cset.NewInstance(schema, sizes, images, attrs)
	if err != nil {
		// p was verified a permutation and inst was valid, so the
		// relabeled instance cannot fail validation.
		panic(fmt.Sprintf("perm: apply produced an invalid instance: %v", err))
	}
	return out
}

// Restrict returns the component of p on table t alone, as a bare
// permutation slice. Used by the search tree's orbit computation
// (spec.md §4.4.1), which only ever needs the action on the splitting
// table.
func Restrict(p Perm, t cset.TableID) []int {
	row := p[t]
	out := make([]int, len(row))
	copy(out, row)
	return out
}
