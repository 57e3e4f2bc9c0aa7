// Package pseudo lowers an attributed instance to a pure one by turning
// each attribute domain into a synthetic table of its distinct sorted
// values, and lifts automorphism results on the pure structure back to
// the attributed one (spec.md §4.3).
//
// The "collect distinct values, sort them, rank by position" shape
// mirrors the teacher's appendOrdered/byLengthHash partitioning in
// graph/formats/rdf/iso_canonical.go, applied to attribute values
// instead of blank-node hash buckets.
package pseudo

import (
	"fmt"
	"sort"

	"github.com/csetauto/csetauto/cset"
)

// Info records how an attributed schema was lowered to a pure one, the
// data Lift needs to reverse the process.
type Info struct {
	Orig   *cset.Schema
	Pseudo *cset.Schema

	// DomainTable maps each attribute domain to its synthetic table in
	// Pseudo.
	DomainTable map[cset.DomainID]cset.TableID

	// AttrArrow maps each attribute arrow of Orig to the ordinary
	// arrow that replaced it in Pseudo.
	AttrArrow map[cset.AttrArrowID]cset.ArrowID

	// Values holds, for each domain, the distinct values that
	// appeared in any of its attribute arrows, sorted ascending. The
	// 0-based position of a value in this slice is the rank used as
	// its image in Pseudo.
	Values map[cset.DomainID][]cset.Value
}

// Lower builds the pseudo-structure of inst: the same tables and
// arrows, plus one new table per attribute domain holding that
// domain's distinct values in sorted order, with every attribute arrow
// replaced by an ordinary arrow into the corresponding value table.
func Lower(inst *cset.Instance) (*cset.Instance, *Info) {
	orig := inst.Schema()

	tableNames := make([]string, orig.NumTables())
	for _, t := range orig.Tables() {
		tableNames[t] = orig.TableName(t)
	}

	arrowSpecs := make([]cset.ArrowSpec, 0, orig.NumArrows()+orig.NumAttrArrows())
	for _, a := range orig.Arrows() {
		arrowSpecs = append(arrowSpecs, cset.ArrowSpec{
			Name: orig.ArrowName(a),
			Src:  orig.TableName(orig.Src(a)),
			Tgt:  orig.TableName(orig.Tgt(a)),
		})
	}

	info := &Info{
		Orig:        orig,
		DomainTable: make(map[cset.DomainID]cset.TableID, orig.NumDomains()),
		AttrArrow:   make(map[cset.AttrArrowID]cset.ArrowID, orig.NumAttrArrows()),
		Values:      make(map[cset.DomainID][]cset.Value, orig.NumDomains()),
	}

	for _, d := range orig.Domains() {
		info.Values[d] = distinctSorted(valuesForDomain(orig, inst, d))
		info.DomainTable[d] = cset.TableID(len(tableNames))
		tableNames = append(tableNames, fmt.Sprintf("#value:%s", orig.DomainName(d)))
	}

	for idx, a := range orig.AttrArrows() {
		tgtTable := tableNames[info.DomainTable[orig.ATgt(a)]]
		newArrowID := cset.ArrowID(len(arrowSpecs))
		arrowSpecs = append(arrowSpecs, cset.ArrowSpec{
			Name: fmt.Sprintf("%s#attr%d", orig.AttrArrowName(a), idx),
			Src:  orig.TableName(orig.ASrc(a)),
			Tgt:  tgtTable,
		})
		info.AttrArrow[a] = newArrowID
	}

	pseudoSchema, err := cset.NewSchema(tableNames, arrowSpecs, nil, nil)
	if err != nil {
		panic(fmt.Sprintf("pseudo: lowering produced an invalid schema: %v", err))
	}
	info.Pseudo = pseudoSchema

	sizes := make([]int, pseudoSchema.NumTables())
	for _, t := range orig.Tables() {
		sizes[t] = inst.Size(t)
	}
	for d, vals := range info.Values {
		sizes[info.DomainTable[d]] = len(vals)
	}

	images := make([][]int, pseudoSchema.NumArrows())
	for _, a := range orig.Arrows() {
		images[a] = append([]int(nil), inst.Image(a)...)
	}
	for _, a := range orig.AttrArrows() {
		vals := info.Values[orig.ATgt(a)]
		rankOf := rankIndex(vals)
		src := inst.AttrValues(a)
		img := make([]int, len(src))
		for i, v := range src {
			img[i] = rankOf(v)
		}
		images[info.AttrArrow[a]] = img
	}

	pseudoInst, err := cset.NewInstance(pseudoSchema, sizes, images, nil)
	if err != nil {
		panic(fmt.Sprintf("pseudo: lowering produced an invalid instance: %v", err))
	}
	return pseudoInst, info
}

// Lift reverses Lower: given an instance p over info.Pseudo (typically
// the application of a discovered automorphism or a canonicalization
// candidate), it returns the corresponding attributed instance over
// info.Orig, substituting true attribute values back in for the
// synthetic value-table ranks.
func Lift(p *cset.Instance, info *Info) *cset.Instance {
	orig := info.Orig

	sizes := make([]int, orig.NumTables())
	for _, t := range orig.Tables() {
		sizes[t] = p.Size(t)
	}

	images := make([][]int, orig.NumArrows())
	for _, a := range orig.Arrows() {
		images[a] = append([]int(nil), p.Image(a)...)
	}

	attrs := make([][]cset.Value, orig.NumAttrArrows())
	for _, a := range orig.AttrArrows() {
		vals := info.Values[orig.ATgt(a)]
		img := p.Image(info.AttrArrow[a])
		out := make([]cset.Value, len(img))
		for i, rank := range img {
			out[i] = vals[rank]
		}
		attrs[a] = out
	}

	out, err := cset.NewInstance(orig, sizes, images, attrs)
	if err != nil {
		panic(fmt.Sprintf("pseudo: lift produced an invalid instance: %v", err))
	}
	return out
}

func valuesForDomain(schema *cset.Schema, inst *cset.Instance, d cset.DomainID) []cset.Value {
	var vals []cset.Value
	for _, a := range schema.AttrArrows() {
		if schema.ATgt(a) != d {
			continue
		}
		vals = append(vals, inst.AttrValues(a)...)
	}
	return vals
}

// distinctSorted returns the distinct values of vs, sorted ascending by
// Less, deduplicating equal-by-Less-in-both-directions values.
func distinctSorted(vs []cset.Value) []cset.Value {
	if len(vs) == 0 {
		return nil
	}
	sorted := append([]cset.Value(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	out := sorted[:1]
	for _, v := range sorted[1:] {
		last := out[len(out)-1]
		if last.Less(v) || v.Less(last) {
			out = append(out, v)
		}
	}
	return out
}

// rankIndex returns a function mapping a value to its position in the
// sorted, distinct slice vals via binary search.
func rankIndex(vals []cset.Value) func(cset.Value) int {
	return func(v cset.Value) int {
		lo, hi := 0, len(vals)
		for lo < hi {
			mid := (lo + hi) / 2
			if vals[mid].Less(v) {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		return lo
	}
}
