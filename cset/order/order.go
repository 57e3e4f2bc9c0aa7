// Package order computes the deterministic total order on a schema's
// tables and arrows that canonicalization's sort key and hash
// serialization depend on (spec.md §4.6). The search tree's
// splitting-cell tie-break does not use it; it scans tables in
// declaration order.
//
// The scores are grown by a fixed-point iteration over a schema's
// arrow graph, the same repeat-until-stable shape as the teacher's
// hashBNodes loop in graph/formats/rdf/iso_canonical.go, but applied
// to a pair of additive scores per table rather than a per-node hash.
package order

import (
	"sort"

	"github.com/csetauto/csetauto/cset"
)

type score struct {
	in, out int
}

// Order is a fixed ranking of a schema's tables and arrows, ascending
// by rank, with rank 0 being the element that should dominate a
// canonicalization comparison key first.
type Order struct {
	schema    *cset.Schema
	tableRank []int
	tables    []cset.TableID
	arrowRank []int
	arrows    []cset.ArrowID
}

// Compute runs the score fixed-point iteration of spec.md §4.6 over
// schema and returns the resulting table and arrow order.
func Compute(schema *cset.Schema) *Order {
	scores := initialScores(schema)
	tableOrder := rankTables(schema, scores)

	limit := schema.NumTables() + 1
	converged := false
	for i := 0; i < limit; i++ {
		next := stepScores(schema, scores)
		nextOrder := rankTables(schema, next)
		scores = next
		if equalTableOrder(nextOrder, tableOrder) {
			tableOrder = nextOrder
			converged = true
			break
		}
		tableOrder = nextOrder
	}
	if !converged {
		panic("order: schema score did not converge within the table-count bound")
	}

	tableRank := make([]int, schema.NumTables())
	for rank, t := range tableOrder {
		tableRank[t] = rank
	}

	arrowOrder := rankArrows(schema, scores)
	arrowRank := make([]int, schema.NumArrows())
	for rank, a := range arrowOrder {
		arrowRank[a] = rank
	}

	return &Order{
		schema:    schema,
		tableRank: tableRank,
		tables:    tableOrder,
		arrowRank: arrowRank,
		arrows:    arrowOrder,
	}
}

func initialScores(schema *cset.Schema) []score {
	scores := make([]score, schema.NumTables())
	for i := range scores {
		scores[i] = score{in: 1, out: 1}
	}
	return scores
}

// stepScores computes score(t) := score(t) + (Σ in_score(s), Σ
// out_score(u)) for every arrow s->t and t->u, reading entirely from
// the previous round's scores.
func stepScores(schema *cset.Schema, scores []score) []score {
	next := make([]score, schema.NumTables())
	copy(next, scores)
	for _, t := range schema.Tables() {
		s := next[t]
		for _, a := range schema.InArrows(t) {
			s.in += scores[schema.Src(a)].in
		}
		for _, a := range schema.OutArrows(t) {
			s.out += scores[schema.Tgt(a)].out
		}
		next[t] = s
	}
	return next
}

// rankTables sorts tables ascending by score, then reverses so that
// high-score (hard to distinguish) tables sort first. Tied tables end
// up in reverse declaration order (the stable sort keeps declaration
// order and the reversal flips it), so the order stays deterministic.
func rankTables(schema *cset.Schema, scores []score) []cset.TableID {
	order := append([]cset.TableID(nil), schema.Tables()...)
	sort.SliceStable(order, func(i, j int) bool {
		return less(scores[order[i]], scores[order[j]])
	})
	reverseTables(order)
	return order
}

func rankArrows(schema *cset.Schema, scores []score) []cset.ArrowID {
	order := append([]cset.ArrowID(nil), schema.Arrows()...)
	pairScore := func(a cset.ArrowID) score {
		src, tgt := scores[schema.Src(a)], scores[schema.Tgt(a)]
		return score{in: src.in + tgt.in, out: src.out + tgt.out}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return less(pairScore(order[i]), pairScore(order[j]))
	})
	reverseArrows(order)
	return order
}

func less(a, b score) bool {
	if a.in != b.in {
		return a.in < b.in
	}
	return a.out < b.out
}

func reverseTables(s []cset.TableID) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseArrows(s []cset.ArrowID) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func equalTableOrder(a, b []cset.TableID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TableRank returns t's 0-based position in the schema order.
func (o *Order) TableRank(t cset.TableID) int { return o.tableRank[t] }

// ArrowRank returns a's 0-based position in the schema order.
func (o *Order) ArrowRank(a cset.ArrowID) int { return o.arrowRank[a] }

// Tables returns the tables of the schema in order.
func (o *Order) Tables() []cset.TableID { return o.tables }

// Arrows returns the arrows of the schema in order.
func (o *Order) Arrows() []cset.ArrowID { return o.arrows }
