package cset_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/exp/rand"

	"github.com/csetauto/csetauto/cset"
	"github.com/csetauto/csetauto/cset/canon"
	"github.com/csetauto/csetauto/cset/perm"
	"github.com/csetauto/csetauto/cset/pseudo"
	"github.com/csetauto/csetauto/cset/search"
)

// instancesEqual reports whether a and b agree on every arrow's image,
// comparing arrow-by-arrow with cmp.Diff since cset.Instance keeps its
// fields unexported and only exposes them through accessors.
func instancesEqual(a, b *cset.Instance) bool {
	schema := a.Schema()
	for _, ar := range schema.Arrows() {
		if diff := cmp.Diff(a.Image(ar), b.Image(ar)); diff != "" {
			return false
		}
	}
	return true
}

// canonicalHash runs the full pipeline — pseudo-lowering when
// attributed, color refinement and search, canonicalization — over
// inst and returns its stable hash, mirroring how a caller wires the
// three public entry points together.
func canonicalHash(t *testing.T, inst *cset.Instance) uint64 {
	t.Helper()
	var pinst *cset.Instance
	var info *pseudo.Info
	if inst.Schema().Attributed() {
		pinst, info = pseudo.Lower(inst)
	} else {
		pinst = inst
	}
	result, _ := search.Run(pinst, search.DefaultConfig())
	_, hash := canon.Canonical(pinst, result.Leaves, info)
	return hash
}

func cycleInstance(t *testing.T, src, tgt []int, dec []string) *cset.Instance {
	t.Helper()
	schema, err := cset.NewSchema(
		[]string{"V", "E"},
		[]cset.ArrowSpec{{Name: "src", Src: "E", Tgt: "V"}, {Name: "tgt", Src: "E", Tgt: "V"}},
		[]string{"Label"},
		[]cset.AttrArrowSpec{{Name: "dec", Src: "V", Domain: "Label"}},
	)
	if err != nil {
		t.Fatal(err)
	}
	inst, err := cset.NewInstance(schema, []int{4, 4}, [][]int{src, tgt}, [][]cset.Value{cset.StringValues(dec)})
	if err != nil {
		t.Fatal(err)
	}
	return inst
}

// Scenario 1: vertex relabel of the same labeled 4-cycle.
func TestScenarioVertexRelabelOfFourCycle(t *testing.T) {
	g := cycleInstance(t, []int{0, 1, 2, 3}, []int{1, 2, 3, 0}, []string{"a", "b", "c", "d"})
	h := cycleInstance(t, []int{0, 2, 1, 3}, []int{2, 1, 3, 0}, []string{"a", "b", "c", "d"})
	if canonicalHash(t, g) != canonicalHash(t, h) {
		t.Error("vertex-relabeled isomorphic 4-cycles got different canonical hashes")
	}
}

// Scenario 2: same cycle, labels cyclically permuted along with it.
func TestScenarioLabelPermutationOfSameCycle(t *testing.T) {
	g := cycleInstance(t, []int{0, 1, 2, 3}, []int{1, 2, 3, 0}, []string{"a", "b", "c", "d"})
	h := cycleInstance(t, []int{0, 1, 2, 3}, []int{1, 2, 3, 0}, []string{"b", "c", "d", "a"})
	if canonicalHash(t, g) != canonicalHash(t, h) {
		t.Error("a cycle and its labels rotated together got different canonical hashes")
	}
}

// Scenario 3: same edges, a label multiset that cannot match.
func TestScenarioMismatchedLabelMultiset(t *testing.T) {
	g := cycleInstance(t, []int{0, 1, 2, 3}, []int{1, 2, 3, 0}, []string{"a", "a", "b", "c"})
	h := cycleInstance(t, []int{0, 1, 2, 3}, []int{1, 2, 3, 0}, []string{"a", "b", "c", "d"})
	if canonicalHash(t, g) == canonicalHash(t, h) {
		t.Error("label multisets that differ must not produce the same canonical hash")
	}
}

func twoLoopSchema(t *testing.T) *cset.Schema {
	t.Helper()
	schema, err := cset.NewSchema(
		[]string{"V"},
		[]cset.ArrowSpec{{Name: "e1", Src: "V", Tgt: "V"}, {Name: "e2", Src: "V", Tgt: "V"}},
		nil, nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	return schema
}

// Scenario 4a: a single vertex carrying two self-loops is rigid, and
// two instances built the same way hash identically.
func TestScenarioSingleVertexTwoSelfLoops(t *testing.T) {
	schema := twoLoopSchema(t)
	g, err := cset.NewInstance(schema, []int{1}, [][]int{{0}, {0}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	h, err := cset.NewInstance(schema, []int{1}, [][]int{{0}, {0}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if canonicalHash(t, g) != canonicalHash(t, h) {
		t.Error("two identically-built single-vertex two-self-loop instances hashed differently")
	}
}

// Scenario 4b: two loops forming a transposition pair between two
// vertices must hash differently from two separate fixed loops.
func TestScenarioTranspositionLoopsVsFixedLoops(t *testing.T) {
	schema := twoLoopSchema(t)
	transposition, err := cset.NewInstance(schema, []int{2}, [][]int{{1, 0}, {1, 0}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	fixed, err := cset.NewInstance(schema, []int{2}, [][]int{{0, 0}, {1, 1}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if canonicalHash(t, transposition) == canonicalHash(t, fixed) {
		t.Error("a transposition pair of loops and two separately-fixed loops must hash differently")
	}
}

// Scenario 4c (substitute for the Hartke–Radcliffe fixture, whose edge
// list spec.md gives only in truncated form): pruning toggles must
// agree on the automorphism count for a structure with a nontrivial
// automorphism group, exercising the same I8 property that fixture was
// meant to stress.
func TestScenarioPruningTogglesAgreeOnRichAutomorphismGroup(t *testing.T) {
	schema := twoLoopSchema(t)
	inst, err := cset.NewInstance(schema, []int{2}, [][]int{{1, 0}, {1, 0}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	baseline, _ := search.Run(inst, search.Config{})
	withAuto, _ := search.Run(inst, search.Config{AutoPrune: true})
	withOrbit, _ := search.Run(inst, search.Config{OrbitPrune: true})
	withBoth, _ := search.Run(inst, search.Config{AutoPrune: true, OrbitPrune: true})
	for name, r := range map[string][]perm.Perm{"auto": withAuto.Autos, "orbit": withOrbit.Autos, "both": withBoth.Autos} {
		if len(r) != len(baseline.Autos) {
			t.Errorf("%s-pruned search found %d automorphisms, unpruned found %d", name, len(r), len(baseline.Autos))
		}
	}
}

// Scenario 6: a random joint permutation of a multi-table schema's
// elements must not change the canonical hash.
func TestScenarioRandomPermutationOfMultiTableSchema(t *testing.T) {
	tables := []string{"T0", "T1", "T2", "T3", "T4", "T5", "T6"}
	var arrows []cset.ArrowSpec
	for i := 0; i < 17; i++ {
		arrows = append(arrows, cset.ArrowSpec{
			Name: namef(i),
			Src:  tables[i%len(tables)],
			Tgt:  tables[(i+1)%len(tables)],
		})
	}
	schema, err := cset.NewSchema(tables, arrows, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	sizes := make([]int, schema.NumTables())
	for i := range sizes {
		sizes[i] = 3
	}
	images := make([][]int, schema.NumArrows())
	for a := range images {
		tgtSize := sizes[schema.Tgt(cset.ArrowID(a))]
		row := make([]int, sizes[schema.Src(cset.ArrowID(a))])
		for j := range row {
			row[j] = (j + a) % tgtSize
		}
		images[a] = row
	}
	inst, err := cset.NewInstance(schema, sizes, images, nil)
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(7))
	p := make(perm.Perm, schema.NumTables())
	for _, t := range schema.Tables() {
		p[t] = rng.Perm(sizes[t])
	}
	permuted := perm.Apply(inst, p)

	if canonicalHash(t, inst) != canonicalHash(t, permuted) {
		t.Error("a random joint permutation of a multi-table schema's elements changed the canonical hash")
	}
}

// Canonicalization run twice over the same instance must pick the
// same representative, not merely the same hash.
func TestScenarioCanonicalizationIsDeterministic(t *testing.T) {
	g := cycleInstance(t, []int{0, 1, 2, 3}, []int{1, 2, 3, 0}, []string{"a", "b", "c", "d"})

	pinst1, info1 := pseudo.Lower(g)
	result1, _ := search.Run(pinst1, search.DefaultConfig())
	winner1, _ := canon.Canonical(pinst1, result1.Leaves, info1)

	pinst2, info2 := pseudo.Lower(g)
	result2, _ := search.Run(pinst2, search.DefaultConfig())
	winner2, _ := canon.Canonical(pinst2, result2.Leaves, info2)

	if !instancesEqual(winner1, winner2) {
		t.Error("canonicalizing the same instance twice picked different representatives")
	}
}

func namef(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	return "arrow" + string(letters[i%len(letters)])
}
