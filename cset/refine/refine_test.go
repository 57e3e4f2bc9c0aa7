package refine

import (
	"testing"

	"github.com/csetauto/csetauto/cset"
)

func cycleSchema(t *testing.T) *cset.Schema {
	t.Helper()
	schema, err := cset.NewSchema(
		[]string{"V"},
		[]cset.ArrowSpec{{Name: "next", Src: "V", Tgt: "V"}},
		nil, nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	return schema
}

func TestRefineFourCycleIsUniform(t *testing.T) {
	// A directed 4-cycle is vertex-transitive: color refinement from a
	// uniform start must not distinguish any vertices.
	schema := cycleSchema(t)
	inst, err := cset.NewInstance(schema, []int{4}, [][]int{{1, 2, 3, 0}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	init := cset.NewUniformColoring(schema.Tables(), []int{4})
	got := Refine(inst, init)
	if got.NumColors(0) != 1 {
		t.Errorf("4-cycle refinement produced %d colors, want 1 (vertex-transitive)", got.NumColors(0))
	}
}

func TestRefineDistinguishesDifferentInDegree(t *testing.T) {
	// Arrow e maps both vertices to vertex 0, so vertex 0 receives two
	// edges and vertex 1 none: in-degree differs so refinement must
	// separate them.
	schema, err := cset.NewSchema(
		[]string{"V"},
		[]cset.ArrowSpec{{Name: "e", Src: "V", Tgt: "V"}},
		nil, nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	inst, err := cset.NewInstance(schema, []int{2}, [][]int{{0, 0}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	init := cset.NewUniformColoring(schema.Tables(), []int{2})
	got := Refine(inst, init)
	if got.NumColors(0) != 2 {
		t.Errorf("got %d colors, want 2 (vertex 0 absorbs both edges, vertex 1 has none)", got.NumColors(0))
	}
	if got[0][0] == got[0][1] {
		t.Errorf("vertices with different edge roles got the same color: %v", got[0])
	}
}

func TestRefineIsIdempotentOnItsOwnOutput(t *testing.T) {
	schema := cycleSchema(t)
	inst, err := cset.NewInstance(schema, []int{5}, [][]int{{1, 2, 3, 4, 0}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	init := cset.NewUniformColoring(schema.Tables(), []int{5})
	once := Refine(inst, init)
	twice := Refine(inst, once)
	if !once.Equal(twice) {
		t.Errorf("refinement is not idempotent: once=%v twice=%v", once, twice)
	}
	if !IsEquitable(inst, once) {
		t.Error("Refine's output is not reported equitable by IsEquitable")
	}
}

func TestRefineRespectsIndividualization(t *testing.T) {
	schema := cycleSchema(t)
	inst, err := cset.NewInstance(schema, []int{4}, [][]int{{1, 2, 3, 0}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	init := cset.NewUniformColoring(schema.Tables(), []int{4}).Individualize(0, 0)
	got := Refine(inst, init)
	if got.NumColors(0) != 4 {
		t.Errorf("individualizing one vertex of a 4-cycle should fully discretize it, got %d colors", got.NumColors(0))
	}
}
