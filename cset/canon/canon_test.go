package canon

import (
	"testing"

	"github.com/csetauto/csetauto/cset"
	"github.com/csetauto/csetauto/cset/perm"
	"github.com/csetauto/csetauto/cset/pseudo"
	"github.com/csetauto/csetauto/cset/search"
)

func fourCycleWithLabels(t *testing.T, src, tgt []int, dec []string) *cset.Instance {
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

func canonicalHashOf(t *testing.T, inst *cset.Instance) uint64 {
	t.Helper()
	schema := inst.Schema()
	var pinst *cset.Instance
	var info *pseudo.Info
	if schema.Attributed() {
		pinst, info = pseudo.Lower(inst)
	} else {
		pinst = inst
	}
	result, _ := search.Run(pinst, search.DefaultConfig())
	_, hash := Canonical(pinst, result.Leaves, info)
	return hash
}

func TestCanonicalHashInvariantUnderVertexRelabel(t *testing.T) {
	// spec.md §8 scenario 1: 0-indexed equivalent of src=[1,2,3,4],
	// tgt=[2,3,4,1] vs src=[1,3,2,4], tgt=[3,2,4,1], same dec labels.
	g := fourCycleWithLabels(t, []int{0, 1, 2, 3}, []int{1, 2, 3, 0}, []string{"a", "b", "c", "d"})
	h := fourCycleWithLabels(t, []int{0, 2, 1, 3}, []int{2, 1, 3, 0}, []string{"a", "b", "c", "d"})

	if canonicalHashOf(t, g) != canonicalHashOf(t, h) {
		t.Error("vertex-relabeled isomorphic 4-cycles got different canonical hashes")
	}
}

func TestCanonicalHashDistinguishesMismatchedLabelMultiset(t *testing.T) {
	// spec.md §8 scenario 3: dec=["a","a","b","c"] vs dec=["a","b","c","d"].
	g := fourCycleWithLabels(t, []int{0, 1, 2, 3}, []int{1, 2, 3, 0}, []string{"a", "a", "b", "c"})
	h := fourCycleWithLabels(t, []int{0, 1, 2, 3}, []int{1, 2, 3, 0}, []string{"a", "b", "c", "d"})

	if canonicalHashOf(t, g) == canonicalHashOf(t, h) {
		t.Error("structures with different label multisets got the same canonical hash")
	}
}

func TestCanonicalPanicsOnEmptyLeafSet(t *testing.T) {
	schema, err := cset.NewSchema([]string{"V"}, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	inst, err := cset.NewInstance(schema, []int{1}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Error("Canonical with an empty leaf set did not panic")
		}
	}()
	Canonical(inst, nil, nil)
}

func TestCanonicalReturnsAnIsomorphicInstance(t *testing.T) {
	schema, err := cset.NewSchema([]string{"V"}, []cset.ArrowSpec{{Name: "next", Src: "V", Tgt: "V"}}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	inst, err := cset.NewInstance(schema, []int{4}, [][]int{{1, 2, 3, 0}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	result, _ := search.Run(inst, search.DefaultConfig())
	winner, hash := Canonical(inst, result.Leaves, nil)
	if winner.Size(0) != 4 {
		t.Fatalf("winner has %d vertices, want 4", winner.Size(0))
	}
	if hash != Hash(winner) {
		t.Error("Canonical's reported hash does not match Hash(winner)")
	}
	// The winner must itself be an automorphic relabeling: applying
	// some automorphism from the discovered set reaches it from inst.
	found := false
	for _, p := range result.Autos {
		if instancesEqual(perm.Apply(inst, p), winner) {
			found = true
			break
		}
	}
	if !found {
		t.Error("canonical winner is not reachable from inst by any discovered automorphism")
	}
}

func instancesEqual(a, b *cset.Instance) bool {
	schema := a.Schema()
	for _, ar := range schema.Arrows() {
		ai, bi := a.Image(ar), b.Image(ar)
		if len(ai) != len(bi) {
			return false
		}
		for i := range ai {
			if ai[i] != bi[i] {
				return false
			}
		}
	}
	return true
}
