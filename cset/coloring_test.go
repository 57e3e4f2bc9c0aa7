package cset

import "testing"

func TestColoringIndividualizeAndDiscrete(t *testing.T) {
	schema, err := NewSchema([]string{"V"}, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	c := NewUniformColoring(schema.Tables(), []int{3})
	if c.IsDiscrete(schema) {
		t.Fatal("uniform coloring of 3 elements reported discrete")
	}
	c = c.Individualize(0, 1)
	if c.NumColors(0) != 2 {
		t.Fatalf("after individualizing, NumColors = %d, want 2", c.NumColors(0))
	}
	c = c.Individualize(0, 0).Individualize(0, 2)
	if !c.IsDiscrete(schema) {
		t.Errorf("fully individualized coloring not discrete: %v", c[0])
	}
}

func TestColoringEqualAndClone(t *testing.T) {
	c := Coloring{0: {0, 1, 0}}
	clone := c.Clone()
	clone[0][0] = 9
	if c[0][0] == 9 {
		t.Fatal("Clone aliased the underlying slice")
	}
	if !c.Equal(Coloring{0: {0, 1, 0}}) {
		t.Error("Equal reported identical colorings as different")
	}
	if c.Equal(clone) {
		t.Error("Equal reported mutated clone as equal to original")
	}
}

func TestClassOf(t *testing.T) {
	c := Coloring{0: {0, 1, 0, 1}}
	class := c.ClassOf(0, 0)
	if len(class) != 2 || class[0] != 0 || class[1] != 2 {
		t.Errorf("ClassOf(0,0) = %v, want [0 2]", class)
	}
}
