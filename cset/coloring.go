package cset

// Coloring maps each table to a dense color sequence: Colors[t] has
// length Size(t) and its values, for a coloring with k distinct colors
// on t, cover {0, ..., k-1} with every value appearing at least once.
// This is the 0-based analogue of spec.md §3's {1..k_t} convention.
//
// The partition a Coloring induces is equitable when, for every arrow
// a: s -> t and every color c on t, all elements of s mapping into
// color c share the same multiset of source colors (color refinement's
// fixed point, see cset/refine). A Coloring whose every color class is
// a singleton is discrete and encodes a permutation on each table.
type Coloring map[TableID][]int

// NewUniformColoring returns the coloring that assigns color 0 to
// every element of every table in tables, the default initial coloring
// for color refinement. tables is typically a Descriptor's Tables()
// and sizes is indexed the same way Descriptor.Size is.
func NewUniformColoring(tables []TableID, sizes []int) Coloring {
	c := make(Coloring, len(tables))
	for _, t := range tables {
		c[t] = make([]int, sizes[t])
	}
	return c
}

// Clone returns a deep copy of c.
func (c Coloring) Clone() Coloring {
	out := make(Coloring, len(c))
	for t, row := range c {
		out[t] = append([]int(nil), row...)
	}
	return out
}

// NumColors returns one more than the maximum color used on table t
// (the dense color count k_t), or 0 if t has no elements.
func (c Coloring) NumColors(t TableID) int {
	row := c[t]
	if len(row) == 0 {
		return 0
	}
	max := row[0]
	for _, v := range row[1:] {
		if v > max {
			max = v
		}
	}
	return max + 1
}

// TotalColors returns the sum over every table of NumColors, the
// quantity color refinement's fixed-point test (spec.md §4.2 step 5)
// monitors for monotone growth. tables is typically a Descriptor's
// Tables().
func (c Coloring) TotalColors(tables []TableID) int {
	n := 0
	for _, t := range tables {
		n += c.NumColors(t)
	}
	return n
}

// IsDiscrete reports whether every color class of c is a singleton.
func (c Coloring) IsDiscrete(schema *Schema) bool {
	for _, t := range schema.Tables() {
		seen := make(map[int]bool, len(c[t]))
		for _, v := range c[t] {
			if seen[v] {
				return false
			}
			seen[v] = true
		}
	}
	return true
}

// Equal reports whether c and other assign identical colors to every
// table.
func (c Coloring) Equal(other Coloring) bool {
	if len(c) != len(other) {
		return false
	}
	for t, row := range c {
		orow, ok := other[t]
		if !ok || len(orow) != len(row) {
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

// Individualize returns a copy of c with element idx of table t given a
// fresh color one past the current maximum on t, breaking the symmetry
// of its color class (spec.md §4.4 step 6). If idx is the only element
// of its color, that color no longer appears in the result, which is
// then not dense until refinement renumbers it.
func (c Coloring) Individualize(t TableID, idx int) Coloring {
	out := c.Clone()
	out[t][idx] = out.NumColors(t)
	return out
}

// ClassOf returns the indices of every element of table t sharing
// element idx's color.
func (c Coloring) ClassOf(t TableID, idx int) []int {
	row := c[t]
	color := row[idx]
	var class []int
	for i, v := range row {
		if v == color {
			class = append(class, i)
		}
	}
	return class
}
