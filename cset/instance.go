package cset

import "fmt"

// Value is an element of an attribute domain. Domains need only be
// totally orderable; Less must implement a strict weak order consistent
// across all values appearing in one Instance's attribute arrows into
// the same domain.
type Value interface {
	Less(other Value) bool
}

// Instance is one attributed C-set over a Schema: a size for every
// table, an image sequence for every arrow, and a value sequence for
// every attribute arrow. Elements of table t are indices 0..Size(t)-1;
// spec.md's 1-based element numbering is an external-contract detail
// and is not reflected in this in-memory representation.
//
// An Instance is read-only for the lifetime of any computation over it;
// callers that want to mutate an Instance should build a new one (see
// perm.Apply, which returns a fresh Instance rather than mutating its
// input).
type Instance struct {
	schema *Schema

	sizes  []int     // sizes[t]
	images [][]int   // images[a][i], len(images[a]) == sizes[Src(a)]
	attrs  [][]Value // attrs[a][i], len(attrs[a]) == sizes[ASrc(a)]

	preimage []map[int][]int // lazily built per arrow, see Preimage
}

// NewInstance builds an Instance over schema from per-table sizes,
// per-arrow image sequences, and per-attribute-arrow value sequences.
// It returns ErrInvalidInstance if a sequence has the wrong length or
// an arrow image is out of range for its target table's size.
func NewInstance(schema *Schema, sizes []int, images [][]int, attrs [][]Value) (*Instance, error) {
	if len(sizes) != schema.NumTables() {
		return nil, fmt.Errorf("%w: got %d table sizes, schema has %d tables", ErrInvalidInstance, len(sizes), schema.NumTables())
	}
	for t, n := range sizes {
		if n < 0 {
			return nil, fmt.Errorf("%w: table %q has negative size %d", ErrInvalidInstance, schema.TableName(TableID(t)), n)
		}
	}
	if len(images) != schema.NumArrows() {
		return nil, fmt.Errorf("%w: got %d arrow images, schema has %d arrows", ErrInvalidInstance, len(images), schema.NumArrows())
	}
	for a, img := range images {
		src := schema.Src(ArrowID(a))
		tgt := schema.Tgt(ArrowID(a))
		if len(img) != sizes[src] {
			return nil, fmt.Errorf("%w: arrow %q image has length %d, want %d", ErrInvalidInstance, schema.ArrowName(ArrowID(a)), len(img), sizes[src])
		}
		for i, j := range img {
			if j < 0 || j >= sizes[tgt] {
				return nil, fmt.Errorf("%w: arrow %q image[%d]=%d out of range for table %q of size %d", ErrInvalidInstance, schema.ArrowName(ArrowID(a)), i, j, schema.TableName(tgt), sizes[tgt])
			}
		}
	}
	if len(attrs) != schema.NumAttrArrows() {
		return nil, fmt.Errorf("%w: got %d attribute arrow value sequences, schema has %d attribute arrows", ErrInvalidInstance, len(attrs), schema.NumAttrArrows())
	}
	for a, vs := range attrs {
		src := schema.ASrc(AttrArrowID(a))
		if len(vs) != sizes[src] {
			return nil, fmt.Errorf("%w: attribute arrow %q values has length %d, want %d", ErrInvalidInstance, schema.AttrArrowName(AttrArrowID(a)), len(vs), sizes[src])
		}
	}

	inst := &Instance{
		schema:   schema,
		sizes:    append([]int(nil), sizes...),
		images:   make([][]int, len(images)),
		attrs:    make([][]Value, len(attrs)),
		preimage: make([]map[int][]int, len(images)),
	}
	for a, img := range images {
		inst.images[a] = append([]int(nil), img...)
	}
	for a, vs := range attrs {
		inst.attrs[a] = append([]Value(nil), vs...)
	}
	return inst, nil
}

// Schema returns the schema this instance is over.
func (inst *Instance) Schema() *Schema { return inst.schema }

// Tables, Arrows, Src, Tgt, AttrArrows, ASrc, and ATgt forward to the
// underlying Schema so that *Instance satisfies Descriptor directly,
// without callers needing to reach through Schema() themselves.

func (inst *Instance) Tables() []TableID { return inst.schema.Tables() }

func (inst *Instance) Arrows() []ArrowID { return inst.schema.Arrows() }

func (inst *Instance) Src(a ArrowID) TableID { return inst.schema.Src(a) }

func (inst *Instance) Tgt(a ArrowID) TableID { return inst.schema.Tgt(a) }

func (inst *Instance) AttrArrows() []AttrArrowID { return inst.schema.AttrArrows() }

func (inst *Instance) ASrc(a AttrArrowID) TableID { return inst.schema.ASrc(a) }

func (inst *Instance) ATgt(a AttrArrowID) DomainID { return inst.schema.ATgt(a) }

// Size returns the number of elements of table t.
func (inst *Instance) Size(t TableID) int { return inst.sizes[t] }

// Image returns the image sequence of arrow a: Image(a)[i] is where
// element i of Src(a) is mapped to in Tgt(a).
func (inst *Instance) Image(a ArrowID) []int { return inst.images[a] }

// AttrValues returns the value sequence of attribute arrow a.
func (inst *Instance) AttrValues(a AttrArrowID) []Value { return inst.attrs[a] }

// Preimage returns the elements of Src(a) that arrow a maps to j, the
// index invariant required by color refinement's hot loop (spec.md
// §3). The index is built lazily on first use per arrow and cached.
func (inst *Instance) Preimage(a ArrowID, j int) []int {
	m := inst.preimage[a]
	if m == nil {
		m = make(map[int][]int, inst.sizes[inst.schema.Tgt(a)])
		for i, k := range inst.images[a] {
			m[k] = append(m[k], i)
		}
		inst.preimage[a] = m
	}
	return m[j]
}

// Clone returns a deep copy of inst.
func (inst *Instance) Clone() *Instance {
	out := &Instance{
		schema:   inst.schema,
		sizes:    append([]int(nil), inst.sizes...),
		images:   make([][]int, len(inst.images)),
		attrs:    make([][]Value, len(inst.attrs)),
		preimage: make([]map[int][]int, len(inst.images)),
	}
	for a, img := range inst.images {
		out.images[a] = append([]int(nil), img...)
	}
	for a, vs := range inst.attrs {
		out.attrs[a] = append([]Value(nil), vs...)
	}
	return out
}
