package cset

// Descriptor is the pluggable schema-and-instance contract the core
// consumes (spec.md §6 "External interfaces"): table/arrow topology
// plus per-table sizes, per-arrow images, and per-attribute-arrow
// values. It is the Go shape of spec.md §1's requirement that "the
// core consumes a schema descriptor and table-size/arrow-image data;
// it does not build or parse schemas" — color refinement's hot loop
// (spec.md §3's Preimage index invariant) and the autos(g) entry point
// are written against this interface rather than the concrete Schema
// and Instance types below, which are the one reference implementation
// this module ships for building and testing fixtures.
type Descriptor interface {
	Tables() []TableID
	Arrows() []ArrowID
	Src(ArrowID) TableID
	Tgt(ArrowID) TableID
	AttrArrows() []AttrArrowID
	ASrc(AttrArrowID) TableID
	ATgt(AttrArrowID) DomainID
	Size(TableID) int
	Image(ArrowID) []int
	AttrValues(AttrArrowID) []Value
	Preimage(ArrowID, int) []int
}

var _ Descriptor = (*Instance)(nil)
