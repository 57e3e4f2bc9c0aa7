package cset

import "errors"

// Sentinel errors returned from schema and instance construction. Wrap
// these with fmt.Errorf("%w: ...", ErrX, ...) to add detail while
// remaining errors.Is-compatible, following the convention used by
// graph/topo's Unorderable and graph/formats/rdf's sentinel errors in
// the teacher.
var (
	// ErrInvalidSchema is returned when a schema has duplicate names
	// or an arrow/attribute-arrow references a table or domain that
	// was not declared.
	ErrInvalidSchema = errors.New("cset: invalid schema")

	// ErrInvalidInstance is returned when an instance's arrow image or
	// attribute value sequence has the wrong length, or an arrow image
	// is out of range for its target table.
	ErrInvalidInstance = errors.New("cset: invalid instance")
)
