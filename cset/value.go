package cset

// StringValue is a Value backed by a string, ordered lexically. It is
// the concrete domain type spec.md's worked examples use for "dec"
// attribute arrows (e.g. "a", "b", "c", "d").
type StringValue string

// Less implements Value.
func (v StringValue) Less(other Value) bool { return v < other.(StringValue) }

// IntValue is a Value backed by an int, ordered numerically.
type IntValue int

// Less implements Value.
func (v IntValue) Less(other Value) bool { return v < other.(IntValue) }

// StringValues converts a slice of strings to a slice of Values.
func StringValues(ss []string) []Value {
	out := make([]Value, len(ss))
	for i, s := range ss {
		out[i] = StringValue(s)
	}
	return out
}

// IntValues converts a slice of ints to a slice of Values.
func IntValues(is []int) []Value {
	out := make([]Value, len(is))
	for i, v := range is {
		out[i] = IntValue(v)
	}
	return out
}
