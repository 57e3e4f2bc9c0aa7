// Copyright ©2015 The Gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package keysort provides lexicographic ordering helpers for the
// integer-keyed tuples used throughout canonicalization and search:
// color-data tuples, search-tree paths, and sort keys.
package keysort

// IntsLess reports whether a is lexicographically less than b. A
// shorter slice that is a prefix of a longer one is less than it.
func IntsLess(a, b []int) bool {
	l := len(a)
	if len(b) < l {
		l = len(b)
	}
	for k, v := range a[:l] {
		if v < b[k] {
			return true
		}
		if v > b[k] {
			return false
		}
	}
	return len(a) < len(b)
}

// IntsEqual reports whether a and b hold the same elements in the same
// order.
func IntsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if b[i] != v {
			return false
		}
	}
	return true
}

// CommonPrefixLen returns the length of the longest common prefix of a
// and b. When one is a prefix of the other, the shared length is
// returned (common([1,2],[1,2,3]) == 2).
func CommonPrefixLen(a, b []int) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
