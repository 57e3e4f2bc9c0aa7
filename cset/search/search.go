// Package search implements the DFS search tree over color-refined
// partitions that discovers an instance's automorphisms (spec.md
// §4.4), McKay's canonical-labeling algorithm specialized to
// attributed C-sets.
//
// The shape is the teacher's distinguish function in
// graph/formats/rdf/iso_canonical.go: pick a splitting cell, refine
// after individualizing each of its elements in turn, recurse. Where
// the teacher distinguishes between two fixed graphs, this tree
// distinguishes an instance from itself, so every discrete leaf,
// composed against one fixed reference leaf, yields a bona fide
// automorphism (spec.md I1: the reference leaf composed with itself
// always contributes the identity).
package search

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/tools/container/intsets"

	"github.com/csetauto/csetauto/cset"
	"github.com/csetauto/csetauto/cset/internal/keysort"
	"github.com/csetauto/csetauto/cset/perm"
	"github.com/csetauto/csetauto/cset/refine"
	"github.com/csetauto/csetauto/cset/xhash"
)

// indicatorSeed distinguishes a node's indicator hash from refine's
// bucketing hash and canon's final hash; all three wrap xhash.New.
const indicatorSeed = 0x736561726368 // "search" in hex-ish ASCII

// Config toggles the three pruning tactics independently, plus the
// diagnostic history log. All are orthogonal to correctness (spec.md
// I8): disabling any subset yields the same automorphism group and
// canonical hash, only a larger explored tree.
type Config struct {
	AutoPrune  bool
	OrbitPrune bool
	OrderPrune bool
	History    bool
}

// DefaultConfig matches the reference toggles: both prune tactics that
// are safe to leave on by default are on, order-prune is opt-in; when
// on, it abandons any subtree whose indicator sequence compares below
// the best leaf sequence seen so far.
func DefaultConfig() Config {
	return Config{AutoPrune: true, OrbitPrune: true}
}

// State is a node's position in its lifecycle (spec.md §4.4.3).
type State int

const (
	Fresh State = iota
	Refined
	Leaf
	Branching
	Done
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Refined:
		return "refined"
	case Leaf:
		return "leaf"
	case Branching:
		return "branching"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Step identifies the element individualized to produce a child node:
// index Elem of table Table.
type Step struct {
	Table cset.TableID
	Elem  int
}

func (s Step) String() string { return fmt.Sprintf("(%d,%d)", s.Table, s.Elem) }

// Node is one vertex of the search tree.
type Node struct {
	Path         []Step
	InitColoring cset.Coloring
	Saturated    cset.Coloring
	Indicator    uint64
	State        State
	Children     map[Step]*Node

	subtreeLeafStart int
}

// Tree is the full search tree produced by one Run, retained so
// auto-prune can address ancestor nodes by path and so callers can
// inspect how the search explored.
type Tree struct {
	Root  *Node
	nodes map[string]*Node
}

func (tr *Tree) byPath(p []Step) *Node { return tr.nodes[pathKey(p)] }

func (tr *Tree) put(n *Node) { tr.nodes[pathKey(n.Path)] = n }

func pathKey(p []Step) string {
	buf := make([]byte, 0, len(p)*16)
	var tmp [8]byte
	for _, s := range p {
		binary.LittleEndian.PutUint64(tmp[:], uint64(s.Table))
		buf = append(buf, tmp[:]...)
		binary.LittleEndian.PutUint64(tmp[:], uint64(int64(s.Elem)))
		buf = append(buf, tmp[:]...)
	}
	return string(buf)
}

// EventKind tags one entry of the diagnostic history log (spec.md §6).
type EventKind int

const (
	EventStartIter EventKind = iota
	EventAddLeaf
	EventAutoPrune
	EventOrbitPrune
	EventOrderPrune
	EventFlagSkip
	EventNewChild
	EventReturn
)

func (k EventKind) String() string {
	switch k {
	case EventStartIter:
		return "start_iter"
	case EventAddLeaf:
		return "add_leaf"
	case EventAutoPrune:
		return "auto_prune"
	case EventOrbitPrune:
		return "orbit_prune"
	case EventOrderPrune:
		return "order_prune"
	case EventFlagSkip:
		return "flag_skip"
	case EventNewChild:
		return "new_child"
	case EventReturn:
		return "return"
	default:
		return "unknown"
	}
}

// Event is one entry of the opaque history log; consumers treat it as
// debugging output, never as a control input (spec.md §9).
type Event struct {
	Kind EventKind
	Path []Step
}

func (e Event) String() string { return fmt.Sprintf("%s path=%v", e.Kind, e.Path) }

// Result is the outcome of Run.
type Result struct {
	// Autos holds one permutation per discrete leaf discovered, each
	// composed against a fixed reference leaf so that the leaf chosen
	// as the reference always contributes the identity (spec.md I1).
	Autos []perm.Perm

	// Leaves holds the raw discrete leaf colorings, the Γ of spec.md
	// §4.5, consumed directly by cset/canon.
	Leaves []cset.Coloring

	History []Event
}

type searcher struct {
	desc cset.Descriptor
	cfg  Config
	tree *Tree

	leaves    []*Node
	skip      map[string]bool
	indicator []uint64
	history   []Event
}

// Run explores the search tree of g under cfg and returns every
// discovered automorphism along with the tree itself. g is the autos(g)
// of spec.md §6's output contract, read entirely through the Descriptor
// interface.
func Run(g cset.Descriptor, cfg Config) (Result, *Tree) {
	s := &searcher{
		desc: g,
		cfg:  cfg,
		tree: &Tree{nodes: make(map[string]*Node)},
		skip: make(map[string]bool),
	}

	tables := g.Tables()
	sizes := make([]int, len(tables))
	for _, t := range tables {
		sizes[t] = g.Size(t)
	}
	root := &Node{InitColoring: cset.NewUniformColoring(tables, sizes), Children: make(map[Step]*Node)}
	s.tree.Root = root
	s.visit(root, nil)

	leafColorings := make([]cset.Coloring, len(s.leaves))
	for i, leaf := range s.leaves {
		leafColorings[i] = leaf.Saturated
	}

	var autos []perm.Perm
	if len(s.leaves) > 0 {
		base := perm.Invert(perm.Perm(s.leaves[0].Saturated))
		autos = make([]perm.Perm, len(s.leaves))
		for i, leaf := range s.leaves {
			autos[i] = perm.Compose(perm.Perm(leaf.Saturated), base)
		}
	}

	return Result{Autos: autos, Leaves: leafColorings, History: s.history}, s.tree
}

func (s *searcher) log(kind EventKind, path []Step) {
	if !s.cfg.History {
		return
	}
	s.history = append(s.history, Event{Kind: kind, Path: append([]Step(nil), path...)})
}

// visit implements the per-node step of spec.md §4.4.
func (s *searcher) visit(n *Node, path []Step) {
	n.Path = append([]Step(nil), path...)
	s.log(EventStartIter, n.Path)
	n.Saturated = refine.Refine(s.desc, n.InitColoring)
	n.Indicator = hashColoring(s.desc, n.Saturated)
	n.State = Refined
	s.tree.put(n)

	ind := s.indicatorSeq(n)

	if s.cfg.OrderPrune && s.indicator != nil && lessSeq(ind, s.indicator) {
		s.log(EventOrderPrune, n.Path)
		n.State = Done
		return
	}

	cellTable, cellElems, ok := splittingCell(s.desc, n.Saturated)
	if !ok {
		n.State = Leaf
		s.leaves = append(s.leaves, n)
		s.log(EventAddLeaf, n.Path)
		if s.indicator == nil || greaterSeq(ind, s.indicator) {
			s.indicator = ind
		}
		if s.cfg.AutoPrune {
			s.tryAutoPrune(n)
		}
		n.State = Done
		s.log(EventReturn, n.Path)
		return
	}

	n.State = Branching
	n.subtreeLeafStart = len(s.leaves)
	n.Children = make(map[Step]*Node, len(cellElems))
	visited := make(map[int]bool, len(cellElems))
	for _, x := range cellElems {
		childStep := Step{Table: cellTable, Elem: x}
		childPath := append(append([]Step(nil), n.Path...), childStep)
		if s.skip[pathKey(childPath)] {
			s.log(EventFlagSkip, childPath)
			visited[x] = true
			continue
		}
		if s.cfg.OrbitPrune && s.orbitPruned(n, cellTable, x, visited) {
			s.log(EventOrbitPrune, childPath)
			visited[x] = true
			continue
		}
		visited[x] = true

		childColoring := n.Saturated.Individualize(cellTable, x)
		child := &Node{InitColoring: childColoring, Children: make(map[Step]*Node)}
		n.Children[childStep] = child
		s.log(EventNewChild, childPath)
		s.visit(child, childPath)
	}
	n.State = Done
	s.log(EventReturn, n.Path)
}

// splittingCell picks the cell spec.md §4.4 step 4 names: among color
// classes of size >= 2, smallest size, ties broken by first table in
// schema order then lowest color value. Scanning tables and colors in
// ascending order and only replacing the best candidate on a strict
// size improvement implements that tie-break directly.
func splittingCell(g cset.Descriptor, c cset.Coloring) (cset.TableID, []int, bool) {
	bestTable := cset.TableID(-1)
	bestColor := -1
	bestSize := -1
	for _, t := range g.Tables() {
		row := c[t]
		k := c.NumColors(t)
		for color := 0; color < k; color++ {
			size := 0
			for _, v := range row {
				if v == color {
					size++
				}
			}
			if size < 2 {
				continue
			}
			if bestTable == -1 || size < bestSize {
				bestTable, bestColor, bestSize = t, color, size
			}
		}
	}
	if bestTable == -1 {
		return 0, nil, false
	}
	row := c[bestTable]
	rep := -1
	for i, v := range row {
		if v == bestColor {
			rep = i
			break
		}
	}
	return bestTable, c.ClassOf(bestTable, rep), true
}

// orbitPruned implements spec.md §4.4.1: generators are the
// automorphisms witnessed by pairs of leaves already found within n's
// subtree, restricted to the splitting table; x is skipped if its
// orbit under those generators contains a sibling already visited.
func (s *searcher) orbitPruned(n *Node, t cset.TableID, x int, visited map[int]bool) bool {
	subtree := s.leaves[n.subtreeLeafStart:]
	if len(subtree) < 2 {
		return false
	}
	var gens [][]int
	for i := 0; i < len(subtree); i++ {
		for j := i + 1; j < len(subtree); j++ {
			pi := perm.Perm(subtree[i].Saturated)
			pj := perm.Perm(subtree[j].Saturated)
			gamma := perm.Compose(pi, perm.Invert(pj))
			gens = append(gens, perm.Restrict(gamma, t))
		}
	}
	orbit := orbitOf(x, gens)
	for v := range visited {
		if orbit.Has(v) {
			return true
		}
	}
	return false
}

func orbitOf(x int, gens [][]int) *intsets.Sparse {
	orbit := new(intsets.Sparse)
	orbit.Insert(x)
	queue := []int{x}
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		for _, g := range gens {
			img := g[e]
			if orbit.Insert(img) {
				queue = append(queue, img)
			}
		}
	}
	return orbit
}

// tryAutoPrune implements spec.md §4.4 step 5's auto-prune and §4.4.2:
// for the leaf n just added, look for another leaf p whose composed
// permutation fixes n's path up to the common prefix and maps n's
// child cell onto p's, marking the dominated suffix of n's path as
// skip.
func (s *searcher) tryAutoPrune(n *Node) {
	for _, p := range s.leaves {
		if p == n {
			continue
		}
		i := commonPrefixLen(p.Path, n.Path)
		if i >= len(p.Path) || i >= len(n.Path) {
			continue
		}
		aPath := n.Path[:i]
		bPath := p.Path[:i+1]
		cPath := n.Path[:i+1]

		aNode := s.tree.byPath(aPath)
		bNode := s.tree.byPath(bPath)
		cNode := s.tree.byPath(cPath)
		if aNode == nil || bNode == nil || cNode == nil {
			continue
		}

		tau := perm.Perm(p.Saturated)
		sigma := perm.Perm(n.Saturated)
		gamma := perm.Compose(tau, perm.Invert(sigma))

		aPerm := perm.Perm(aNode.Saturated)
		bPerm := perm.Perm(bNode.Saturated)
		cPerm := perm.Perm(cNode.Saturated)

		if perm.Equal(perm.Compose(gamma, aPerm), aPerm) && perm.Equal(perm.Compose(gamma, bPerm), cPerm) {
			for j := len(cPath); j <= len(n.Path); j++ {
				s.skip[pathKey(n.Path[:j])] = true
			}
			s.log(EventAutoPrune, n.Path)
			return
		}
	}
}

// commonPrefixLen returns the number of leading Steps a and b share,
// spec.md §9's open question on the length of a shared prefix
// ("common([1,2],[1,2,3]) = 2"): each Step flattens to its (Table, Elem)
// pair, so keysort.CommonPrefixLen's shared int count is twice the
// shared Step count, plus one when the first differing Steps share a
// Table; integer halving recovers the shared Step count either way.
func commonPrefixLen(a, b []Step) int {
	return keysort.CommonPrefixLen(flattenSteps(a), flattenSteps(b)) / 2
}

func flattenSteps(steps []Step) []int {
	out := make([]int, 0, len(steps)*2)
	for _, s := range steps {
		out = append(out, int(s.Table), s.Elem)
	}
	return out
}

// indicatorSeq returns [root.Indicator, ..., n.Indicator], the
// indicator sequence of spec.md §4.4 step 2.
func (s *searcher) indicatorSeq(n *Node) []uint64 {
	seq := make([]uint64, len(n.Path)+1)
	for i := range seq {
		nd := s.tree.byPath(n.Path[:i])
		seq[i] = nd.Indicator
	}
	return seq
}

// lessSeq and greaterSeq stay hand-rolled rather than delegating to
// keysort.IntsLess: order-prune (spec.md §4.4 step 3) compares a node's
// indicator sequence only against the shared prefix of the best
// sequence found so far, so a sequence that is a strict prefix of the
// other compares neither less nor greater here — keysort.IntsLess's
// "shorter-is-less" length tiebreak would prune subtrees the reference
// algorithm keeps (spec.md §9's indicator-comparison-direction open
// question).
func lessSeq(a, b []uint64) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func greaterSeq(a, b []uint64) bool {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return len(a) > len(b)
}

func hashColoring(g cset.Descriptor, c cset.Coloring) uint64 {
	var buf []byte
	var tmp [8]byte
	for _, t := range g.Tables() {
		row := c[t]
		binary.LittleEndian.PutUint64(tmp[:], uint64(len(row)))
		buf = append(buf, tmp[:]...)
		for _, v := range row {
			binary.LittleEndian.PutUint64(tmp[:], uint64(int64(v)))
			buf = append(buf, tmp[:]...)
		}
	}
	return xhash.Tuple(indicatorSeed, buf)
}
