// Package lattice models generalization lattices over quasi-identifier
// level vectors.
//
// A lattice is never enumerated up front. Nodes are interned by their
// generalization vector and their successors are materialized only when
// Expand is called, so search code pays for the part of the lattice it
// actually walks.
package lattice

import (
	"math"
	"strconv"
	"strings"
)

// SuccessorFunc returns the direct successors of a generalization vector.
// The order of the returned vectors is the order in which Node.Successors
// reports them, so implementations must be deterministic.
type SuccessorFunc func(transformation []int) [][]int

// Lattice is a lazily materialized dominance DAG of generalization vectors.
//
// Thread-safety: Lattice is NOT safe for concurrent use. Searches over one
// lattice are expected to run on a single goroutine.
type Lattice struct {
	succ   SuccessorFunc
	pred   SuccessorFunc
	nodes  map[string]*Node
	bottom *Node
	top    []int
}

// Node is one generalization vector in a lattice.
type Node struct {
	lattice        *Lattice
	transformation []int
	level          int
	successors     []*Node
	expanded       bool
}

// New creates a lattice rooted at bottom whose edges are produced by succ.
func New(bottom []int, succ SuccessorFunc) *Lattice {
	l := &Lattice{
		succ:  succ,
		nodes: make(map[string]*Node),
	}
	l.bottom = l.Node(bottom)
	return l
}

// FullDomain creates the full-domain generalization lattice for attributes
// whose hierarchies have the given number of levels above the leaves.
//
// Successors raise exactly one attribute by one level, in attribute order.
// Predecessors lower exactly one attribute by one level, in attribute order.
func FullDomain(maxLevels []int) *Lattice {
	top := append([]int(nil), maxLevels...)
	succ := func(t []int) [][]int {
		var out [][]int
		for i := range t {
			if t[i] < top[i] {
				next := append([]int(nil), t...)
				next[i]++
				out = append(out, next)
			}
		}
		return out
	}
	l := New(make([]int, len(maxLevels)), succ)
	l.top = top
	l.pred = func(t []int) [][]int {
		var out [][]int
		for i := range t {
			if t[i] > 0 {
				prev := append([]int(nil), t...)
				prev[i]--
				out = append(out, prev)
			}
		}
		return out
	}
	return l
}

// Bottom returns the least generalized node.
func (l *Lattice) Bottom() *Node {
	return l.bottom
}

// Top returns the most generalized node of a full-domain lattice, or nil
// when the lattice was built from an arbitrary successor function.
func (l *Lattice) Top() *Node {
	if l.top == nil {
		return nil
	}
	return l.Node(l.top)
}

// Node returns the interned node for a generalization vector, creating it
// on first use. The vector is copied.
func (l *Lattice) Node(transformation []int) *Node {
	k := key(transformation)
	if n, ok := l.nodes[k]; ok {
		return n
	}
	t := append([]int(nil), transformation...)
	level := 0
	for _, v := range t {
		level += v
	}
	n := &Node{lattice: l, transformation: t, level: level}
	l.nodes[k] = n
	return n
}

// Size returns the number of nodes materialized so far.
func (l *Lattice) Size() int {
	return len(l.nodes)
}

// Dimensions returns the number of attributes in the lattice's vectors.
func (l *Lattice) Dimensions() int {
	return len(l.bottom.transformation)
}

// Transformation returns a copy of the node's generalization vector.
func (n *Node) Transformation() []int {
	return append([]int(nil), n.transformation...)
}

// Level returns the sum of the node's generalization levels.
func (n *Node) Level() int {
	return n.level
}

// Equal reports whether the node's vector equals transformation.
func (n *Node) Equal(transformation []int) bool {
	if len(n.transformation) != len(transformation) {
		return false
	}
	for i, v := range n.transformation {
		if v != transformation[i] {
			return false
		}
	}
	return true
}

// Expand materializes the node's successors. Idempotent.
func (n *Node) Expand() {
	if n.expanded {
		return
	}
	n.expanded = true
	for _, t := range n.lattice.succ(n.transformation) {
		n.successors = append(n.successors, n.lattice.Node(t))
	}
}

// Expanded reports whether Expand has been called on the node.
func (n *Node) Expanded() bool {
	return n.expanded
}

// Successors returns the materialized successors, or nil before Expand.
func (n *Node) Successors() []*Node {
	return n.successors
}

// Predecessors returns the direct predecessors of the node. Only
// full-domain lattices know their predecessors; other lattices return nil.
func (n *Node) Predecessors() []*Node {
	if n.lattice.pred == nil {
		return nil
	}
	var out []*Node
	for _, t := range n.lattice.pred(n.transformation) {
		out = append(out, n.lattice.Node(t))
	}
	return out
}

// Distance is the directed distance from current to target: the number of
// single-level generalization steps needed to ascend from current to target.
// It is math.MaxInt when current exceeds target in any attribute, since
// further ascent can never reach target from there, or when the vectors
// differ in length.
func Distance(current, target []int) int {
	if len(current) != len(target) {
		return math.MaxInt
	}
	d := 0
	for i := range target {
		if current[i] > target[i] {
			return math.MaxInt
		}
		d += target[i] - current[i]
	}
	return d
}

// Dominates reports whether a is at least as generalized as b in every
// attribute.
func Dominates(a, b []int) bool {
	for i := range a {
		if a[i] < b[i] {
			return false
		}
	}
	return true
}

func key(t []int) string {
	var b strings.Builder
	for i, v := range t {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}
