package search

import (
	"fmt"
	"strings"
)

// Path is the ordered sequence of nodes from a root to a head node.
//
// Edge labels are carried separately from node labels: Edges()[i] is the edge
// that leads into At(i+1). A Path is a read-only view; its nodes are shared
// with the arena that produced them.
type Path[N comparable, A any] struct {
	nodes []*Node[N, A]
}

// NewPath builds a path from a root label and a sequence of (edge, label)
// steps. Nodes of such a path are detached: their IDs are NoNode.
func NewPath[N comparable, A any](root N, steps ...Successor[N, A]) Path[N, A] {
	p := Path[N, A]{nodes: []*Node[N, A]{{id: NoNode, label: root, parent: NoNode}}}
	for _, s := range steps {
		p = p.Extend(s.Edge, s.Node)
	}
	return p
}

// Len returns the number of nodes on the path.
func (p Path[N, A]) Len() int { return len(p.nodes) }

// Empty reports whether the path has no nodes.
func (p Path[N, A]) Empty() bool { return len(p.nodes) == 0 }

// Head returns the last node, or nil for an empty path.
func (p Path[N, A]) Head() *Node[N, A] {
	if len(p.nodes) == 0 {
		return nil
	}
	return p.nodes[len(p.nodes)-1]
}

// Root returns the first node, or nil for an empty path.
func (p Path[N, A]) Root() *Node[N, A] {
	if len(p.nodes) == 0 {
		return nil
	}
	return p.nodes[0]
}

// At returns the i-th node (0 is the root).
func (p Path[N, A]) At(i int) *Node[N, A] { return p.nodes[i] }

// Nodes returns a copy of the node slice.
func (p Path[N, A]) Nodes() []*Node[N, A] {
	out := make([]*Node[N, A], len(p.nodes))
	copy(out, p.nodes)
	return out
}

// Labels returns the external labels from root to head.
func (p Path[N, A]) Labels() []N {
	out := make([]N, len(p.nodes))
	for i, n := range p.nodes {
		out[i] = n.Label()
	}
	return out
}

// Edges returns the edge labels taken along the path (one fewer than nodes).
func (p Path[N, A]) Edges() []A {
	if len(p.nodes) < 2 {
		return nil
	}
	out := make([]A, len(p.nodes)-1)
	for i, n := range p.nodes[1:] {
		out[i] = n.Edge()
	}
	return out
}

// IDs returns the node IDs from root to head.
func (p Path[N, A]) IDs() []NodeID {
	out := make([]NodeID, len(p.nodes))
	for i, n := range p.nodes {
		out[i] = n.ID()
	}
	return out
}

// Parent returns the path without its head.
func (p Path[N, A]) Parent() Path[N, A] {
	if len(p.nodes) == 0 {
		return p
	}
	return Path[N, A]{nodes: p.nodes[:len(p.nodes)-1]}
}

// Extend returns a new path with a detached node appended. The receiver is
// not modified.
func (p Path[N, A]) Extend(edge A, label N) Path[N, A] {
	parent, depth := NoNode, 0
	if h := p.Head(); h != nil {
		parent, depth = h.ID(), h.Depth()+1
	}
	nodes := make([]*Node[N, A], len(p.nodes), len(p.nodes)+1)
	copy(nodes, p.nodes)
	nodes = append(nodes, &Node[N, A]{id: NoNode, label: label, parent: parent, edge: edge, depth: depth})
	return Path[N, A]{nodes: nodes}
}

// Join appends suffix to p. The root of suffix must carry the same label as
// the head of p; it is dropped so the joined path visits that label once.
// Node IDs of the result may come from different arenas.
func Join[N comparable, A any](p, suffix Path[N, A]) (Path[N, A], error) {
	if p.Empty() {
		return suffix, nil
	}
	if suffix.Empty() {
		return p, nil
	}
	if p.Head().Label() != suffix.Root().Label() {
		return Path[N, A]{}, fmt.Errorf("join: head %v does not match suffix root %v", p.Head().Label(), suffix.Root().Label())
	}
	nodes := make([]*Node[N, A], 0, len(p.nodes)+len(suffix.nodes)-1)
	nodes = append(nodes, p.nodes...)
	nodes = append(nodes, suffix.nodes[1:]...)
	return Path[N, A]{nodes: nodes}, nil
}

// String renders the path as "a -[e]-> b -[f]-> c".
func (p Path[N, A]) String() string {
	var b strings.Builder
	for i, n := range p.nodes {
		if i > 0 {
			fmt.Fprintf(&b, " -[%v]-> ", n.Edge())
		}
		fmt.Fprintf(&b, "%v", n.Label())
	}
	return b.String()
}
