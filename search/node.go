package search

import (
	"fmt"
	"sync"
)

// NodeID identifies a node within one search instance. IDs are allocated
// sequentially by the arena and never reused, so they are stable for the
// lifetime of the search and safe to hand to listeners.
type NodeID int64

// NoNode marks an absent node reference, e.g. the parent of a root.
const NoNode NodeID = -1

// Annotation keys written by the evaluators in this package.
const (
	AnnotationG              = "g"
	AnnotationH              = "h"
	AnnotationRolloutMean    = "rollout_mean"
	AnnotationRolloutStdDev  = "rollout_stddev"
	AnnotationRolloutSamples = "rollout_samples"
)

// Node is a position in the implicit graph.
//
// The external label is immutable. The parent reference and incoming edge are
// owned by the Arena (they change only when the engine re-parents a node onto
// a cheaper path). The f-value, type tag and annotations may be refined while
// the node sits in the frontier; all accessors are safe for concurrent use so
// evaluators running in parallel can read ancestors through a Path.
type Node[N comparable, A any] struct {
	id    NodeID
	label N

	mu          sync.RWMutex
	parent      NodeID
	edge        A
	depth       int
	goal        bool
	f           float64
	hasF        bool
	typ         string
	version     uint64
	priority    Priority
	annotations map[string]any
}

// ID returns the node's stable identifier, or NoNode for detached nodes.
func (n *Node[N, A]) ID() NodeID { return n.id }

// Label returns the external label.
func (n *Node[N, A]) Label() N { return n.label }

// Parent returns the ID of the parent node, NoNode for roots.
func (n *Node[N, A]) Parent() NodeID {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

// Edge returns the label of the edge from the parent to this node.
// The zero value is returned for roots.
func (n *Node[N, A]) Edge() A {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.edge
}

// Depth returns the number of edges between the root and this node.
func (n *Node[N, A]) Depth() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.depth
}

// IsGoal reports whether the node passed the goal test when it was generated.
func (n *Node[N, A]) IsGoal() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.goal
}

// F returns the f-value assigned by the evaluator and whether one was assigned.
func (n *Node[N, A]) F() (float64, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.f, n.hasF
}

// Type returns the node's current type tag (see emit.TypeOpen and friends).
func (n *Node[N, A]) Type() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.typ
}

// Annotation returns a named annotation.
func (n *Node[N, A]) Annotation(key string) (any, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.annotations[key]
	return v, ok
}

// FloatAnnotation returns a numeric annotation.
func (n *Node[N, A]) FloatAnnotation(key string) (float64, bool) {
	v, ok := n.Annotation(key)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// SetAnnotation stores a named annotation. Evaluators use annotations to cache
// intermediate results such as accumulated cost or an uncertainty estimate.
func (n *Node[N, A]) SetAnnotation(key string, value any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.annotations == nil {
		n.annotations = make(map[string]any)
	}
	n.annotations[key] = value
}

// Annotations returns a copy of all annotations.
func (n *Node[N, A]) Annotations() map[string]any {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make(map[string]any, len(n.annotations))
	for k, v := range n.annotations {
		out[k] = v
	}
	return out
}

// String implements fmt.Stringer.
func (n *Node[N, A]) String() string {
	return fmt.Sprintf("#%d(%v)", n.id, n.label)
}

func (n *Node[N, A]) setF(f float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.f = f
	n.hasF = true
}

func (n *Node[N, A]) setType(typ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.typ = typ
}

func (n *Node[N, A]) setGoal(goal bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.goal = goal
}

func (n *Node[N, A]) currentVersion() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.version
}

func (n *Node[N, A]) setPriority(p Priority) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.priority = p
}

func (n *Node[N, A]) getPriority() Priority {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.priority
}

// Arena is the growable node table of one search. Nodes reference their parent
// by NodeID rather than by pointer, which keeps ownership acyclic and lets the
// frontier, the closed set and emitted events share the same cheap identifiers.
type Arena[N comparable, A any] struct {
	mu    sync.RWMutex
	nodes []*Node[N, A]
}

// NewArena creates an empty arena.
func NewArena[N comparable, A any]() *Arena[N, A] {
	return &Arena[N, A]{}
}

// Add appends a node and returns it. parent must be NoNode or an existing ID.
func (a *Arena[N, A]) Add(label N, parent NodeID, edge A) *Node[N, A] {
	a.mu.Lock()
	defer a.mu.Unlock()

	depth := 0
	if parent != NoNode {
		depth = a.nodes[parent].Depth() + 1
	}

	n := &Node[N, A]{
		id:     NodeID(len(a.nodes)),
		label:  label,
		parent: parent,
		edge:   edge,
		depth:  depth,
	}
	a.nodes = append(a.nodes, n)
	return n
}

// Get returns the node with the given ID, or nil if it does not exist.
func (a *Arena[N, A]) Get(id NodeID) *Node[N, A] {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if id < 0 || int(id) >= len(a.nodes) {
		return nil
	}
	return a.nodes[id]
}

// Len returns the number of nodes allocated so far.
func (a *Arena[N, A]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.nodes)
}

// Reparent moves node id under newParent via edge and returns the old parent.
// The node's version is bumped so that frontier entries created for the old
// path are recognised as stale.
func (a *Arena[N, A]) Reparent(id, newParent NodeID, edge A) (NodeID, error) {
	n := a.Get(id)
	if n == nil {
		return NoNode, fmt.Errorf("reparent: unknown node %d", id)
	}
	depth := 0
	if newParent != NoNode {
		p := a.Get(newParent)
		if p == nil {
			return NoNode, fmt.Errorf("reparent: unknown parent %d", newParent)
		}
		depth = p.Depth() + 1
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	old := n.parent
	n.parent = newParent
	n.edge = edge
	n.depth = depth
	n.version++
	return old, nil
}

// Path reconstructs the path from the root to id by walking parent references
// iteratively, so deep searches do not grow the stack.
func (a *Arena[N, A]) Path(id NodeID) Path[N, A] {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if id < 0 || int(id) >= len(a.nodes) {
		return Path[N, A]{}
	}

	var rev []*Node[N, A]
	for cur := id; cur != NoNode; cur = a.nodes[cur].Parent() {
		rev = append(rev, a.nodes[cur])
	}

	nodes := make([]*Node[N, A], len(rev))
	for i, n := range rev {
		nodes[len(rev)-1-i] = n
	}
	return Path[N, A]{nodes: nodes}
}
