package emit

import (
	"fmt"
	"sort"
	"sync"
)

// RecordedNode is a node of the graph reconstructed by a GraphRecorder.
type RecordedNode struct {
	ID      int64
	Parent  int64
	Type    string
	Label   string
	Removed bool
	Reason  string
	F       *float64
}

// GraphSnapshot is an immutable, comparable view of a reconstructed graph.
type GraphSnapshot struct {
	// Roots in the order they were initialized.
	Roots []int64

	// Nodes sorted by ID, including removed nodes (Removed = true).
	Nodes []RecordedNode

	// Solutions are goal node IDs in the order they were yielded.
	Solutions []int64
}

// GraphRecorder is an Emitter that rebuilds the search graph from events alone.
//
// It never looks at engine state: everything it knows comes from the event
// payloads. Replaying a serialized history into a fresh recorder must therefore
// produce the same snapshot as recording the live search.
//
// Example:
//
//	live := emit.NewGraphRecorder()
//	s, _ := search.New(gen, eval, search.WithListener(live))
//	// ... drive the search ...
//
//	events, _ := emit.ReadHistory(f)
//	replayed := emit.NewGraphRecorder()
//	emit.Replay(events, replayed)
//	// live.Snapshot() and replayed.Snapshot() are equal.
type GraphRecorder struct {
	mu        sync.RWMutex
	nodes     map[int64]*RecordedNode
	roots     []int64
	solutions []int64
	errs      []error
}

// NewGraphRecorder creates an empty recorder.
func NewGraphRecorder() *GraphRecorder {
	return &GraphRecorder{nodes: make(map[int64]*RecordedNode)}
}

// Emit applies one event to the reconstructed graph.
func (g *GraphRecorder) Emit(event Event) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch event.Type {
	case GraphInitialized:
		g.roots = append(g.roots, event.NodeID)

	case NodeAdded:
		n := g.node(event.NodeID)
		n.Parent = event.ParentID
		n.Type = event.NodeType
		n.Label = event.Label
		n.F = metaFloat(event.Meta, "f")

	case NodeRemoved:
		// Removed nodes may never have been added (dead ends are dropped
		// before insertion); the payload carries enough to record them.
		n, known := g.nodes[event.NodeID]
		if !known {
			n = g.node(event.NodeID)
			n.Parent = event.ParentID
			n.Label = event.Label
		}
		n.Removed = true
		n.Reason = event.Reason

	case NodeTypeSwitched:
		n, known := g.nodes[event.NodeID]
		if !known {
			g.errs = append(g.errs, fmt.Errorf("ordinal %d: type switch of unknown node %d", event.Ordinal, event.NodeID))
			return
		}
		n.Type = event.NodeType

	case NodeParentSwitched:
		n, known := g.nodes[event.NodeID]
		if !known {
			g.errs = append(g.errs, fmt.Errorf("ordinal %d: parent switch of unknown node %d", event.Ordinal, event.NodeID))
			return
		}
		if n.Parent != event.OldParentID {
			g.errs = append(g.errs, fmt.Errorf("ordinal %d: node %d has parent %d, event says %d",
				event.Ordinal, event.NodeID, n.Parent, event.OldParentID))
		}
		n.Parent = event.ParentID
		if f := metaFloat(event.Meta, "f"); f != nil {
			n.F = f
		}

	case SolutionFound:
		g.solutions = append(g.solutions, event.NodeID)
	}
}

func (g *GraphRecorder) node(id int64) *RecordedNode {
	n, ok := g.nodes[id]
	if !ok {
		n = &RecordedNode{ID: id, Parent: NoNode}
		g.nodes[id] = n
	}
	return n
}

func metaFloat(meta map[string]interface{}, key string) *float64 {
	if meta == nil {
		return nil
	}
	switch v := meta[key].(type) {
	case float64:
		return &v
	case float32:
		f := float64(v)
		return &f
	case int:
		f := float64(v)
		return &f
	case int64:
		f := float64(v)
		return &f
	}
	return nil
}

// Snapshot returns a deep copy of the reconstructed graph.
func (g *GraphRecorder) Snapshot() GraphSnapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snap := GraphSnapshot{
		Roots:     append([]int64{}, g.roots...),
		Nodes:     make([]RecordedNode, 0, len(g.nodes)),
		Solutions: append([]int64{}, g.solutions...),
	}
	for _, n := range g.nodes {
		c := *n
		if n.F != nil {
			f := *n.F
			c.F = &f
		}
		snap.Nodes = append(snap.Nodes, c)
	}
	sort.Slice(snap.Nodes, func(i, j int) bool { return snap.Nodes[i].ID < snap.Nodes[j].ID })
	return snap
}

// Node returns the reconstructed node with the given ID.
func (g *GraphRecorder) Node(id int64) (RecordedNode, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return RecordedNode{}, false
	}
	return *n, true
}

// PathTo returns the labels from a root to the given node by following parent
// references. It walks iteratively and stops on cycles.
func (g *GraphRecorder) PathTo(id int64) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var rev []string
	seen := make(map[int64]bool)
	for cur := id; cur != NoNode; {
		n, ok := g.nodes[cur]
		if !ok || seen[cur] {
			break
		}
		seen[cur] = true
		rev = append(rev, n.Label)
		cur = n.Parent
	}

	out := make([]string, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}

// Errs returns inconsistencies detected while applying events (for example a
// type switch of a node that was never added).
func (g *GraphRecorder) Errs() []error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]error{}, g.errs...)
}
