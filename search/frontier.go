package search

import "container/heap"

// Priority is the ordering key of a frontier entry.
type Priority struct {
	// F is the evaluator output at insertion time.
	F float64

	// Discrepancies counts how often the path deviated from the locally
	// best-ranked child. Only discrepancy-based orderings use it.
	Discrepancies int

	// Seq is the insertion sequence number assigned by the frontier.
	// It breaks ties first-in, first-out.
	Seq uint64

	// Pruned is set by Rank when the child must not enter the frontier.
	Pruned bool
}

// Ordering defines the total order of the frontier.
//
// Less must be a strict weak order that ends in a Seq comparison so that runs
// with identical evaluators produce identical expansion orders. Rank is called
// once per expansion with the parent's priority and the children's priorities
// (F set, in generation order) and returns the children's final priorities in
// the same order. Seq is assigned later by the frontier.
type Ordering interface {
	Less(a, b Priority) bool
	Rank(parent Priority, children []Priority) []Priority
}

// ByFValue orders entries by (F, Seq). It is the default ordering.
type ByFValue struct{}

// Less implements Ordering.
func (ByFValue) Less(a, b Priority) bool {
	if a.F != b.F {
		return a.F < b.F
	}
	return a.Seq < b.Seq
}

// Rank implements Ordering. Children keep their priority.
func (ByFValue) Rank(_ Priority, children []Priority) []Priority {
	return children
}

// Entry is a frontier element: an arena node with the priority it was
// inserted with. Entries whose version no longer matches the node's are stale
// and skipped at pop time.
type Entry[N comparable, A any] struct {
	Node     *Node[N, A]
	Priority Priority
	version  uint64
}

// Stale reports whether the node was re-parented after this entry was pushed.
func (e Entry[N, A]) Stale() bool {
	return e.version != e.Node.currentVersion()
}

type entryHeap[N comparable, A any] struct {
	items []Entry[N, A]
	order Ordering
}

func (h *entryHeap[N, A]) Len() int { return len(h.items) }

func (h *entryHeap[N, A]) Less(i, j int) bool {
	return h.order.Less(h.items[i].Priority, h.items[j].Priority)
}

func (h *entryHeap[N, A]) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *entryHeap[N, A]) Push(x interface{}) {
	h.items = append(h.items, x.(Entry[N, A]))
}

func (h *entryHeap[N, A]) Pop() interface{} {
	old := h.items
	n := len(old)
	item := old[n-1]
	old[n-1] = Entry[N, A]{}
	h.items = old[:n-1]
	return item
}

// Frontier is the open list: a binary heap of not-yet-expanded nodes.
//
// Push and Pop are O(log n). Duplicate labels may coexist; resolving them is
// the job of the parent-discarding policy. A Frontier is owned by one search
// and is not safe for concurrent use.
type Frontier[N comparable, A any] struct {
	h   entryHeap[N, A]
	seq uint64
}

// NewFrontier creates an empty frontier. A nil ordering means ByFValue.
func NewFrontier[N comparable, A any](order Ordering) *Frontier[N, A] {
	if order == nil {
		order = ByFValue{}
	}
	f := &Frontier[N, A]{h: entryHeap[N, A]{order: order}}
	heap.Init(&f.h)
	return f
}

// Push inserts n with priority p. The insertion sequence is assigned here and
// returned with the stored priority.
func (f *Frontier[N, A]) Push(n *Node[N, A], p Priority) Priority {
	f.seq++
	p.Seq = f.seq
	n.setPriority(p)
	heap.Push(&f.h, Entry[N, A]{Node: n, Priority: p, version: n.currentVersion()})
	return p
}

// Pop removes and returns the minimum entry. ok is false when the frontier is
// empty. Stale entries are returned too; callers check Entry.Stale.
func (f *Frontier[N, A]) Pop() (e Entry[N, A], ok bool) {
	if f.h.Len() == 0 {
		return e, false
	}
	return heap.Pop(&f.h).(Entry[N, A]), true
}

// Peek returns the minimum entry without removing it.
func (f *Frontier[N, A]) Peek() (e Entry[N, A], ok bool) {
	if f.h.Len() == 0 {
		return e, false
	}
	return f.h.items[0], true
}

// Len returns the number of entries, stale ones included.
func (f *Frontier[N, A]) Len() int { return f.h.Len() }

// Empty reports whether the frontier holds no entries.
func (f *Frontier[N, A]) Empty() bool { return f.h.Len() == 0 }
