package search

import (
	"fmt"
	"strings"
)

// ParentDiscarding decides how the engine treats several paths reaching the
// same external label.
type ParentDiscarding int

const (
	// DiscardNone performs tree search. Every path is kept and expanded on
	// its own, so each goal path is yielded separately.
	DiscardNone ParentDiscarding = iota

	// DiscardOpen drops a generated node whose label is already in the
	// frontier unless the new path is strictly cheaper, in which case the
	// existing node is re-parented onto it. Ties keep the first-seen path.
	DiscardOpen

	// DiscardAll behaves like DiscardOpen and additionally never re-inserts a
	// label that has already been expanded.
	DiscardAll
)

// String implements fmt.Stringer.
func (p ParentDiscarding) String() string {
	switch p {
	case DiscardNone:
		return "none"
	case DiscardOpen:
		return "open"
	case DiscardAll:
		return "all"
	}
	return fmt.Sprintf("ParentDiscarding(%d)", int(p))
}

// ParseParentDiscarding parses "none", "open" or "all".
func ParseParentDiscarding(s string) (ParentDiscarding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return DiscardNone, nil
	case "open":
		return DiscardOpen, nil
	case "all":
		return DiscardAll, nil
	}
	return DiscardNone, invalidOption("unknown parent discarding policy %q", s)
}

func (p ParentDiscarding) valid() bool {
	return p >= DiscardNone && p <= DiscardAll
}

// discardIndex tracks which labels are open or closed under a policy.
type discardIndex[N comparable] struct {
	policy ParentDiscarding
	open   map[N]NodeID
	closed map[N]struct{}
}

func newDiscardIndex[N comparable](policy ParentDiscarding) *discardIndex[N] {
	return &discardIndex[N]{
		policy: policy,
		open:   make(map[N]NodeID),
		closed: make(map[N]struct{}),
	}
}

// openNode returns the node currently holding label in the frontier.
func (d *discardIndex[N]) openNode(label N) (NodeID, bool) {
	if d.policy == DiscardNone {
		return NoNode, false
	}
	id, ok := d.open[label]
	return id, ok
}

func (d *discardIndex[N]) isClosed(label N) bool {
	if d.policy != DiscardAll {
		return false
	}
	_, ok := d.closed[label]
	return ok
}

func (d *discardIndex[N]) markOpen(label N, id NodeID) {
	if d.policy == DiscardNone {
		return
	}
	d.open[label] = id
}

// markExpanded moves label out of the open index when node id leaves the
// frontier. Under DiscardAll the label becomes closed.
func (d *discardIndex[N]) markExpanded(label N, id NodeID) {
	if d.policy == DiscardNone {
		return
	}
	if cur, ok := d.open[label]; ok && cur == id {
		delete(d.open, label)
	}
	if d.policy == DiscardAll {
		d.closed[label] = struct{}{}
	}
}
