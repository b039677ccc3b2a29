// Package emit provides the event stream of a search: the event model, emitters that
// consume it, a stable serialization format and a listener that reconstructs the
// search graph from events alone.
package emit

// Type identifies the kind of a search lifecycle event.
type Type string

const (
	// GraphInitialized is emitted once per root when a search becomes active.
	GraphInitialized Type = "graph_initialized"

	// NodeAdded is emitted when a node enters the search graph.
	NodeAdded Type = "node_added"

	// NodeRemoved is emitted when a generated node is dropped (dead end,
	// evaluation failure, duplicate, pruning).
	NodeRemoved Type = "node_removed"

	// NodeTypeSwitched is emitted when the type tag of a node changes
	// (e.g. open -> closed after expansion).
	NodeTypeSwitched Type = "node_type_switched"

	// NodeParentSwitched is emitted when a node is re-parented because a
	// cheaper path to its label was discovered.
	NodeParentSwitched Type = "node_parent_switched"

	// SolutionFound is emitted when a goal path is yielded to the caller.
	SolutionFound Type = "solution_found"
)

// NoNode marks an absent node reference (e.g. the parent of a root).
const NoNode int64 = -1

// Node type tags carried by NodeAdded and NodeTypeSwitched events.
const (
	TypeOpen     = "open"
	TypeGoal     = "goal"
	TypeClosed   = "closed"
	TypeDeadEnd  = "dead_end"
	TypeSolution = "solution"
)

// Reasons carried by NodeRemoved events.
const (
	ReasonDeadEnd           = "dead_end"
	ReasonEvaluationFailed  = "evaluation_failed"
	ReasonEvaluationTimeout = "evaluation_timeout"
	ReasonDuplicate         = "duplicate"
	ReasonDiscrepancyLimit  = "discrepancy_limit"
)

// Event represents a single lifecycle event emitted by a search instance.
//
// Field usage by event type:
//
//	graph_initialized     NodeID (root), Label
//	node_added            NodeID, ParentID (NoNode for roots), NodeType, Label
//	node_removed          NodeID, ParentID, Reason, Label
//	node_type_switched    NodeID, NodeType (new tag)
//	node_parent_switched  NodeID, OldParentID, ParentID (new parent)
//	solution_found        NodeID (goal node)
//
// Node identifiers are stable for the lifetime of the emitting search, so listeners
// can correlate events without access to engine internals.
type Event struct {
	// Type is the kind of event.
	Type Type

	// Ordinal is the emission position within the search, starting at 1.
	// It is the only timestamp carried by an event.
	Ordinal int64

	// RunID identifies the search instance that emitted this event.
	// RunID is not part of the serialized record.
	RunID string

	// NodeID is the subject node.
	NodeID int64

	// ParentID is the parent of the subject node, or the new parent for
	// node_parent_switched.
	ParentID int64

	// OldParentID is the previous parent for node_parent_switched.
	OldParentID int64

	// NodeType is the type tag for node_added and node_type_switched.
	NodeType string

	// Label is the string form of the node's external label.
	Label string

	// Reason explains a node_removed event.
	Reason string

	// Meta carries additional structured data (e.g. "f" for the f-value).
	Meta map[string]interface{}
}
