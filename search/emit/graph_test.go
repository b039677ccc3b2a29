package emit

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func f64(v float64) *float64 { return &v }

func TestGraphRecorder(t *testing.T) {
	g := NewGraphRecorder()
	Replay(sampleHistory(), g)

	want := GraphSnapshot{
		Roots: []int64{0},
		Nodes: []RecordedNode{
			{ID: 0, Parent: NoNode, Type: TypeClosed, Label: "s", F: f64(0)},
			{ID: 1, Parent: 0, Type: TypeOpen, Label: "a", F: f64(3.5)},
			{ID: 2, Parent: 0, Label: "b", Removed: true, Reason: ReasonEvaluationFailed},
			{ID: 3, Parent: 1, Type: TypeGoal, Label: "g", F: f64(4.5)},
		},
		Solutions: []int64{3},
	}
	if diff := cmp.Diff(want, g.Snapshot()); diff != "" {
		t.Errorf("snapshot (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"s", "a", "g"}, g.PathTo(3)); diff != "" {
		t.Errorf("PathTo (-want +got):\n%s", diff)
	}
	if n, ok := g.Node(2); !ok || !n.Removed {
		t.Errorf("Node(2) = %+v, %v", n, ok)
	}
	if _, ok := g.Node(42); ok {
		t.Error("Node(42) must not exist")
	}
	if errs := g.Errs(); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestGraphRecorder_ReplayMatchesLive(t *testing.T) {
	live := NewGraphRecorder()
	Replay(sampleHistory(), live)

	var buf bytes.Buffer
	if err := WriteHistory(&buf, sampleHistory()); err != nil {
		t.Fatal(err)
	}
	decoded, err := ReadHistory(&buf)
	if err != nil {
		t.Fatal(err)
	}
	replayed := NewGraphRecorder()
	Replay(decoded, replayed)

	if diff := cmp.Diff(live.Snapshot(), replayed.Snapshot()); diff != "" {
		t.Errorf("snapshot (-live +replayed):\n%s", diff)
	}
}

func TestGraphRecorder_Inconsistencies(t *testing.T) {
	g := NewGraphRecorder()
	g.Emit(Event{Type: NodeTypeSwitched, Ordinal: 1, NodeID: 9, NodeType: TypeClosed})
	g.Emit(Event{Type: NodeParentSwitched, Ordinal: 2, NodeID: 9, ParentID: 1, OldParentID: 0})
	g.Emit(Event{Type: NodeAdded, Ordinal: 3, NodeID: 5, ParentID: 0})
	g.Emit(Event{Type: NodeParentSwitched, Ordinal: 4, NodeID: 5, ParentID: 2, OldParentID: 1})

	if got := len(g.Errs()); got != 3 {
		t.Errorf("got %d errors, want 3: %v", got, g.Errs())
	}
}

func TestGraphRecorder_PathToStopsOnCycle(t *testing.T) {
	g := NewGraphRecorder()
	g.Emit(Event{Type: NodeAdded, Ordinal: 1, NodeID: 0, ParentID: 1, Label: "x"})
	g.Emit(Event{Type: NodeAdded, Ordinal: 2, NodeID: 1, ParentID: 0, Label: "y"})
	if got := g.PathTo(0); len(got) != 2 {
		t.Errorf("PathTo on a cycle = %v", got)
	}
}
