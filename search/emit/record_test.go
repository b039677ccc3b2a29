package emit

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleHistory() []Event {
	return []Event{
		{Type: GraphInitialized, Ordinal: 1, RunID: "r", NodeID: 0, ParentID: NoNode, OldParentID: NoNode, Label: "s"},
		{Type: NodeAdded, Ordinal: 2, RunID: "r", NodeID: 0, ParentID: NoNode, OldParentID: NoNode, NodeType: TypeOpen, Label: "s", Meta: map[string]interface{}{"f": 0.0}},
		{Type: NodeAdded, Ordinal: 3, RunID: "r", NodeID: 1, ParentID: 0, OldParentID: NoNode, NodeType: TypeOpen, Label: "a", Meta: map[string]interface{}{"f": 3.5}},
		{Type: NodeRemoved, Ordinal: 4, RunID: "r", NodeID: 2, ParentID: 0, OldParentID: NoNode, Label: "b", Reason: ReasonEvaluationFailed, Meta: map[string]interface{}{"error": "boom"}},
		{Type: NodeAdded, Ordinal: 5, RunID: "r", NodeID: 3, ParentID: 0, OldParentID: NoNode, NodeType: TypeGoal, Label: "g", Meta: map[string]interface{}{"f": 7.0}},
		{Type: NodeTypeSwitched, Ordinal: 6, RunID: "r", NodeID: 0, ParentID: NoNode, OldParentID: NoNode, NodeType: TypeClosed},
		{Type: NodeParentSwitched, Ordinal: 7, RunID: "r", NodeID: 3, ParentID: 1, OldParentID: 0, Meta: map[string]interface{}{"f": 4.5}},
		{Type: SolutionFound, Ordinal: 8, RunID: "r", NodeID: 3, ParentID: 1, OldParentID: NoNode, Label: "g", Meta: map[string]interface{}{"f": 4.5}},
	}
}

func TestHistory_RoundTrip(t *testing.T) {
	events := sampleHistory()

	var buf bytes.Buffer
	if err := WriteHistory(&buf, events); err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != len(events) {
		t.Errorf("wrote %d lines, want %d", lines, len(events))
	}

	decoded, err := ReadHistory(&buf)
	if err != nil {
		t.Fatal(err)
	}
	for i := range events {
		events[i].RunID = ""
	}
	if diff := cmp.Diff(events, decoded); diff != "" {
		t.Errorf("decoded history (-want +got):\n%s", diff)
	}
}

func TestHistory_Stable(t *testing.T) {
	var a, b bytes.Buffer
	if err := WriteHistory(&a, sampleHistory()); err != nil {
		t.Fatal(err)
	}
	other := sampleHistory()
	for i := range other {
		other[i].RunID = "another-run"
	}
	if err := WriteHistory(&b, other); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("serialization must not depend on the run id")
	}
}

func TestWriteRecord_Format(t *testing.T) {
	var buf bytes.Buffer
	err := WriteRecord(&buf, Event{Type: NodeAdded, Ordinal: 3, NodeID: 2, ParentID: 0, NodeType: TypeOpen, Label: "b", Meta: map[string]interface{}{"f": 1.5}})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"type":"node_added","ordinal":3,"payload":{"node":2,"parent":0,"old_parent":0,"node_type":"open","label":"b","meta":{"f":1.5}}}` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestReadHistory_Corrupt(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", "{\"type\":\"node_added\",\"ordinal\":1,\"payload\":{}}\nnot json\n"},
		{"ordinal repeats", "{\"type\":\"node_added\",\"ordinal\":1,\"payload\":{}}\n{\"type\":\"node_added\",\"ordinal\":1,\"payload\":{}}\n"},
		{"ordinal decreases", "{\"type\":\"node_added\",\"ordinal\":5,\"payload\":{}}\n{\"type\":\"node_added\",\"ordinal\":2,\"payload\":{}}\n"},
		{"bad payload", "{\"type\":\"node_added\",\"ordinal\":1,\"payload\":{\"node\":\"x\"}}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadHistory(strings.NewReader(tt.input)); !errors.Is(err, ErrCorruptHistory) {
				t.Errorf("error = %v, want ErrCorruptHistory", err)
			}
		})
	}
}

func TestReadHistory_SkipsBlankLines(t *testing.T) {
	input := "\n{\"type\":\"graph_initialized\",\"ordinal\":1,\"payload\":{\"node\":0,\"parent\":-1,\"old_parent\":-1}}\n\n"
	events, err := ReadHistory(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].ParentID != NoNode {
		t.Errorf("events = %+v", events)
	}
}

func TestReplay(t *testing.T) {
	var got []int64
	Replay(sampleHistory(), EmitterFunc(func(e Event) { got = append(got, e.Ordinal) }))
	if diff := cmp.Diff([]int64{1, 2, 3, 4, 5, 6, 7, 8}, got); diff != "" {
		t.Errorf("replayed ordinals (-want +got):\n%s", diff)
	}
}
