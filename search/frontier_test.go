package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func popLabels(f *Frontier[string, int]) []string {
	var out []string
	for {
		e, ok := f.Pop()
		if !ok {
			return out
		}
		if e.Stale() {
			continue
		}
		out = append(out, e.Node.Label())
	}
}

func TestFrontier_FIFOTieBreak(t *testing.T) {
	a := NewArena[string, int]()
	f := NewFrontier[string, int](nil)

	for _, x := range []struct {
		label string
		f     float64
	}{
		{"c1", 3}, {"a1", 1}, {"b1", 2}, {"a2", 1}, {"c2", 3}, {"a3", 1},
	} {
		f.Push(a.Add(x.label, NoNode, 0), Priority{F: x.f})
	}
	if f.Len() != 6 || f.Empty() {
		t.Fatalf("Len() = %d", f.Len())
	}
	if e, _ := f.Peek(); e.Node.Label() != "a1" {
		t.Errorf("Peek() = %s, want a1", e.Node.Label())
	}

	want := []string{"a1", "a2", "a3", "b1", "c1", "c2"}
	if diff := cmp.Diff(want, popLabels(f)); diff != "" {
		t.Errorf("pop order (-want +got):\n%s", diff)
	}
	if !f.Empty() {
		t.Error("frontier should be empty")
	}
}

func TestFrontier_Seq(t *testing.T) {
	a := NewArena[string, int]()
	f := NewFrontier[string, int](ByFValue{})
	p1 := f.Push(a.Add("x", NoNode, 0), Priority{F: 1})
	p2 := f.Push(a.Add("y", NoNode, 0), Priority{F: 1})
	if p1.Seq >= p2.Seq {
		t.Errorf("seq must increase: %d, %d", p1.Seq, p2.Seq)
	}
}

func TestFrontier_StaleEntries(t *testing.T) {
	a := NewArena[string, int]()
	f := NewFrontier[string, int](nil)
	root := a.Add("root", NoNode, 0)
	other := a.Add("other", NoNode, 0)
	n := a.Add("n", root.ID(), 0)
	f.Push(n, Priority{F: 5})

	if _, err := a.Reparent(n.ID(), other.ID(), 0); err != nil {
		t.Fatal(err)
	}
	f.Push(n, Priority{F: 2})

	e, _ := f.Pop()
	if e.Stale() || e.Priority.F != 2 {
		t.Errorf("first pop: stale=%v f=%v", e.Stale(), e.Priority.F)
	}
	e, _ = f.Pop()
	if !e.Stale() {
		t.Error("entry pushed before reparent must be stale")
	}
}

func TestByDiscrepancy_Rank(t *testing.T) {
	o := ByDiscrepancy{MaxDiscrepancies: 1}
	parent := Priority{Discrepancies: 1}
	got := o.Rank(parent, []Priority{{F: 3}, {F: 1}, {F: 1}, {F: 2}})
	want := []Priority{
		{F: 3, Discrepancies: 2, Pruned: true},
		{F: 1, Discrepancies: 1},
		{F: 1, Discrepancies: 2, Pruned: true},
		{F: 2, Discrepancies: 2, Pruned: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rank (-want +got):\n%s", diff)
	}

	unlimited := ByDiscrepancy{MaxDiscrepancies: Unlimited}.Rank(Priority{}, []Priority{{F: 1}, {F: 0}})
	if unlimited[0].Pruned || unlimited[1].Pruned || unlimited[1].Discrepancies != 0 || unlimited[0].Discrepancies != 1 {
		t.Errorf("unlimited Rank = %+v", unlimited)
	}

	if !o.Less(Priority{Discrepancies: 0, F: 9}, Priority{Discrepancies: 1, F: 0}) {
		t.Error("fewer discrepancies must come first")
	}
}

func TestParseParentDiscarding(t *testing.T) {
	tests := []struct {
		in      string
		want    ParentDiscarding
		wantErr bool
	}{
		{"none", DiscardNone, false},
		{"OPEN", DiscardOpen, false},
		{" all ", DiscardAll, false},
		{"", DiscardNone, false},
		{"closed", DiscardNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseParentDiscarding(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if err == nil && got.String() != map[ParentDiscarding]string{DiscardNone: "none", DiscardOpen: "open", DiscardAll: "all"}[got] {
				t.Errorf("String() = %q", got.String())
			}
		})
	}
}
