package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestArena(t *testing.T) {
	a := NewArena[string, int]()
	root := a.Add("r", NoNode, 0)
	x := a.Add("x", root.ID(), 1)
	y := a.Add("y", x.ID(), 2)
	z := a.Add("z", root.ID(), 3)

	t.Run("ids are sequential", func(t *testing.T) {
		if diff := cmp.Diff([]NodeID{0, 1, 2, 3}, []NodeID{root.ID(), x.ID(), y.ID(), z.ID()}); diff != "" {
			t.Errorf("ids (-want +got):\n%s", diff)
		}
		if a.Len() != 4 {
			t.Errorf("Len() = %d, want 4", a.Len())
		}
		if a.Get(99) != nil || a.Get(NoNode) != nil {
			t.Error("Get of unknown id must return nil")
		}
	})

	t.Run("path reconstruction", func(t *testing.T) {
		p := a.Path(y.ID())
		if diff := cmp.Diff([]string{"r", "x", "y"}, p.Labels()); diff != "" {
			t.Errorf("labels (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]int{1, 2}, p.Edges()); diff != "" {
			t.Errorf("edges (-want +got):\n%s", diff)
		}
		if y.Depth() != 2 {
			t.Errorf("Depth() = %d, want 2", y.Depth())
		}
		if got := p.String(); got != "r -[1]-> x -[2]-> y" {
			t.Errorf("String() = %q", got)
		}
	})

	t.Run("reparent", func(t *testing.T) {
		v := y.currentVersion()
		old, err := a.Reparent(y.ID(), z.ID(), 7)
		if err != nil {
			t.Fatal(err)
		}
		if old != x.ID() {
			t.Errorf("old parent = %d, want %d", old, x.ID())
		}
		if diff := cmp.Diff([]string{"r", "z", "y"}, a.Path(y.ID()).Labels()); diff != "" {
			t.Errorf("labels after reparent (-want +got):\n%s", diff)
		}
		if y.Edge() != 7 || y.currentVersion() != v+1 {
			t.Errorf("edge=%d version=%d", y.Edge(), y.currentVersion())
		}
		if _, err := a.Reparent(42, root.ID(), 0); err == nil {
			t.Error("expected error for unknown node")
		}
	})
}

func TestArena_DeepPath(t *testing.T) {
	a := NewArena[int, struct{}]()
	id := a.Add(0, NoNode, struct{}{}).ID()
	for i := 1; i <= 100000; i++ {
		id = a.Add(i, id, struct{}{}).ID()
	}
	p := a.Path(id)
	if p.Len() != 100001 || p.Root().Label() != 0 || p.Head().Label() != 100000 {
		t.Errorf("deep path: len=%d root=%d head=%d", p.Len(), p.Root().Label(), p.Head().Label())
	}
}

func TestNodeAnnotations(t *testing.T) {
	n := NewArena[string, string]().Add("a", NoNode, "")
	if _, ok := n.F(); ok {
		t.Error("fresh node must not have an f-value")
	}
	n.SetAnnotation(AnnotationG, 2.5)
	n.SetAnnotation("note", "x")
	if g, ok := n.FloatAnnotation(AnnotationG); !ok || g != 2.5 {
		t.Errorf("g = %v, %v", g, ok)
	}
	if _, ok := n.FloatAnnotation("note"); ok {
		t.Error("string annotation must not read as float")
	}
	all := n.Annotations()
	all["g"] = 0.0
	if g, _ := n.FloatAnnotation(AnnotationG); g != 2.5 {
		t.Error("Annotations must return a copy")
	}
}

func TestPath(t *testing.T) {
	p := NewPath("a", Successor[string, string]{Edge: "ab", Node: "b"}, Successor[string, string]{Edge: "bc", Node: "c"})

	if diff := cmp.Diff([]string{"a", "b", "c"}, p.Labels()); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]NodeID{NoNode, NoNode, NoNode}, p.IDs()); diff != "" {
		t.Errorf("detached ids (-want +got):\n%s", diff)
	}
	if got := p.Parent().Labels(); !cmp.Equal(got, []string{"a", "b"}) {
		t.Errorf("Parent() = %v", got)
	}

	ext := p.Extend("cd", "d")
	if p.Len() != 3 || ext.Len() != 4 || ext.Head().Depth() != 3 {
		t.Errorf("Extend must not modify the receiver: %d %d", p.Len(), ext.Len())
	}

	t.Run("join", func(t *testing.T) {
		suffix := NewPath("c", Successor[string, string]{Edge: "cx", Node: "x"})
		j, err := Join(p, suffix)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"a", "b", "c", "x"}, j.Labels()); diff != "" {
			t.Errorf("joined labels (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"ab", "bc", "cx"}, j.Edges()); diff != "" {
			t.Errorf("joined edges (-want +got):\n%s", diff)
		}
		if _, err := Join(p, NewPath[string, string]("q")); err == nil {
			t.Error("expected error for mismatched join")
		}
	})

	var empty Path[string, string]
	if !empty.Empty() || empty.Head() != nil || empty.Root() != nil {
		t.Error("zero path must be empty")
	}
}
