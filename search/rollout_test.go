package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// onesCount scores a complete path by the number of "1" moves.
var onesCount = EvaluatorFunc[string, string](func(_ context.Context, p Path[string, string]) (float64, error) {
	return float64(strings.Count(p.Head().Label(), "1")), nil
})

func TestRandomCompletion_Deterministic(t *testing.T) {
	opts := RolloutOptions{Samples: 5, Seed: 42}

	eval := func() (float64, map[string]any) {
		p := NewPath[string, string]("")
		v, err := NewRandomCompletion[string, string](binaryTree(6), onesCount, opts).Evaluate(context.Background(), p)
		if err != nil {
			t.Fatal(err)
		}
		return v, p.Head().Annotations()
	}

	v1, ann1 := eval()
	v2, ann2 := eval()
	if v1 != v2 {
		t.Errorf("same seed gave %v and %v", v1, v2)
	}
	for _, k := range []string{AnnotationRolloutMean, AnnotationRolloutStdDev, AnnotationRolloutSamples} {
		if ann1[k] != ann2[k] {
			t.Errorf("annotation %s: %v != %v", k, ann1[k], ann2[k])
		}
	}
	if ann1[AnnotationRolloutSamples] != 5.0 {
		t.Errorf("samples = %v, want 5", ann1[AnnotationRolloutSamples])
	}
	if mean := ann1[AnnotationRolloutMean].(float64); mean < v1 || v1 < 0 || v1 > 6 {
		t.Errorf("min=%v mean=%v", v1, mean)
	}
}

func TestRandomCompletion_GoalScoredDirectly(t *testing.T) {
	p := NewPath[string, string]("",
		Successor[string, string]{Edge: "1", Node: "1"},
		Successor[string, string]{Edge: "1", Node: "11"},
	)
	v, err := NewRandomCompletion[string, string](binaryTree(2), onesCount, RolloutOptions{}).Evaluate(context.Background(), p)
	if err != nil || v != 2 {
		t.Errorf("Evaluate() = %v, %v; want 2", v, err)
	}
}

func TestRandomCompletion_PathGoalTester(t *testing.T) {
	p := NewPath[int, string](0, Successor[int, string]{Edge: "next", Node: 1})
	v, err := NewRandomCompletion[int, string](goalAtLength{n: 3}, Depth[int, string](), RolloutOptions{Samples: 2}).
		Evaluate(context.Background(), p)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if v != 2 {
		t.Errorf("score = %v, want 2 (completion stops at 0 -> 1 -> 2)", v)
	}
	if n, _ := p.Head().FloatAnnotation(AnnotationRolloutSamples); n != 2 {
		t.Errorf("samples = %v, want 2", n)
	}
}

func TestRandomCompletion_DeadEndBeyondHorizon(t *testing.T) {
	rc := NewRandomCompletion[string, string](binaryTree(5), onesCount, RolloutOptions{Horizon: 2})
	_, err := rc.Evaluate(context.Background(), NewPath[string, string](""))
	if !errors.Is(err, ErrDeadEnd) {
		t.Errorf("Evaluate() error = %v, want ErrDeadEnd", err)
	}
}

func TestRandomCompletion_Timeout(t *testing.T) {
	slow := GeneratorFuncs[int, string]{
		RootsFunc: func(context.Context) ([]int, error) { return []int{0}, nil },
		SuccessorsFunc: func(_ context.Context, i int) ([]Successor[int, string], error) {
			time.Sleep(2 * time.Millisecond)
			return []Successor[int, string]{{Edge: "next", Node: i + 1}}, nil
		},
	}
	rc := NewRandomCompletion[int, string](slow, Depth[int, string](), RolloutOptions{Timeout: 20 * time.Millisecond})
	_, err := rc.Evaluate(context.Background(), NewPath[int, string](0))
	if !errors.Is(err, ErrEvaluationTimeout) {
		t.Errorf("Evaluate() error = %v, want ErrEvaluationTimeout", err)
	}
}

func TestRandomCompletion_InSearch(t *testing.T) {
	gen := binaryTree(4)
	rc := NewRandomCompletion[string, string](gen, onesCount, RolloutOptions{Samples: 4, Seed: 1})
	s, err := New[string, string](gen, rc, WithParallelism(2))
	if err != nil {
		t.Fatal(err)
	}
	sols := drain[string, string](t, s)
	if len(sols) != 16 {
		t.Fatalf("got %d solutions, want 16", len(sols))
	}
	for _, sol := range sols {
		if want := float64(strings.Count(sol.Goal().Label(), "1")); sol.Score != want {
			t.Errorf("goal %s scored %v, want %v", sol.Goal().Label(), sol.Score, want)
		}
	}
}
