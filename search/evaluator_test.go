package search

import (
	"context"
	"errors"
	"testing"
)

func TestEvaluators(t *testing.T) {
	ctx := context.Background()
	p := NewPath[string, string]("a",
		Successor[string, string]{Edge: "ab", Node: "b"},
		Successor[string, string]{Edge: "bc", Node: "c"},
	)
	failing := EvaluatorFunc[string, string](func(context.Context, Path[string, string]) (float64, error) {
		return 0, errBoom
	})
	dead := EvaluatorFunc[string, string](func(context.Context, Path[string, string]) (float64, error) {
		return 0, ErrDeadEnd
	})

	tests := []struct {
		name    string
		eval    Evaluator[string, string]
		want    float64
		wantErr error
	}{
		{"constant", Constant[string, string](2.5), 2.5, nil},
		{"depth", Depth[string, string](), 2, nil},
		{"sum", Sum(Constant[string, string](1), Depth[string, string]()), 3, nil},
		{"sum error", Sum(Depth[string, string](), failing), 0, errBoom},
		{"fallback", Fallback(failing, Constant[string, string](9)), 9, nil},
		{"fallback keeps dead end", Fallback(dead, Constant[string, string](9)), 0, ErrDeadEnd},
		{"within depth", DeadEndBeyond(Depth[string, string](), 2), 2, nil},
		{"beyond depth", DeadEndBeyond(Depth[string, string](), 1), 0, ErrDeadEnd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.eval.Evaluate(ctx, p)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
