package search_test

import (
	"context"
	"fmt"

	"github.com/dshills/searchgraph-go/search"
)

func ExampleNewAStar() {
	// Count from 0 to 5 by steps of +1 or +2.
	gen := search.GeneratorFuncs[int, string]{
		RootsFunc: func(context.Context) ([]int, error) { return []int{0}, nil },
		SuccessorsFunc: func(_ context.Context, n int) ([]search.Successor[int, string], error) {
			var out []search.Successor[int, string]
			for _, step := range []int{1, 2} {
				if n+step <= 5 {
					out = append(out, search.Successor[int, string]{Edge: fmt.Sprintf("+%d", step), Node: n + step})
				}
			}
			return out, nil
		},
		IsGoalFunc: func(n int) bool { return n == 5 },
	}

	s, err := search.NewAStar[int, string](gen, search.UnitCost[int, string], nil,
		search.WithParentDiscarding(search.DiscardAll))
	if err != nil {
		panic(err)
	}
	sol, err := s.Next(context.Background())
	if err != nil {
		panic(err)
	}
	cost, _ := sol.Cost()
	fmt.Println(sol.Path, cost)
	// Output: 0 -[+1]-> 1 -[+2]-> 3 -[+2]-> 5 3
}
