package mcts

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUCB1_Select(t *testing.T) {
	p := UCB1{C: math.Sqrt2}
	tests := []struct {
		name     string
		parent   Stats
		children []Stats
		want     int
	}{
		{
			name:     "first unvisited",
			parent:   Stats{Visits: 3},
			children: []Stats{{Visits: 2, RewardSum: 10}, {Visits: 0}, {Visits: 0}},
			want:     1,
		},
		{
			name:     "higher mean at equal visits",
			parent:   Stats{Visits: 20},
			children: []Stats{{Visits: 10, RewardSum: -5}, {Visits: 10, RewardSum: -2}},
			want:     1,
		},
		{
			name:     "exploration favors rarely visited",
			parent:   Stats{Visits: 101},
			children: []Stats{{Visits: 100, RewardSum: -100}, {Visits: 1, RewardSum: -1.5}},
			want:     1,
		},
		{
			name:     "ties keep lowest index",
			parent:   Stats{Visits: 4},
			children: []Stats{{Visits: 2, RewardSum: -2}, {Visits: 2, RewardSum: -2}},
			want:     0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Select(tt.parent, tt.children); got != tt.want {
				t.Errorf("Select() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSPUCT_VarianceBonus(t *testing.T) {
	// Same mean and visits; the second child's rewards are spread out.
	steady := Stats{Visits: 4, RewardSum: -8, SquaredSum: 16}
	spread := Stats{Visits: 4, RewardSum: -8, SquaredSum: 40}
	parent := Stats{Visits: 8}

	if got := (SPUCT{C: 0.5, D: 0}).Select(parent, []Stats{steady, spread}); got != 1 {
		t.Errorf("SPUCT picked %d, want the high-variance child", got)
	}
	if got := (UCB1{C: 0.5}).Select(parent, []Stats{steady, spread}); got != 0 {
		t.Errorf("UCB1 picked %d, want 0 (tie)", got)
	}
}

func TestMonteCarloBackup(t *testing.T) {
	a, b := &Stats{}, &Stats{Visits: 1, RewardSum: -1, SquaredSum: 1}
	MonteCarloBackup{}.Propagate([]*Stats{a, b}, -3)

	if diff := cmp.Diff(Stats{Visits: 1, RewardSum: -3, SquaredSum: 9}, *a); diff != "" {
		t.Errorf("a (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Stats{Visits: 2, RewardSum: -4, SquaredSum: 10}, *b); diff != "" {
		t.Errorf("b (-want +got):\n%s", diff)
	}
	if b.Mean() != -2 || (Stats{}).Mean() != 0 {
		t.Errorf("Mean() = %v", b.Mean())
	}
}

func TestUniformRandom(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	counts := make([]int, 3)
	for i := 0; i < 3000; i++ {
		counts[UniformRandom{}.Choose(rng, 0, 3)]++
	}
	for i, c := range counts {
		if c < 800 || c > 1200 {
			t.Errorf("choice %d picked %d times out of 3000", i, c)
		}
	}
}
