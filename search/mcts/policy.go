package mcts

import (
	"math"
	"math/rand/v2"
)

// Stats are the visit statistics of one tree node, i.e. of the action that
// leads into it.
type Stats struct {
	Visits     int
	RewardSum  float64
	SquaredSum float64
}

// Mean returns the average observed reward, 0 before the first visit.
func (s Stats) Mean() float64 {
	if s.Visits == 0 {
		return 0
	}
	return s.RewardSum / float64(s.Visits)
}

// TreePolicy selects which child to descend into during selection.
// children holds the statistics of the candidates; the returned index must be
// valid. Implementations must be deterministic given their inputs.
type TreePolicy interface {
	Select(parent Stats, children []Stats) int
}

// UCB1 is the upper confidence bound policy of UCT:
//
//	mean + C * sqrt(ln(parent visits) / child visits)
//
// Unvisited children are selected first, in order.
type UCB1 struct {
	C float64
}

// Select implements TreePolicy.
func (p UCB1) Select(parent Stats, children []Stats) int {
	return argmax(children, func(c Stats) float64 {
		return c.Mean() + p.C*exploration(parent, c)
	})
}

// SPUCT is the single-player UCT policy. It adds to UCB1 a bonus for
// children whose observed rewards vary a lot:
//
//	mean + C * sqrt(ln(parent visits) / child visits)
//	     + sqrt((sum of squares - visits * mean^2 + D) / visits)
//
// D keeps the bonus positive for rarely visited children.
type SPUCT struct {
	C float64
	D float64
}

// Select implements TreePolicy.
func (p SPUCT) Select(parent Stats, children []Stats) int {
	return argmax(children, func(c Stats) float64 {
		n := float64(c.Visits)
		mean := c.Mean()
		variance := (c.SquaredSum - n*mean*mean + p.D) / n
		if variance < 0 {
			variance = 0
		}
		return mean + p.C*exploration(parent, c) + math.Sqrt(variance)
	})
}

func exploration(parent, child Stats) float64 {
	if parent.Visits < 1 {
		return 0
	}
	return math.Sqrt(math.Log(float64(parent.Visits)) / float64(child.Visits))
}

// argmax returns the first unvisited child, or the child with the highest
// score. Ties keep the lowest index.
func argmax(children []Stats, score func(Stats) float64) int {
	best, bestScore := 0, math.Inf(-1)
	for i, c := range children {
		if c.Visits == 0 {
			return i
		}
		if s := score(c); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

// DefaultPolicy picks the successor taken at each step of a rollout.
// n is the number of successors, depth the depth of the current node.
type DefaultPolicy interface {
	Choose(rng *rand.Rand, depth, n int) int
}

// UniformRandom picks every successor with equal probability.
type UniformRandom struct{}

// Choose implements DefaultPolicy.
func (UniformRandom) Choose(rng *rand.Rand, _ int, n int) int {
	return rng.IntN(n)
}

// Backup propagates the reward of one rollout to the nodes of the selected
// path, ordered from the tree top to the expanded leaf.
type Backup interface {
	Propagate(path []*Stats, reward float64)
}

// MonteCarloBackup adds the reward to every node: visits, reward sum and sum
// of squared rewards.
type MonteCarloBackup struct{}

// Propagate implements Backup.
func (MonteCarloBackup) Propagate(path []*Stats, reward float64) {
	for _, s := range path {
		s.Visits++
		s.RewardSum += reward
		s.SquaredSum += reward * reward
	}
}
