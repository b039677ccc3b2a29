// Package problems provides small search problems used by the gsearch CLI,
// the examples and the tests.
package problems

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/searchgraph-go/search"
)

// PathGraph is the line graph 0 -> 1 -> ... -> N with the goal at N.
type PathGraph struct {
	N int
}

// Roots implements search.Generator.
func (g PathGraph) Roots(context.Context) ([]int, error) { return []int{0}, nil }

// Successors implements search.Generator.
func (g PathGraph) Successors(_ context.Context, n int) ([]search.Successor[int, string], error) {
	if n >= g.N {
		return nil, nil
	}
	return []search.Successor[int, string]{{Edge: "next", Node: n + 1}}, nil
}

// IsGoal implements search.Generator.
func (g PathGraph) IsGoal(n int) bool { return n == g.N }

// Heuristic returns the exact remaining distance N - n.
func (g PathGraph) Heuristic(n int) float64 { return float64(g.N - n) }

// BinaryTree is the complete binary tree of depth Depth. Labels are the bit
// strings of the branches taken ("" is the root); every leaf is a goal.
type BinaryTree struct {
	Depth int
}

// Roots implements search.Generator.
func (t BinaryTree) Roots(context.Context) ([]string, error) { return []string{""}, nil }

// Successors implements search.Generator.
func (t BinaryTree) Successors(_ context.Context, n string) ([]search.Successor[string, string], error) {
	if len(n) >= t.Depth {
		return nil, nil
	}
	return []search.Successor[string, string]{
		{Edge: "0", Node: n + "0"},
		{Edge: "1", Node: n + "1"},
	}, nil
}

// IsGoal implements search.Generator.
func (t BinaryTree) IsGoal(n string) bool { return len(n) == t.Depth }

// SeededValues returns an evaluator that assigns every path a pseudo-random
// value in [0, 1) derived from seed and the head label. The value does not
// depend on evaluation order, so it is reproducible at any parallelism.
func SeededValues[N comparable, A any](seed uint64) search.Evaluator[N, A] {
	return search.EvaluatorFunc[N, A](func(_ context.Context, p search.Path[N, A]) (float64, error) {
		h := sha256.New()
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], seed)
		h.Write(buf[:])
		fmt.Fprintf(h, "%v", p.Head().Label())
		sum := h.Sum(nil)
		return float64(binary.BigEndian.Uint64(sum[:8])>>11) / (1 << 53), nil
	})
}

// Point is a grid cell.
type Point struct {
	X, Y int
}

// String implements fmt.Stringer.
func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Grid is a 4-connected maze.
type Grid struct {
	Width, Height int
	Walls         map[Point]bool
	Start, Goal   Point
}

// ParseGrid reads a maze from rows of '.', '#', 'S' (start) and 'G' (goal).
func ParseGrid(rows []string) (*Grid, error) {
	g := &Grid{Height: len(rows), Walls: make(map[Point]bool)}
	var haveStart, haveGoal bool
	for y, row := range rows {
		if y == 0 {
			g.Width = len(row)
		} else if len(row) != g.Width {
			return nil, fmt.Errorf("row %d has width %d, want %d", y, len(row), g.Width)
		}
		for x, c := range row {
			p := Point{x, y}
			switch c {
			case '#':
				g.Walls[p] = true
			case 'S':
				g.Start, haveStart = p, true
			case 'G':
				g.Goal, haveGoal = p, true
			case '.':
			default:
				return nil, fmt.Errorf("unexpected %q at %v", c, p)
			}
		}
	}
	if !haveStart || !haveGoal {
		return nil, fmt.Errorf("maze needs one S and one G")
	}
	return g, nil
}

// OpenGrid returns an empty w x h grid from the top-left to the bottom-right
// corner.
func OpenGrid(w, h int) *Grid {
	return &Grid{Width: w, Height: h, Walls: map[Point]bool{}, Goal: Point{w - 1, h - 1}}
}

// Roots implements search.Generator.
func (g *Grid) Roots(context.Context) ([]Point, error) { return []Point{g.Start}, nil }

var moves = []struct {
	name   string
	dx, dy int
}{
	{"N", 0, -1}, {"E", 1, 0}, {"S", 0, 1}, {"W", -1, 0},
}

// Successors implements search.Generator.
func (g *Grid) Successors(_ context.Context, p Point) ([]search.Successor[Point, string], error) {
	var out []search.Successor[Point, string]
	for _, m := range moves {
		q := Point{p.X + m.dx, p.Y + m.dy}
		if q.X < 0 || q.Y < 0 || q.X >= g.Width || q.Y >= g.Height || g.Walls[q] {
			continue
		}
		out = append(out, search.Successor[Point, string]{Edge: m.name, Node: q})
	}
	return out, nil
}

// IsGoal implements search.Generator.
func (g *Grid) IsGoal(p Point) bool { return p == g.Goal }

// Manhattan is an admissible and consistent heuristic for unit moves.
func (g *Grid) Manhattan(p Point) float64 {
	return float64(abs(p.X-g.Goal.X) + abs(p.Y-g.Goal.Y))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// NQueens places N non-attacking queens row by row. A label lists the
// columns of the queens placed so far, e.g. "1,3,0".
type NQueens struct {
	N int
}

// Roots implements search.Generator.
func (q NQueens) Roots(context.Context) ([]string, error) { return []string{""}, nil }

// Successors implements search.Generator.
func (q NQueens) Successors(_ context.Context, board string) ([]search.Successor[string, int], error) {
	cols := Columns(board)
	if len(cols) >= q.N {
		return nil, nil
	}
	var out []search.Successor[string, int]
	for c := 0; c < q.N; c++ {
		if safe(cols, c) {
			next := fmt.Sprint(c)
			if board != "" {
				next = board + "," + next
			}
			out = append(out, search.Successor[string, int]{Edge: c, Node: next})
		}
	}
	return out, nil
}

// IsGoal implements search.Generator.
func (q NQueens) IsGoal(board string) bool { return len(Columns(board)) == q.N }

// Columns decodes a board label.
func Columns(board string) []int {
	if board == "" {
		return nil
	}
	parts := strings.Split(board, ",")
	cols := make([]int, len(parts))
	for i, s := range parts {
		cols[i], _ = strconv.Atoi(s)
	}
	return cols
}

func safe(cols []int, c int) bool {
	row := len(cols)
	for r, qc := range cols {
		if qc == c || abs(qc-c) == row-r {
			return false
		}
	}
	return true
}
