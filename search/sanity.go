package search

import (
	"context"
	"errors"
	"fmt"
)

// FindingKind classifies a problem found by CheckGraph.
type FindingKind string

const (
	// FindingDeadEnd is a non-goal node without viable successors: the
	// generator returned none, or the evaluator declared all of them dead
	// ends.
	FindingDeadEnd FindingKind = "dead_end"

	// FindingCycle is an edge back to a label on the current path.
	FindingCycle FindingKind = "cycle"
)

// Finding is one problem found by CheckGraph.
type Finding[N comparable] struct {
	Kind FindingKind

	// Path holds the labels from the root to the offending node. For cycles
	// the repeated label is appended at the end.
	Path []N
}

// Label returns the dead-end label, or the repeated label of a cycle.
func (f Finding[N]) Label() N {
	return f.Path[len(f.Path)-1]
}

// String implements fmt.Stringer.
func (f Finding[N]) String() string {
	return fmt.Sprintf("%s at %v", f.Kind, f.Path)
}

// Report is the result of CheckGraph.
type Report[N comparable] struct {
	Findings []Finding[N]

	// Visited counts distinct labels entered.
	Visited int

	// Truncated is set when the node limit stopped the scan early.
	Truncated bool
}

// DeadEnds returns the dead-end findings.
func (r Report[N]) DeadEnds() []Finding[N] { return r.filter(FindingDeadEnd) }

// Cycles returns the cycle findings.
func (r Report[N]) Cycles() []Finding[N] { return r.filter(FindingCycle) }

// OK reports whether the scan completed without findings.
func (r Report[N]) OK() bool { return len(r.Findings) == 0 && !r.Truncated }

func (r Report[N]) filter(kind FindingKind) []Finding[N] {
	var out []Finding[N]
	for _, f := range r.Findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

type color uint8

const (
	white color = iota
	gray
	black
)

type checkFrame[N comparable, A any] struct {
	path   Path[N, A]
	succs  []Successor[N, A]
	next   int
	viable int
}

// CheckGraph scans the graph defined by gen depth-first, before any real
// search, and reports dead ends and cycles. Each label is entered once.
//
// When eval is not nil, every generated child is evaluated and children the
// evaluator declares dead ends are not followed. Goal nodes are not expanded.
// The scan stops after maxNodes labels (0 means 10000) and sets Truncated.
//
// The walk keeps an explicit stack, so deep graphs do not grow the goroutine
// stack. Generator errors abort the scan with ErrGeneratorFailure.
func CheckGraph[N comparable, A any](ctx context.Context, gen Generator[N, A], eval Evaluator[N, A], maxNodes int) (Report[N], error) {
	var report Report[N]
	if maxNodes <= 0 {
		maxNodes = 10000
	}

	roots, err := gen.Roots(ctx)
	if err != nil {
		return report, newError(CodeGeneratorFailed, NoNode, err, "computing roots")
	}

	colors := make(map[N]color)
	var stack []*checkFrame[N, A]

	enter := func(p Path[N, A]) error {
		label := p.Head().Label()
		colors[label] = gray
		report.Visited++
		if IsGoalPath(gen, p) {
			colors[label] = black
			return nil
		}
		succs, err := gen.Successors(ctx, label)
		if err != nil {
			return newError(CodeGeneratorFailed, NoNode, err, "computing successors of %v", label)
		}
		stack = append(stack, &checkFrame[N, A]{path: p, succs: succs})
		return nil
	}

	for _, root := range roots {
		if colors[root] != white {
			continue
		}
		if report.Visited >= maxNodes {
			report.Truncated = true
			return report, nil
		}
		if err := enter(NewPath[N, A](root)); err != nil {
			return report, err
		}

		for len(stack) > 0 {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			top := stack[len(stack)-1]

			if top.next == len(top.succs) {
				if top.viable == 0 {
					report.Findings = append(report.Findings, Finding[N]{Kind: FindingDeadEnd, Path: top.path.Labels()})
				}
				colors[top.path.Head().Label()] = black
				stack = stack[:len(stack)-1]
				continue
			}

			sc := top.succs[top.next]
			top.next++
			child := top.path.Extend(sc.Edge, sc.Node)

			switch colors[sc.Node] {
			case gray:
				report.Findings = append(report.Findings, Finding[N]{Kind: FindingCycle, Path: child.Labels()})
				continue
			case black:
				top.viable++
				continue
			}

			if eval != nil {
				if _, err := eval.Evaluate(ctx, child); errors.Is(err, ErrDeadEnd) {
					continue
				}
			}
			top.viable++

			if report.Visited >= maxNodes {
				report.Truncated = true
				return report, nil
			}
			if err := enter(child); err != nil {
				return report, err
			}
		}
	}
	return report, nil
}
