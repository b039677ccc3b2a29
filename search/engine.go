package search

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/searchgraph-go/search/emit"
)

// Search is the best-first search engine.
//
// The caller drives it by pulling solutions with Next, HasNext or Solutions.
// No work happens between calls: each call advances the loop until a goal is
// popped from the frontier or the search ends. All engine state is mutated on
// the calling goroutine; the only internal concurrency is the bounded parallel
// evaluation of one expansion's children (WithParallelism).
//
// Each step pops the minimum frontier entry. Goal nodes are yielded. Other
// nodes are expanded: their children are evaluated, dead ends and failed
// evaluations are dropped with a node_removed event, the parent-discarding
// policy is applied and the survivors are inserted with a node_added event.
//
// A Search is created with New, NewAStar or NewLimitedDiscrepancy and must not
// be reused after it ends.
type Search[N comparable, A any] struct {
	gen  Generator[N, A]
	eval Evaluator[N, A]
	cfg  config
	log  *slog.Logger

	arena    *Arena[N, A]
	frontier *Frontier[N, A]
	index    *discardIndex[N]
	emitter  *emit.MultiEmitter

	// mu serializes Next/HasNext. Cancel, State, Stats and RegisterListener
	// do not take it.
	mu            sync.Mutex
	ordinal       int64
	deadline      time.Time
	pending       *Solution[N, A]
	pendingExpand *Node[N, A]
	solutions     int
	err           error

	state    atomic.Int32
	canceled atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc

	statsMu sync.Mutex
	stats   Stats
}

var _ Searcher[int, int] = (*Search[int, int])(nil)

// New creates a best-first search over gen, ordered by eval.
//
// Example:
//
//	s, err := search.New(gen, eval, search.WithParentDiscarding(search.DiscardAll))
//	if err != nil {
//	    return err
//	}
//	for sol, err := range s.Solutions(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(sol.Path)
//	}
func New[N comparable, A any](gen Generator[N, A], eval Evaluator[N, A], opts ...Option) (*Search[N, A], error) {
	if gen == nil {
		return nil, invalidOption("generator must not be nil")
	}
	if eval == nil {
		return nil, invalidOption("evaluator must not be nil")
	}
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Search[N, A]{
		gen:      gen,
		eval:     eval,
		cfg:      cfg,
		log:      cfg.logger.With("component", "search", "run_id", cfg.runID),
		arena:    NewArena[N, A](),
		frontier: NewFrontier[N, A](cfg.ordering),
		index:    newDiscardIndex[N](cfg.discarding),
		emitter:  emit.NewMultiEmitter(cfg.listeners...),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.state.Store(int32(StateCreated))
	return s, nil
}

// RunID returns the identifier attached to emitted events.
func (s *Search[N, A]) RunID() string { return s.cfg.runID }

// Arena returns the node table of the search. It is safe to read while the
// search runs.
func (s *Search[N, A]) Arena() *Arena[N, A] { return s.arena }

// RegisterListener adds an event listener. Listeners registered after
// activation miss earlier events.
func (s *Search[N, A]) RegisterListener(l emit.Emitter) {
	s.emitter.Add(l)
}

// State returns the lifecycle state.
func (s *Search[N, A]) State() State { return State(s.state.Load()) }

// Stats returns a snapshot of the search counters.
func (s *Search[N, A]) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	st := s.stats
	st.Nodes = s.arena.Len()
	return st
}

// Err returns the error that ended the search. It is nil while the search is
// running and after normal exhaustion.
func (s *Search[N, A]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(s.err, ErrExhausted) {
		return nil
	}
	return s.err
}

// Cancel requests cooperative shutdown. The running step stops before
// applying its remaining children, pending evaluations stop being waited on,
// and every later call returns ErrCanceled. Solutions already returned stay
// valid.
func (s *Search[N, A]) Cancel() {
	if s.canceled.CompareAndSwap(false, true) {
		s.cancel()
	}
}

// Next returns the next solution.
func (s *Search[N, A]) Next(ctx context.Context) (Solution[N, A], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil && !s.canceled.Load() {
		sol := *s.pending
		s.pending = nil
		return sol, nil
	}
	s.pending = nil
	return s.next(ctx)
}

// HasNext reports whether another solution exists, computing and buffering it.
func (s *Search[N, A]) HasNext(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.canceled.Load() {
		s.pending = nil
	}
	if s.pending != nil {
		return true
	}
	sol, err := s.next(ctx)
	if err != nil {
		return false
	}
	s.pending = &sol
	return true
}

// Solutions returns an iterator over the remaining solutions.
func (s *Search[N, A]) Solutions(ctx context.Context) iter.Seq2[Solution[N, A], error] {
	return func(yield func(Solution[N, A], error) bool) {
		for {
			sol, err := s.Next(ctx)
			if err != nil {
				if !errors.Is(err, ErrExhausted) {
					yield(Solution[N, A]{}, err)
				}
				return
			}
			if !yield(sol, nil) {
				return
			}
		}
	}
}

func (s *Search[N, A]) next(ctx context.Context) (Solution[N, A], error) {
	var zero Solution[N, A]
	if s.err != nil {
		return zero, s.err
	}

	if s.State() == StateCreated && s.cfg.timeout > 0 {
		s.deadline = time.Now().Add(s.cfg.timeout)
	}
	runCtx, stop := s.runContext(ctx)
	defer stop()

	if err := s.interrupted(ctx); err != nil {
		return zero, s.finish(err)
	}
	if s.State() == StateCreated {
		if err := s.activate(runCtx); err != nil {
			return zero, s.finish(err)
		}
	}

	for {
		if err := s.interrupted(ctx); err != nil {
			return zero, s.finish(err)
		}
		sol, found, err := s.step(runCtx)
		if err != nil {
			if ierr := s.interrupted(ctx); ierr != nil {
				err = ierr
			}
			return zero, s.finish(err)
		}
		if found {
			return sol, nil
		}
	}
}

// runContext merges the caller's context, the internal cancel context and the
// search deadline.
func (s *Search[N, A]) runContext(ctx context.Context) (context.Context, func()) {
	runCtx, cancel := context.WithCancel(ctx)
	stopAfter := context.AfterFunc(s.ctx, cancel)
	stop := func() {
		stopAfter()
		cancel()
	}
	if !s.deadline.IsZero() {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, s.deadline)
		prev := stop
		stop = func() {
			cancelDeadline()
			prev()
		}
	}
	return runCtx, stop
}

// interrupted reports cancellation or an exceeded time budget.
func (s *Search[N, A]) interrupted(ctx context.Context) error {
	if s.canceled.Load() {
		return newError(CodeCanceled, NoNode, context.Canceled, "search canceled")
	}
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return newError(CodeSearchTimeout, NoNode, err, "search deadline exceeded")
		}
		return newError(CodeCanceled, NoNode, err, "search context canceled")
	}
	if !s.deadline.IsZero() && !time.Now().Before(s.deadline) {
		return newError(CodeSearchTimeout, NoNode, context.DeadlineExceeded, "search exceeded timeout of %v", s.cfg.timeout)
	}
	return nil
}

// finish records the terminal error and moves to the matching final state.
func (s *Search[N, A]) finish(err error) error {
	if s.err != nil {
		return s.err
	}
	s.err = err

	state := StateFailed
	switch {
	case errors.Is(err, ErrExhausted):
		state = StateTerminated
	case errors.Is(err, ErrCanceled):
		state = StateCanceled
	}
	s.state.Store(int32(state))
	s.cancel()

	st := s.Stats()
	if state == StateFailed {
		s.log.Warn("search failed", "error", err, "expansions", st.Expansions, "solutions", st.Solutions)
	} else {
		s.log.Debug("search finished", "state", state.String(), "expansions", st.Expansions,
			"generated", st.Generated, "solutions", st.Solutions)
	}
	return err
}

// activate moves the search from Created to Active: the generator's roots are
// announced, evaluated and inserted like children of a virtual parent.
func (s *Search[N, A]) activate(ctx context.Context) error {
	s.state.Store(int32(StateActive))

	labels, err := s.callRoots(ctx)
	if err != nil {
		return err
	}
	if len(labels) == 0 {
		return newError(CodeGeneratorFailed, NoNode, nil, "generator returned no roots")
	}

	var zeroEdge A
	roots := make([]*Node[N, A], len(labels))
	for i, label := range labels {
		n := s.arena.Add(label, NoNode, zeroEdge)
		n.setGoal(IsGoalPath(s.gen, s.arena.Path(n.ID())))
		roots[i] = n
		s.emit(emit.Event{
			Type:        emit.GraphInitialized,
			OldParentID: emit.NoNode,
			NodeID:      int64(n.ID()),
			ParentID:    emit.NoNode,
			Label:       fmt.Sprint(label),
		})
	}
	s.log.Debug("search activated", "roots", len(roots), "policy", s.cfg.discarding.String(),
		"parallelism", s.cfg.parallelism)

	return s.insertChildren(ctx, nil, roots)
}

// step performs one unit of work. found is true when sol is a new solution.
func (s *Search[N, A]) step(ctx context.Context) (sol Solution[N, A], found bool, err error) {
	if n := s.pendingExpand; n != nil {
		s.pendingExpand = nil
		return sol, false, s.expand(ctx, n)
	}

	e, ok := s.frontier.Pop()
	s.cfg.metrics.SetFrontierSize(s.frontier.Len())
	s.count(func(st *Stats) { st.FrontierSize = s.frontier.Len() })
	if !ok {
		return sol, false, ErrExhausted
	}
	if e.Stale() {
		return sol, false, nil
	}

	n := e.Node
	s.index.markExpanded(n.Label(), n.ID())

	if n.IsGoal() {
		if s.cfg.expandGoals {
			s.pendingExpand = n
		}
		return s.yield(n), true, nil
	}

	if s.cfg.maxExpansions > 0 && s.Stats().Expansions >= s.cfg.maxExpansions {
		s.log.Debug("expansion limit reached", "limit", s.cfg.maxExpansions)
		return sol, false, ErrExhausted
	}
	return sol, false, s.expand(ctx, n)
}

func (s *Search[N, A]) yield(n *Node[N, A]) Solution[N, A] {
	s.solutions++
	f, _ := n.F()
	sol := Solution[N, A]{
		Path:    s.arena.Path(n.ID()),
		Score:   f,
		Ordinal: s.solutions,
	}
	s.count(func(st *Stats) { st.Solutions++ })
	s.cfg.metrics.IncSolutions()
	s.emit(emit.Event{
		Type:        emit.SolutionFound,
		OldParentID: emit.NoNode,
		NodeID:      int64(n.ID()),
		ParentID:    int64(n.Parent()),
		Label:       fmt.Sprint(n.Label()),
		Meta:        scoreMeta(f),
	})
	return sol
}

// expand generates, evaluates and inserts the children of n.
func (s *Search[N, A]) expand(ctx context.Context, n *Node[N, A]) error {
	s.count(func(st *Stats) { st.Expansions++ })
	s.cfg.metrics.IncExpansions()

	succs, err := s.callSuccessors(ctx, n)
	if err != nil {
		return err
	}
	s.count(func(st *Stats) { st.Generated += len(succs) })
	s.cfg.metrics.AddGenerated(len(succs))

	if len(succs) == 0 {
		if n.IsGoal() {
			s.switchType(n, emit.TypeClosed)
			return nil
		}
		s.count(func(st *Stats) { st.DeadEnds++ })
		s.cfg.metrics.IncDeadEnds()
		s.log.Debug("dead end", "node", n.ID(), "label", fmt.Sprint(n.Label()))
		s.switchType(n, emit.TypeDeadEnd)
		return nil
	}

	children := make([]*Node[N, A], len(succs))
	for i, sc := range succs {
		c := s.arena.Add(sc.Node, n.ID(), sc.Edge)
		c.setGoal(IsGoalPath(s.gen, s.arena.Path(c.ID())))
		children[i] = c
	}

	parent := n.getPriority()
	if err := s.insertChildren(ctx, &parent, children); err != nil {
		return err
	}
	s.switchType(n, emit.TypeClosed)
	return nil
}

// outcome is the evaluation result of one generated node.
type outcome struct {
	f   float64
	err error
}

// insertChildren evaluates the nodes, ranks the survivors with the ordering
// and applies the results in generation order. Roots (parent nil) are not
// ranked.
func (s *Search[N, A]) insertChildren(ctx context.Context, parent *Priority, children []*Node[N, A]) error {
	outcomes := s.evaluateAll(ctx, children)
	if err := s.interrupted(ctx); err != nil {
		return err
	}

	for i := range outcomes {
		if errors.Is(outcomes[i].err, ErrEvaluationTimeout) && s.cfg.hasFallback {
			outcomes[i] = outcome{f: s.cfg.fallback}
		}
	}

	var (
		prios  []Priority
		ranked = make([]int, len(children))
	)
	for i, o := range outcomes {
		ranked[i] = -1
		if o.err == nil {
			ranked[i] = len(prios)
			prios = append(prios, Priority{F: o.f})
		}
	}
	if len(prios) > 0 && parent != nil {
		prios = s.cfg.ordering.Rank(*parent, prios)
	}

	for i, c := range children {
		if err := s.interrupted(ctx); err != nil {
			return err
		}
		o := outcomes[i]
		switch {
		case errors.Is(o.err, ErrDeadEnd):
			s.count(func(st *Stats) { st.DeadEnds++ })
			s.cfg.metrics.IncDeadEnds()
			s.remove(c, emit.ReasonDeadEnd, nil)
		case errors.Is(o.err, ErrEvaluationTimeout):
			s.count(func(st *Stats) { st.EvaluationTimeouts++ })
			s.cfg.metrics.IncEvaluationFailures("timeout")
			s.remove(c, emit.ReasonEvaluationTimeout, o.err)
		case o.err != nil:
			s.count(func(st *Stats) { st.EvaluationFailures++ })
			s.cfg.metrics.IncEvaluationFailures("error")
			s.log.Debug("evaluation failed", "node", c.ID(), "error", o.err)
			s.remove(c, emit.ReasonEvaluationFailed, o.err)
		default:
			p := prios[ranked[i]]
			if p.Pruned {
				s.remove(c, emit.ReasonDiscrepancyLimit, nil)
				continue
			}
			s.insert(c, p)
		}
	}
	return nil
}

// insert applies the parent-discarding policy to a freshly evaluated node and
// either adds it to the frontier, re-parents the existing holder of its label
// or drops it.
func (s *Search[N, A]) insert(c *Node[N, A], p Priority) {
	label := c.Label()

	if s.index.isClosed(label) {
		s.remove(c, emit.ReasonDuplicate, nil)
		return
	}

	if id, ok := s.index.openNode(label); ok {
		existing := s.arena.Get(id)
		if ef, _ := existing.F(); p.F < ef {
			s.remove(c, emit.ReasonDuplicate, nil)
			s.reparent(existing, c, p)
			return
		}
		s.remove(c, emit.ReasonDuplicate, nil)
		return
	}

	c.setF(p.F)
	typ := emit.TypeOpen
	if c.IsGoal() {
		typ = emit.TypeGoal
	}
	c.setType(typ)
	s.frontier.Push(c, p)
	s.index.markOpen(label, c.ID())
	s.count(func(st *Stats) {
		st.Added++
		st.FrontierSize = s.frontier.Len()
	})
	s.cfg.metrics.SetFrontierSize(s.frontier.Len())

	s.emit(emit.Event{
		Type:        emit.NodeAdded,
		OldParentID: emit.NoNode,
		NodeID:      int64(c.ID()),
		ParentID:    int64(c.Parent()),
		NodeType:    typ,
		Label:       fmt.Sprint(label),
		Meta:        scoreMeta(p.F),
	})
}

// reparent moves the open node existing onto the cheaper path that produced
// c. The old frontier entry becomes stale.
func (s *Search[N, A]) reparent(existing, c *Node[N, A], p Priority) {
	old, err := s.arena.Reparent(existing.ID(), c.Parent(), c.Edge())
	if err != nil {
		s.log.Error("reparent failed", "node", existing.ID(), "error", err)
		return
	}
	existing.setF(p.F)
	for k, v := range c.Annotations() {
		existing.SetAnnotation(k, v)
	}
	existing.setGoal(IsGoalPath(s.gen, s.arena.Path(existing.ID())))
	s.frontier.Push(existing, p)
	s.count(func(st *Stats) {
		st.ParentSwitches++
		st.FrontierSize = s.frontier.Len()
	})

	s.emit(emit.Event{
		Type:        emit.NodeParentSwitched,
		NodeID:      int64(existing.ID()),
		ParentID:    int64(existing.Parent()),
		OldParentID: int64(old),
		Meta:        scoreMeta(p.F),
	})
}

func (s *Search[N, A]) remove(c *Node[N, A], reason string, cause error) {
	s.count(func(st *Stats) { st.Removed++ })
	var meta map[string]interface{}
	if cause != nil {
		meta = map[string]interface{}{"error": cause.Error()}
	}
	s.emit(emit.Event{
		Type:        emit.NodeRemoved,
		OldParentID: emit.NoNode,
		NodeID:      int64(c.ID()),
		ParentID:    int64(c.Parent()),
		Label:       fmt.Sprint(c.Label()),
		Reason:      reason,
		Meta:        meta,
	})
}

func (s *Search[N, A]) switchType(n *Node[N, A], typ string) {
	n.setType(typ)
	s.emit(emit.Event{
		Type:        emit.NodeTypeSwitched,
		OldParentID: emit.NoNode,
		NodeID:      int64(n.ID()),
		ParentID:    int64(n.Parent()),
		NodeType:    typ,
	})
}

// evaluateAll evaluates the heads of the nodes' paths, with up to
// cfg.parallelism evaluations in flight. Results are indexed like nodes.
func (s *Search[N, A]) evaluateAll(ctx context.Context, nodes []*Node[N, A]) []outcome {
	out := make([]outcome, len(nodes))
	paths := make([]Path[N, A], len(nodes))
	for i, n := range nodes {
		paths[i] = s.arena.Path(n.ID())
	}

	if s.cfg.parallelism <= 1 || len(nodes) == 1 {
		for i := range nodes {
			if ctx.Err() != nil {
				out[i] = outcome{err: ctx.Err()}
				continue
			}
			out[i] = s.evaluate(ctx, paths[i])
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.parallelism)
	for i := range nodes {
		if ctx.Err() != nil {
			out[i] = outcome{err: ctx.Err()}
			continue
		}
		g.Go(func() error {
			out[i] = s.evaluate(ctx, paths[i])
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *Search[N, A]) evaluate(ctx context.Context, p Path[N, A]) outcome {
	s.cfg.metrics.AddInflight(1)
	defer s.cfg.metrics.AddInflight(-1)

	start := time.Now()
	f, err := EvaluateWithTimeout(ctx, s.eval, p, s.cfg.evalTimeout)
	if err == nil && math.IsNaN(f) {
		err = newError(CodeEvalFailed, p.Head().ID(), nil, "evaluator returned NaN")
	}

	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrDeadEnd):
		status = "dead_end"
	case errors.Is(err, ErrEvaluationTimeout):
		status = "timeout"
	default:
		status = "error"
	}
	s.cfg.metrics.ObserveEvaluation(time.Since(start), status)
	return outcome{f: f, err: err}
}

func (s *Search[N, A]) callRoots(ctx context.Context) (roots []N, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil && ctx.Err() == nil {
			s.log.Warn("generator failed", "op", "roots", "error", err)
			err = newError(CodeGeneratorFailed, NoNode, err, "computing roots")
		}
	}()
	return s.gen.Roots(ctx)
}

func (s *Search[N, A]) callSuccessors(ctx context.Context, n *Node[N, A]) (succs []Successor[N, A], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil && ctx.Err() == nil {
			s.log.Warn("generator failed", "op", "successors", "node", n.ID(), "error", err)
			err = newError(CodeGeneratorFailed, n.ID(), err, "computing successors of %v", n.Label())
		}
	}()
	return s.gen.Successors(ctx, n.Label())
}

func (s *Search[N, A]) emit(e emit.Event) {
	s.ordinal++
	e.Ordinal = s.ordinal
	e.RunID = s.cfg.runID
	s.emitter.Emit(e)
}

func (s *Search[N, A]) count(fn func(*Stats)) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	fn(&s.stats)
}

// scoreMeta carries finite f-values in event metadata.
func scoreMeta(f float64) map[string]interface{} {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return map[string]interface{}{"f": f}
}
