// Package mcts implements the Monte-Carlo tree search family (UCT and
// single-player UCT) on the node and path model of package search.
//
// Instead of a frontier, the search repeats selection, expansion, rollout and
// backup cycles. Selection walks the tree with a TreePolicy over visit
// statistics, expansion adds one untried successor, the rollout completes the
// path with a DefaultPolicy until a goal, a dead end or the horizon, and the
// backup step propagates the reward (the negated cost of the completed path)
// to every node on the selected path. A rollout that reaches no goal backs up
// the negated sum of the worst goal cost seen so far and the failure cost, so
// it never scores better than one that did.
//
// Every distinct goal path reached by a rollout is yielded once through the
// same pull API as the best-first engine.
package mcts

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/searchgraph-go/search"
	"github.com/dshills/searchgraph-go/search/emit"
)

type treeNode[N comparable, A any] struct {
	id        search.NodeID
	stats     Stats
	children  []*treeNode[N, A]
	untried   []search.Successor[N, A]
	generated bool
	goal      bool
	exhausted bool
}

// Search is a Monte-Carlo tree search over gen. Completed rollout paths are
// scored by eval; lower cost means higher reward.
type Search[N comparable, A any] struct {
	gen  search.Generator[N, A]
	eval search.Evaluator[N, A]
	cfg  config
	log  *slog.Logger

	arena   *search.Arena[N, A]
	emitter *emit.MultiEmitter
	rng     *rand.Rand
	top     *treeNode[N, A]

	mu         sync.Mutex
	ordinal    int64
	iterations int
	deadline   time.Time
	queue      []search.Solution[N, A]
	pending    *search.Solution[N, A]
	seen       map[string]struct{}
	solutions  int
	worst      float64
	best       *search.Solution[N, A]
	err        error

	state    atomic.Int32
	canceled atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc
}

var _ search.Searcher[int, int] = (*Search[int, int])(nil)

// New creates a Monte-Carlo tree search.
//
// Example:
//
//	s, err := mcts.New(gen, search.Depth[int, string](),
//	    mcts.WithTreePolicy(mcts.SPUCT{C: 0.5, D: 10000}),
//	    mcts.WithMaxIterations(5000),
//	    mcts.WithSeed(42),
//	)
func New[N comparable, A any](gen search.Generator[N, A], eval search.Evaluator[N, A], opts ...Option) (*Search[N, A], error) {
	if gen == nil {
		return nil, invalid("generator must not be nil")
	}
	if eval == nil {
		return nil, invalid("evaluator must not be nil")
	}
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Search[N, A]{
		gen:     gen,
		eval:    eval,
		cfg:     cfg,
		log:     cfg.logger.With("component", "mcts", "run_id", cfg.runID),
		arena:   search.NewArena[N, A](),
		emitter: emit.NewMultiEmitter(cfg.listeners...),
		rng:     rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x5851f42d4c957f2d)),
		seen:    make(map[string]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.state.Store(int32(search.StateCreated))
	return s, nil
}

// RegisterListener adds an event listener.
func (s *Search[N, A]) RegisterListener(l emit.Emitter) { s.emitter.Add(l) }

// State returns the lifecycle state.
func (s *Search[N, A]) State() search.State { return search.State(s.state.Load()) }

// Cancel requests cooperative shutdown. It is observed between iterations and
// by in-flight evaluations.
func (s *Search[N, A]) Cancel() {
	if s.canceled.CompareAndSwap(false, true) {
		s.cancel()
	}
}

// Err returns the error that ended the search, nil after normal exhaustion.
func (s *Search[N, A]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(s.err, search.ErrExhausted) {
		return nil
	}
	return s.err
}

// Iterations returns the number of completed iterations.
func (s *Search[N, A]) Iterations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.iterations
}

// TreeSize returns the number of nodes in the search tree.
func (s *Search[N, A]) TreeSize() int { return s.arena.Len() }

// Best returns the cheapest solution found so far.
func (s *Search[N, A]) Best() (search.Solution[N, A], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.best == nil {
		return search.Solution[N, A]{}, false
	}
	return *s.best, true
}

// RootStats returns the visit statistics of the roots in generation order.
func (s *Search[N, A]) RootStats() []Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.top == nil {
		return nil
	}
	out := make([]Stats, len(s.top.children))
	for i, c := range s.top.children {
		out[i] = c.stats
	}
	return out
}

// Next runs iterations until a new goal path is found and returns it.
func (s *Search[N, A]) Next(ctx context.Context) (search.Solution[N, A], error) {
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
func (s *Search[N, A]) Solutions(ctx context.Context) iter.Seq2[search.Solution[N, A], error] {
	return func(yield func(search.Solution[N, A], error) bool) {
		for {
			sol, err := s.Next(ctx)
			if err != nil {
				if !errors.Is(err, search.ErrExhausted) {
					yield(search.Solution[N, A]{}, err)
				}
				return
			}
			if !yield(sol, nil) {
				return
			}
		}
	}
}

func (s *Search[N, A]) next(ctx context.Context) (search.Solution[N, A], error) {
	var zero search.Solution[N, A]
	if s.err != nil {
		return zero, s.err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	if err := s.interrupted(ctx); err != nil {
		return zero, s.finish(err)
	}
	if s.State() == search.StateCreated {
		if err := s.activate(runCtx); err != nil {
			return zero, s.finish(err)
		}
	}

	for {
		if len(s.queue) > 0 {
			sol := s.queue[0]
			s.queue = s.queue[1:]
			return sol, nil
		}
		if err := s.interrupted(ctx); err != nil {
			return zero, s.finish(err)
		}
		if s.top.exhausted {
			s.log.Debug("search tree exhausted", "iterations", s.iterations)
			return zero, s.finish(search.ErrExhausted)
		}
		if s.iterations >= s.cfg.maxIterations {
			return zero, s.finish(search.ErrExhausted)
		}
		if !s.deadline.IsZero() && !time.Now().Before(s.deadline) {
			s.log.Debug("time budget spent", "iterations", s.iterations)
			return zero, s.finish(search.ErrExhausted)
		}
		if err := s.iterate(runCtx); err != nil {
			if ierr := s.interrupted(ctx); ierr != nil {
				err = ierr
			}
			return zero, s.finish(err)
		}
	}
}

func (s *Search[N, A]) interrupted(ctx context.Context) error {
	if s.canceled.Load() {
		return &search.SearchError{Message: "search canceled", Code: search.CodeCanceled, NodeID: search.NoNode, Cause: context.Canceled}
	}
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &search.SearchError{Message: "search deadline exceeded", Code: search.CodeSearchTimeout, NodeID: search.NoNode, Cause: err}
		}
		return &search.SearchError{Message: "search context canceled", Code: search.CodeCanceled, NodeID: search.NoNode, Cause: err}
	}
	return nil
}

func (s *Search[N, A]) finish(err error) error {
	if s.err != nil {
		return s.err
	}
	s.err = err

	state := search.StateFailed
	switch {
	case errors.Is(err, search.ErrExhausted):
		state = search.StateTerminated
	case errors.Is(err, search.ErrCanceled):
		state = search.StateCanceled
	}
	s.state.Store(int32(state))
	s.cancel()
	if state == search.StateFailed {
		s.log.Warn("search failed", "error", err, "iterations", s.iterations)
	} else {
		s.log.Debug("search finished", "state", state.String(), "iterations", s.iterations, "solutions", s.solutions)
	}
	return err
}

func (s *Search[N, A]) activate(ctx context.Context) error {
	s.state.Store(int32(search.StateActive))
	if s.cfg.timeout > 0 {
		s.deadline = time.Now().Add(s.cfg.timeout)
	}

	labels, err := s.roots(ctx)
	if err != nil {
		return err
	}
	if len(labels) == 0 {
		return &search.SearchError{Message: "generator returned no roots", Code: search.CodeGeneratorFailed, NodeID: search.NoNode}
	}

	s.top = &treeNode[N, A]{id: search.NoNode, generated: true}
	var zeroEdge A
	for _, label := range labels {
		n := s.arena.Add(label, search.NoNode, zeroEdge)
		s.emit(emit.Event{
			Type:        emit.GraphInitialized,
			NodeID:      int64(n.ID()),
			ParentID:    emit.NoNode,
			OldParentID: emit.NoNode,
			Label:       fmt.Sprint(label),
		})
		s.top.children = append(s.top.children, s.addNode(n))
	}
	s.log.Debug("search activated", "roots", len(labels), "max_iterations", s.cfg.maxIterations)
	return nil
}

// addNode wraps an arena node in a tree node and announces it.
func (s *Search[N, A]) addNode(n *search.Node[N, A]) *treeNode[N, A] {
	tn := &treeNode[N, A]{id: n.ID(), goal: search.IsGoalPath(s.gen, s.arena.Path(n.ID()))}
	typ := emit.TypeOpen
	if tn.goal {
		typ = emit.TypeGoal
	}
	s.emit(emit.Event{
		Type:        emit.NodeAdded,
		NodeID:      int64(n.ID()),
		ParentID:    int64(n.Parent()),
		OldParentID: emit.NoNode,
		NodeType:    typ,
		Label:       fmt.Sprint(n.Label()),
	})
	return tn
}

// iterate performs one selection, expansion, rollout and backup cycle.
func (s *Search[N, A]) iterate(ctx context.Context) error {
	s.iterations++
	s.cfg.metrics.IncMCTSIterations()

	path := []*treeNode[N, A]{s.top}
	cur := s.top
	for !cur.goal {
		if !cur.generated {
			node := s.arena.Get(cur.id)
			succs, err := s.successors(ctx, node)
			if err != nil {
				return err
			}
			cur.generated = true
			cur.untried = succs
			s.cfg.metrics.IncExpansions()
			s.cfg.metrics.AddGenerated(len(succs))
		}

		if len(cur.untried) > 0 {
			i := s.rng.IntN(len(cur.untried))
			sc := cur.untried[i]
			cur.untried = append(cur.untried[:i], cur.untried[i+1:]...)
			child := s.addNode(s.arena.Add(sc.Node, cur.id, sc.Edge))
			cur.children = append(cur.children, child)
			path = append(path, child)
			cur = child
			break
		}

		live := make([]*treeNode[N, A], 0, len(cur.children))
		stats := make([]Stats, 0, len(cur.children))
		for _, c := range cur.children {
			if !c.exhausted {
				live = append(live, c)
				stats = append(stats, c.stats)
			}
		}
		if len(live) == 0 {
			if len(cur.children) == 0 && cur != s.top {
				s.cfg.metrics.IncDeadEnds()
				s.switchType(cur, emit.TypeDeadEnd)
			}
			cur.exhausted = true
			break
		}
		cur = live[s.cfg.treePolicy.Select(cur.stats, stats)]
		path = append(path, cur)
	}

	leaf := path[len(path)-1]
	var (
		cost float64
		ok   bool
	)
	if leaf != s.top && !leaf.exhausted {
		var err error
		if cost, ok, err = s.rollout(ctx, leaf); err != nil {
			return err
		}
	}
	reward := -(s.worst + s.cfg.failureCost)
	if ok {
		reward = -cost
		s.worst = max(s.worst, cost)
	}
	if leaf.goal {
		leaf.exhausted = true
	}

	ptrs := make([]*Stats, len(path))
	for i, tn := range path {
		ptrs[i] = &tn.stats
	}
	s.cfg.backup.Propagate(ptrs, reward)
	s.markExhausted(path)
	return nil
}

// markExhausted walks the selected path bottom-up and marks nodes whose
// subtree has been fully explored.
func (s *Search[N, A]) markExhausted(path []*treeNode[N, A]) {
	for i := len(path) - 1; i >= 0; i-- {
		tn := path[i]
		if tn.exhausted {
			continue
		}
		if !tn.generated || len(tn.untried) > 0 {
			return
		}
		for _, c := range tn.children {
			if !c.exhausted {
				return
			}
		}
		tn.exhausted = true
		if tn != s.top {
			s.switchType(tn, emit.TypeClosed)
		}
	}
}

// rollout completes the leaf's path with the default policy. ok is false when
// the rollout failed to reach a goal or the goal path could not be scored.
func (s *Search[N, A]) rollout(ctx context.Context, leaf *treeNode[N, A]) (cost float64, ok bool, err error) {
	p := s.arena.Path(leaf.id)
	for {
		head := p.Head()
		if search.IsGoalPath(s.gen, p) {
			break
		}
		depth := p.Len() - 1
		if depth >= s.cfg.horizon {
			return 0, false, nil
		}
		succs, err := s.successors(ctx, head)
		if err != nil {
			return 0, false, err
		}
		if len(succs) == 0 {
			return 0, false, nil
		}
		sc := succs[s.cfg.defaultPolicy.Choose(s.rng, depth, len(succs))]
		p = p.Extend(sc.Edge, sc.Node)
	}

	start := time.Now()
	cost, err = search.EvaluateWithTimeout(ctx, s.eval, p, s.cfg.evalTimeout)
	switch {
	case err == nil:
		s.cfg.metrics.ObserveEvaluation(time.Since(start), "success")
	case ctx.Err() != nil:
		return 0, false, ctx.Err()
	case errors.Is(err, search.ErrDeadEnd):
		s.cfg.metrics.ObserveEvaluation(time.Since(start), "dead_end")
		return 0, false, nil
	default:
		reason := "error"
		if errors.Is(err, search.ErrEvaluationTimeout) {
			reason = "timeout"
		}
		s.cfg.metrics.ObserveEvaluation(time.Since(start), reason)
		s.cfg.metrics.IncEvaluationFailures(reason)
		s.log.Debug("rollout evaluation failed", "node", leaf.id, "error", err)
		return 0, false, nil
	}

	s.record(leaf, p, cost)
	return cost, true, nil
}

// record queues a goal path unless it was found before.
func (s *Search[N, A]) record(leaf *treeNode[N, A], p search.Path[N, A], cost float64) {
	key := fmt.Sprintf("%v|%v", p.Labels(), p.Edges())
	if _, dup := s.seen[key]; dup {
		return
	}
	s.seen[key] = struct{}{}
	s.solutions++

	sol := search.Solution[N, A]{Path: p, Score: cost, Ordinal: s.solutions}
	s.queue = append(s.queue, sol)
	if s.best == nil || cost < s.best.Score {
		b := sol
		s.best = &b
	}
	s.cfg.metrics.IncSolutions()
	s.emit(emit.Event{
		Type:        emit.SolutionFound,
		NodeID:      int64(leaf.id),
		ParentID:    int64(s.arena.Get(leaf.id).Parent()),
		OldParentID: emit.NoNode,
		Label:       fmt.Sprint(p.Head().Label()),
		Meta:        map[string]interface{}{"f": cost, "depth": float64(p.Len() - 1)},
	})
}

func (s *Search[N, A]) switchType(tn *treeNode[N, A], typ string) {
	n := s.arena.Get(tn.id)
	s.emit(emit.Event{
		Type:        emit.NodeTypeSwitched,
		NodeID:      int64(tn.id),
		ParentID:    int64(n.Parent()),
		OldParentID: emit.NoNode,
		NodeType:    typ,
	})
}

func (s *Search[N, A]) roots(ctx context.Context) (roots []N, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil && ctx.Err() == nil {
			err = &search.SearchError{Message: "computing roots", Code: search.CodeGeneratorFailed, NodeID: search.NoNode, Cause: err}
		}
	}()
	return s.gen.Roots(ctx)
}

func (s *Search[N, A]) successors(ctx context.Context, n *search.Node[N, A]) (succs []search.Successor[N, A], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil && ctx.Err() == nil {
			err = &search.SearchError{
				Message: fmt.Sprintf("computing successors of %v", n.Label()),
				Code:    search.CodeGeneratorFailed,
				NodeID:  n.ID(),
				Cause:   err,
			}
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
