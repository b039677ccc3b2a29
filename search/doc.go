// Package search provides a generic engine for searching large or infinite
// implicitly defined graphs for goal paths.
//
// A problem is described by a Generator (roots, successors, goal test) and an
// Evaluator that scores paths. The best-first engine (Search) keeps the
// generated-but-unexpanded nodes in a Frontier ordered by f-value with a FIFO
// tie-break, merges paths that reach the same label according to a
// ParentDiscarding policy, and yields solutions lazily:
//
//	s, _ := search.NewAStar(gen, cost, heuristic)
//	sol, err := s.Next(ctx)
//
// A* (NewAStar), limited discrepancy search (NewLimitedDiscrepancy) and a
// randomized completion evaluator (NewRandomCompletion) are built on the same
// loop. The Monte-Carlo tree search family lives in package search/mcts.
//
// Every search reports its progress as a stream of emit.Event values to
// listeners registered on that instance. The stream can be serialized with
// emit.WriteHistory and replayed into an emit.GraphRecorder to rebuild the
// explored graph without access to the engine.
package search
