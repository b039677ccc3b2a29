package search

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus metrics for search instances.
//
// Metrics exposed (all namespaced with "search_"):
//
//	expansions_total            counter    nodes expanded
//	nodes_generated_total       counter    children produced by the generator
//	solutions_total             counter    solutions yielded
//	dead_ends_total             counter    nodes recorded as dead ends
//	evaluation_failures_total   counter    reason: error, timeout
//	mcts_iterations_total       counter    MCTS selection/rollout/backup cycles
//	frontier_size               gauge      entries in the open list
//	inflight_evaluations        gauge      evaluator calls currently running
//	evaluation_latency_ms       histogram  status: success, dead_end, error, timeout
//
// One Metrics value may be shared by several searches. All methods are safe
// for concurrent use and are no-ops on a nil receiver.
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	metrics := search.NewMetrics(registry)
//	s, _ := search.New(gen, eval, search.WithMetrics(metrics))
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
type Metrics struct {
	expansions     prometheus.Counter
	generated      prometheus.Counter
	solutions      prometheus.Counter
	deadEnds       prometheus.Counter
	evalFailures   *prometheus.CounterVec
	mctsIterations prometheus.Counter

	frontierSize prometheus.Gauge
	inflight     prometheus.Gauge

	evalLatency *prometheus.HistogramVec
}

// NewMetrics creates and registers the search metrics with registry.
// A nil registry means prometheus.DefaultRegisterer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		expansions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "search",
			Name:      "expansions_total",
			Help:      "Number of nodes expanded",
		}),
		generated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "search",
			Name:      "nodes_generated_total",
			Help:      "Number of child nodes produced by the graph generator",
		}),
		solutions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "search",
			Name:      "solutions_total",
			Help:      "Number of solution paths yielded to callers",
		}),
		deadEnds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "search",
			Name:      "dead_ends_total",
			Help:      "Number of nodes recorded as dead ends",
		}),
		evalFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "search",
			Name:      "evaluation_failures_total",
			Help:      "Node evaluations that failed or timed out",
		}, []string{"reason"}),
		mctsIterations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "search",
			Name:      "mcts_iterations_total",
			Help:      "Completed Monte-Carlo tree search iterations",
		}),
		frontierSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "search",
			Name:      "frontier_size",
			Help:      "Current number of entries in the open list",
		}),
		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "search",
			Name:      "inflight_evaluations",
			Help:      "Evaluator invocations currently running",
		}),
		evalLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "search",
			Name:      "evaluation_latency_ms",
			Help:      "Node evaluation duration in milliseconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000, 5000},
		}, []string{"status"}),
	}
}

// IncExpansions counts one expansion.
func (m *Metrics) IncExpansions() {
	if m == nil {
		return
	}
	m.expansions.Inc()
}

// AddGenerated counts n generated children.
func (m *Metrics) AddGenerated(n int) {
	if m == nil {
		return
	}
	m.generated.Add(float64(n))
}

// IncSolutions counts one yielded solution.
func (m *Metrics) IncSolutions() {
	if m == nil {
		return
	}
	m.solutions.Inc()
}

// IncDeadEnds counts one dead end.
func (m *Metrics) IncDeadEnds() {
	if m == nil {
		return
	}
	m.deadEnds.Inc()
}

// IncEvaluationFailures counts a failed evaluation ("error" or "timeout").
func (m *Metrics) IncEvaluationFailures(reason string) {
	if m == nil {
		return
	}
	m.evalFailures.WithLabelValues(reason).Inc()
}

// IncMCTSIterations counts one MCTS iteration.
func (m *Metrics) IncMCTSIterations() {
	if m == nil {
		return
	}
	m.mctsIterations.Inc()
}

// SetFrontierSize records the current open list size.
func (m *Metrics) SetFrontierSize(n int) {
	if m == nil {
		return
	}
	m.frontierSize.Set(float64(n))
}

// AddInflight adjusts the number of running evaluations by delta.
func (m *Metrics) AddInflight(delta int) {
	if m == nil {
		return
	}
	m.inflight.Add(float64(delta))
}

// ObserveEvaluation records the latency of one evaluation.
func (m *Metrics) ObserveEvaluation(d time.Duration, status string) {
	if m == nil {
		return
	}
	m.evalLatency.WithLabelValues(status).Observe(float64(d.Microseconds()) / 1000)
}
