package emit

import "sync"

// BufferedEmitter implements Emitter by storing events in memory.
//
// Events are grouped by RunID so one BufferedEmitter can record several searches.
// The stored history is what WriteHistory serializes and what the determinism
// tests compare between runs.
//
// Features:
//   - Thread-safe concurrent access
//   - Query by runID with optional filtering
//   - Filter by event type, node and ordinal range
//   - Clear events by runID or all events
//
// Warning: every event is kept in memory. For very long searches prefer a
// streaming emitter such as LogEmitter.
//
// Example usage:
//
//	history := emit.NewBufferedEmitter()
//	s, _ := search.New(gen, eval, search.WithRunID("run-001"), search.WithListener(history))
//	for sol, err := range s.Solutions(ctx) { ... }
//
//	all := history.GetHistory("run-001")
//	removed := history.GetHistoryWithFilter("run-001", emit.HistoryFilter{Type: emit.NodeRemoved})
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]Event // runID -> events
	runs   []string           // runIDs in first-seen order
}

// HistoryFilter specifies criteria for filtering a recorded history.
//
// All fields are optional. When several are set they are combined with AND logic.
type HistoryFilter struct {
	Type       Type   // Filter by event type (empty = no filter)
	NodeID     *int64 // Filter by subject node (nil = no filter)
	MinOrdinal *int64 // Minimum ordinal (nil = no filter)
	MaxOrdinal *int64 // Maximum ordinal (nil = no filter)
}

// NewBufferedEmitter creates a new BufferedEmitter.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{
		events: make(map[string][]Event),
	}
}

// Emit stores an event in the buffer.
func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.events[event.RunID]; !ok {
		b.runs = append(b.runs, event.RunID)
	}
	b.events[event.RunID] = append(b.events[event.RunID], event)
}

// Runs returns the recorded run IDs in the order they were first seen.
func (b *BufferedEmitter) Runs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, len(b.runs))
	copy(out, b.runs)
	return out
}

// GetHistory retrieves all events for a specific runID in emission order.
//
// Returns an empty slice if no events exist for the runID. The returned slice
// is a copy.
func (b *BufferedEmitter) GetHistory(runID string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	events := b.events[runID]
	result := make([]Event, len(events))
	copy(result, events)
	return result
}

// GetHistoryWithFilter retrieves the events of runID that match filter.
func (b *BufferedEmitter) GetHistoryWithFilter(runID string, filter HistoryFilter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := []Event{}
	for _, event := range b.events[runID] {
		if matchesFilter(event, filter) {
			result = append(result, event)
		}
	}
	return result
}

func matchesFilter(event Event, filter HistoryFilter) bool {
	if filter.Type != "" && event.Type != filter.Type {
		return false
	}
	if filter.NodeID != nil && event.NodeID != *filter.NodeID {
		return false
	}
	if filter.MinOrdinal != nil && event.Ordinal < *filter.MinOrdinal {
		return false
	}
	if filter.MaxOrdinal != nil && event.Ordinal > *filter.MaxOrdinal {
		return false
	}
	return true
}

// Clear removes stored events.
//
// If runID is non-empty only that run is cleared, otherwise everything is.
func (b *BufferedEmitter) Clear(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if runID == "" {
		b.events = make(map[string][]Event)
		b.runs = nil
		return
	}

	delete(b.events, runID)
	for i, r := range b.runs {
		if r == runID {
			b.runs = append(b.runs[:i], b.runs[i+1:]...)
			break
		}
	}
}
