package emit

import "sync"

// Emitter receives lifecycle events from a search instance.
//
// Emitters are registered per search instance; there is no process-wide bus.
// A search calls Emit from the goroutine that drives it, in emission order.
// Implementations shared between searches must be safe for concurrent use.
//
// Emit should not panic and should not block for long: the engine waits for
// every listener before continuing.
type Emitter interface {
	Emit(event Event)
}

// EmitterFunc adapts a plain function to the Emitter interface.
type EmitterFunc func(event Event)

// Emit implements Emitter.
func (f EmitterFunc) Emit(event Event) {
	f(event)
}

// MultiEmitter fans events out to several emitters in registration order.
type MultiEmitter struct {
	mu       sync.RWMutex
	emitters []Emitter
}

// NewMultiEmitter creates a MultiEmitter over the given emitters. Nil entries are ignored.
func NewMultiEmitter(emitters ...Emitter) *MultiEmitter {
	m := &MultiEmitter{}
	for _, e := range emitters {
		m.Add(e)
	}
	return m
}

// Add registers another emitter.
func (m *MultiEmitter) Add(e Emitter) {
	if e == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emitters = append(m.emitters, e)
}

// Len returns the number of registered emitters.
func (m *MultiEmitter) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.emitters)
}

// Emit forwards the event to every registered emitter.
func (m *MultiEmitter) Emit(event Event) {
	m.mu.RLock()
	emitters := m.emitters
	m.mu.RUnlock()

	for _, e := range emitters {
		e.Emit(event)
	}
}
