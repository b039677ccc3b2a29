package emit

// NullEmitter implements Emitter by discarding all events.
//
// Use it where an Emitter is required but event handling is not wanted.
// It is safe for concurrent use and has no overhead.
type NullEmitter struct{}

// NewNullEmitter creates a new NullEmitter.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

// Emit discards the event.
func (n *NullEmitter) Emit(event Event) {}
