package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// LogEmitter implements Emitter by writing events to a writer.
//
// Supports two output modes:
//   - Text mode (default): Human-readable format with key=value pairs
//   - JSON mode: one Record per line, readable back with ReadHistory
//
// Example text output:
//
//	[node_added] ordinal=3 node=2 parent=0 type=open label="b" meta={"f":1.5}
//
// Example JSON output:
//
//	{"type":"node_added","ordinal":3,"payload":{"node":2,"parent":0,"old_parent":0,"node_type":"open","label":"b","meta":{"f":1.5}}}
//
// Usage:
//
//	// Text output to stdout
//	emitter := emit.NewLogEmitter(os.Stdout, false)
//
//	// Replayable history file
//	f, _ := os.Create("events.jsonl")
//	defer f.Close()
//	emitter := emit.NewLogEmitter(f, true)
type LogEmitter struct {
	mu       sync.Mutex
	writer   io.Writer
	jsonMode bool
	err      error
}

// NewLogEmitter creates a new LogEmitter. A nil writer defaults to os.Stdout.
func NewLogEmitter(writer io.Writer, jsonMode bool) *LogEmitter {
	if writer == nil {
		writer = os.Stdout
	}
	return &LogEmitter{
		writer:   writer,
		jsonMode: jsonMode,
	}
}

// Emit writes an event to the configured writer.
//
// Write errors do not stop the search; the first one is kept and returned by Err.
func (l *LogEmitter) Emit(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var err error
	if l.jsonMode {
		err = WriteRecord(l.writer, event)
	} else {
		err = l.emitText(event)
	}
	if err != nil && l.err == nil {
		l.err = err
	}
}

// Err returns the first write error encountered, if any.
func (l *LogEmitter) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *LogEmitter) emitText(event Event) error {
	line := fmt.Sprintf("[%s] ordinal=%d node=%d", event.Type, event.Ordinal, event.NodeID)

	switch event.Type {
	case NodeAdded:
		line += fmt.Sprintf(" parent=%d type=%s label=%q", event.ParentID, event.NodeType, event.Label)
	case NodeRemoved:
		line += fmt.Sprintf(" parent=%d reason=%s label=%q", event.ParentID, event.Reason, event.Label)
	case SolutionFound:
		line += fmt.Sprintf(" parent=%d label=%q", event.ParentID, event.Label)
	case NodeTypeSwitched:
		line += fmt.Sprintf(" type=%s", event.NodeType)
	case NodeParentSwitched:
		line += fmt.Sprintf(" old_parent=%d parent=%d", event.OldParentID, event.ParentID)
	case GraphInitialized:
		line += fmt.Sprintf(" label=%q", event.Label)
	}

	if len(event.Meta) > 0 {
		metaJSON, err := json.Marshal(event.Meta)
		if err == nil {
			line += fmt.Sprintf(" meta=%s", metaJSON)
		} else {
			line += fmt.Sprintf(" meta=%v", event.Meta)
		}
	}

	_, err := fmt.Fprintln(l.writer, line)
	return err
}
