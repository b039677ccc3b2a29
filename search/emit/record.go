package emit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrCorruptHistory is returned when a serialized history cannot be decoded or
// its ordinals are not strictly increasing.
var ErrCorruptHistory = errors.New("corrupt event history")

// Record is the serialized form of an Event: (eventType, timestamp-ordinal, payload).
//
// Records deliberately omit the RunID and any wall-clock time, so two searches
// that emit the same events produce byte-identical histories.
type Record struct {
	Type    Type            `json:"type"`
	Ordinal int64           `json:"ordinal"`
	Payload json.RawMessage `json:"payload"`
}

// payload holds the type-specific fields of an event. Field order is fixed so
// encoding is stable; encoding/json sorts Meta keys.
type payload struct {
	Node      int64                  `json:"node"`
	Parent    int64                  `json:"parent"`
	OldParent int64                  `json:"old_parent"`
	NodeType  string                 `json:"node_type,omitempty"`
	Label     string                 `json:"label,omitempty"`
	Reason    string                 `json:"reason,omitempty"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
}

// ToRecord converts an event into its serialized record.
func ToRecord(event Event) (Record, error) {
	data, err := json.Marshal(payload{
		Node:      event.NodeID,
		Parent:    event.ParentID,
		OldParent: event.OldParentID,
		NodeType:  event.NodeType,
		Label:     event.Label,
		Reason:    event.Reason,
		Meta:      event.Meta,
	})
	if err != nil {
		return Record{}, fmt.Errorf("encode %s payload: %w", event.Type, err)
	}
	return Record{Type: event.Type, Ordinal: event.Ordinal, Payload: data}, nil
}

// FromRecord converts a record back into an event. RunID is left empty.
//
// Numeric Meta values decode as float64, as with any JSON round trip.
func FromRecord(rec Record) (Event, error) {
	var p payload
	if err := json.Unmarshal(rec.Payload, &p); err != nil {
		return Event{}, fmt.Errorf("%w: ordinal %d: %v", ErrCorruptHistory, rec.Ordinal, err)
	}
	return Event{
		Type:        rec.Type,
		Ordinal:     rec.Ordinal,
		NodeID:      p.Node,
		ParentID:    p.Parent,
		OldParentID: p.OldParent,
		NodeType:    p.NodeType,
		Label:       p.Label,
		Reason:      p.Reason,
		Meta:        p.Meta,
	}, nil
}

// WriteRecord writes one event as a single JSON line.
func WriteRecord(w io.Writer, event Event) error {
	rec, err := ToRecord(event)
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %d: %w", event.Ordinal, err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteHistory serializes events as JSON lines (one Record per line).
//
// Example:
//
//	f, _ := os.Create("events.jsonl")
//	defer f.Close()
//	err := emit.WriteHistory(f, history.GetHistory(runID))
func WriteHistory(w io.Writer, events []Event) error {
	bw := bufio.NewWriter(w)
	for _, event := range events {
		if err := WriteRecord(bw, event); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadHistory decodes a JSON-lines history written by WriteHistory or by a
// LogEmitter in JSON mode. Blank lines are skipped. Ordinals must be strictly
// increasing.
func ReadHistory(r io.Reader) ([]Event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		events []Event
		last   int64
		line   int
	)
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCorruptHistory, line, err)
		}
		if rec.Ordinal <= last {
			return nil, fmt.Errorf("%w: line %d: ordinal %d after %d", ErrCorruptHistory, line, rec.Ordinal, last)
		}
		last = rec.Ordinal

		event, err := FromRecord(rec)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return events, nil
}

// Replay re-emits events, in order, to the given emitter. Applying a decoded
// history to a fresh GraphRecorder reconstructs the graph of the original search.
func Replay(events []Event, e Emitter) {
	for _, event := range events {
		e.Emit(event)
	}
}
