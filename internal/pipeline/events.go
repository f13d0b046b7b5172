package pipeline

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/mull-cli/mull/internal/decision"
)

// EventType categorizes pipeline progress events.
type EventType string

const (
	// EventStageStart is emitted when a stage begins.
	EventStageStart EventType = "stage_start"
	// EventStageDelta carries a partial streamed chunk of stage output.
	EventStageDelta EventType = "stage_delta"
	// EventStageDone is emitted when a stage's delta has been merged.
	EventStageDone EventType = "stage_done"
	// EventStageError is emitted when a stage fails terminally.
	EventStageError EventType = "stage_error"
)

// Event is one progress update from a pipeline run. For EventStageDelta the
// Text field holds the streamed chunk; for EventStageDone it holds the full
// raw stage output; for EventStageError the failure message.
type Event struct {
	Stage decision.StageName
	Type  EventType
	Text  string
}

// emitter delivers progress events to the subscriber without ever wedging
// the run: a full channel drops the event after a short grace period.
type emitter struct {
	events       chan Event
	droppedCount atomic.Uint64
}

func newEmitter(bufferSize int) *emitter {
	return &emitter{events: make(chan Event, bufferSize)}
}

func (e *emitter) emit(event Event) {
	select {
	case e.events <- event:
		return
	default:
	}

	// Give the receiver a moment to drain before dropping.
	select {
	case e.events <- event:
	case <-time.After(100 * time.Millisecond):
		count := e.droppedCount.Add(1)
		if count%10 == 1 {
			log.Printf("[pipeline] WARNING: event channel full, dropped event (total dropped: %d): type=%s", count, event.Type)
		}
	}
}

func (e *emitter) close() {
	close(e.events)
}
