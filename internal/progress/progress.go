// Package progress provides a best-effort event stream for pipeline
// observability. Events never affect control flow: publishing is
// non-blocking and drops events when no consumer keeps up.
package progress

import "time"

// Stage identifies a pipeline phase transition.
type Stage string

const (
	StageNormalize  Stage = "normalize"
	StageAPIFetch   Stage = "api_fetch"
	StageWebFetch   Stage = "web_fetch"
	StagePersist    Stage = "persist"
	StageNarrative  Stage = "narrative"
	StageExtraction Stage = "extraction"
	StageIngestion  Stage = "ingestion"
	StageDone       Stage = "done"
)

// Event is a single progress notification.
type Event struct {
	RunID   string
	Stage   Stage
	Message string
	Count   int
	At      time.Time
}

// Milestone is the fetch-count interval at which adapters emit count events.
const Milestone = 10

// Reporter publishes events to subscribers. The zero value (or Nop) is a
// valid reporter that discards everything.
type Reporter struct {
	runID string
	ch    chan Event
}

// New creates a reporter with a buffered event channel. Consumers read from
// Events until it is closed.
func New(runID string) *Reporter {
	return &Reporter{runID: runID, ch: make(chan Event, 64)}
}

// Nop returns a reporter without subscribers.
func Nop() *Reporter {
	return &Reporter{}
}

// Events returns the event channel, or nil for a nop reporter.
func (r *Reporter) Events() <-chan Event {
	return r.ch
}

// Publish emits an event without blocking. Events are dropped when the
// buffer is full or when nobody subscribed.
func (r *Reporter) Publish(stage Stage, message string, count int) {
	if r == nil || r.ch == nil {
		return
	}
	ev := Event{RunID: r.runID, Stage: stage, Message: message, Count: count, At: time.Now()}
	select {
	case r.ch <- ev:
	default:
	}
}

// Close ends the stream. Publish after Close is not allowed.
func (r *Reporter) Close() {
	if r != nil && r.ch != nil {
		close(r.ch)
	}
}
