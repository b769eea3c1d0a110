package testutil

import (
	"fmt"
	"sync"
	"time"
)

// RecordedEvent is one runner evidence event captured in memory.
type RecordedEvent struct {
	Kind      string // "action_started", "wait_observed", "capture", "action_finished"
	Action    string
	Mode      string
	Satisfied bool
	Elapsed   time.Duration
	Artifact  string
	Err       error
}

// CapturingRecorder implements the runner's Recorder contract in memory.
// Tests assert on the ordered event stream without a journal database.
type CapturingRecorder struct {
	mu     sync.Mutex
	events []RecordedEvent
	tokens int
}

// NewCapturingRecorder creates an empty recorder.
func NewCapturingRecorder() *CapturingRecorder {
	return &CapturingRecorder{}
}

// ActionStarted records the start and hands out a deterministic token.
func (r *CapturingRecorder) ActionStarted(action string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens++
	r.events = append(r.events, RecordedEvent{Kind: "action_started", Action: action})
	return fmt.Sprintf("token-%04d", r.tokens)
}

// WaitObserved records a wait outcome.
func (r *CapturingRecorder) WaitObserved(action, _ string, mode string, satisfied bool, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, RecordedEvent{
		Kind:      "wait_observed",
		Action:    action,
		Mode:      mode,
		Satisfied: satisfied,
		Elapsed:   elapsed,
	})
}

// CaptureRecorded records a capture result.
func (r *CapturingRecorder) CaptureRecorded(action, _ string, artifact string, captureErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, RecordedEvent{
		Kind:     "capture",
		Action:   action,
		Artifact: artifact,
		Err:      captureErr,
	})
}

// ActionFinished records the action's terminal result.
func (r *CapturingRecorder) ActionFinished(action, _ string, actionErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, RecordedEvent{
		Kind:      "action_finished",
		Action:    action,
		Satisfied: actionErr == nil,
		Err:       actionErr,
	})
}

// Events returns a snapshot of the recorded events in order.
func (r *CapturingRecorder) Events() []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedEvent, len(r.events))
	copy(out, r.events)
	return out
}

// ByKind returns the recorded events of one kind, in order.
func (r *CapturingRecorder) ByKind(kind string) []RecordedEvent {
	var out []RecordedEvent
	for _, ev := range r.Events() {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
