// Package session owns live classification state for active movement
// sessions. A Tracker is the serialization point the classifier requires:
// samples for one session must all flow through one Tracker, in order.
package session

import (
	"sync"
	"time"

	"github.com/claude/repwatch/internal/classifier"
)

// Cue tells the consumer which audio feedback to play for an outcome.
type Cue string

const (
	CueNone Cue = ""
	// CueRepTone is the brief high-pitched tone for a completed rep.
	CueRepTone Cue = "rep_tone"
	// CueFaultTone is the longer lower tone for a standard violation.
	CueFaultTone Cue = "fault_tone"
)

// RepEvent records one completed repetition.
type RepEvent struct {
	Time      time.Time `json:"time"`
	RepNumber int       `json:"rep_number"`
	Valid     bool      `json:"valid"`
	Reason    string    `json:"reason,omitempty"`
}

// Outcome is the result of processing one sample.
type Outcome struct {
	State        classifier.RepState `json:"state"`
	RepCompleted bool                `json:"rep_completed"`
	InvalidRep   bool                `json:"invalid_rep"`
	Cue          Cue                 `json:"cue,omitempty"`
	// Event is set only when a rep completed on this sample.
	Event *RepEvent `json:"event,omitempty"`
}

// Snapshot is a copy of a tracker's state for safe external use.
type Snapshot struct {
	Kind      classifier.MovementKind `json:"movement"`
	State     classifier.RepState     `json:"state"`
	StartedAt time.Time               `json:"started_at"`
	Events    []RepEvent              `json:"events"`
}

// Tracker threads RepState through the classifier for one session.
type Tracker struct {
	mu        sync.Mutex
	kind      classifier.MovementKind
	state     classifier.RepState
	startedAt time.Time
	events    []RepEvent
}

// NewTracker creates a tracker with fresh initial state for the movement.
func NewTracker(kind classifier.MovementKind) *Tracker {
	return &Tracker{
		kind:      kind,
		state:     classifier.NewRepState(),
		startedAt: time.Now(),
	}
}

// Process classifies one sample, replacing the held state with the returned
// value. The sample timestamp comes from the sample source, not this host.
func (t *Tracker) Process(at time.Time, sample classifier.PoseSample) Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()

	next, completed, invalid := classifier.Classify(t.kind, t.state, sample)
	t.state = next

	out := Outcome{State: next, RepCompleted: completed, InvalidRep: invalid}
	if completed {
		out.Cue = CueRepTone
		if invalid {
			out.Cue = CueFaultTone
		}
		ev := RepEvent{
			Time:      at,
			RepNumber: next.RepCount,
			Valid:     !invalid,
			Reason:    next.LastInvalidReason,
		}
		t.events = append(t.events, ev)
		out.Event = &ev
	}
	return out
}

// Movement returns the tracker's movement kind.
func (t *Tracker) Movement() classifier.MovementKind {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.kind
}

// Reset discards all state and starts the session over.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = classifier.NewRepState()
	t.events = nil
	t.startedAt = time.Now()
}

// SwitchMovement changes the movement kind. State is never carried across a
// kind switch — phase semantics differ between movements.
func (t *Tracker) SwitchMovement(kind classifier.MovementKind) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.kind = kind
	t.state = classifier.NewRepState()
	t.events = nil
	t.startedAt = time.Now()
}

// Snapshot returns a copy of the current session state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	events := make([]RepEvent, len(t.events))
	copy(events, t.events)
	return Snapshot{
		Kind:      t.kind,
		State:     t.state,
		StartedAt: t.startedAt,
		Events:    events,
	}
}
