package session

import (
	"testing"
	"time"

	"github.com/claude/repwatch/internal/classifier"
	"github.com/google/uuid"
)

var squatCycle = []classifier.PoseSample{
	{HipY: 0.3, KneeY: 0.5},
	{HipY: 0.6, KneeY: 0.5},
	{HipY: 0.3, KneeY: 0.5},
}

// TestTrackerRecordsEvents verifies that a full squat cycle produces one rep
// event carrying the sample-source timestamp and the fault verdict.
func TestTrackerRecordsEvents(t *testing.T) {
	tr := NewTracker(classifier.AirSquat)
	at := time.Date(2026, 8, 20, 17, 30, 0, 0, time.UTC)

	var last Outcome
	for i, s := range squatCycle {
		last = tr.Process(at.Add(time.Duration(i)*100*time.Millisecond), s)
	}

	if !last.RepCompleted {
		t.Fatal("expected rep on final sample")
	}
	if last.Event == nil {
		t.Fatal("expected rep event")
	}
	if last.Event.RepNumber != 1 {
		t.Errorf("rep number = %d, want 1", last.Event.RepNumber)
	}
	if last.Event.Valid {
		t.Error("squat top-frame re-check should flag the rep")
	}
	if last.Event.Reason != classifier.ReasonShallowSquat {
		t.Errorf("reason = %q, want %q", last.Event.Reason, classifier.ReasonShallowSquat)
	}

	snap := tr.Snapshot()
	if len(snap.Events) != 1 {
		t.Fatalf("snapshot events = %d, want 1", len(snap.Events))
	}
	if snap.State.RepCount != 1 {
		t.Errorf("snapshot rep count = %d, want 1", snap.State.RepCount)
	}
}

// TestTrackerCues: valid reps get the short high tone, faulted reps the
// longer low tone, non-event samples no cue at all.
func TestTrackerCues(t *testing.T) {
	tr := NewTracker(classifier.AirSquat)
	now := time.Now()

	out := tr.Process(now, squatCycle[0])
	if out.Cue != CueNone {
		t.Errorf("cue on phase update = %q, want none", out.Cue)
	}
	tr.Process(now, squatCycle[1])
	out = tr.Process(now, squatCycle[2])
	if out.Cue != CueFaultTone {
		t.Errorf("cue on faulted rep = %q, want %q", out.Cue, CueFaultTone)
	}

	// A deadlift with clean lockout gets the rep tone.
	bar := func(v float64) *float64 { return &v }
	dl := NewTracker(classifier.Deadlift)
	dl.Process(now, classifier.PoseSample{HipY: 0.5, ShoulderY: 0.2, BarY: bar(0.4)})
	dl.Process(now, classifier.PoseSample{HipY: 0.5, ShoulderY: 0.35, BarY: bar(0.8)})
	out = dl.Process(now, classifier.PoseSample{HipY: 0.5, ShoulderY: 0.2, BarY: bar(0.45)})
	if out.Cue != CueRepTone {
		t.Errorf("cue on valid rep = %q, want %q", out.Cue, CueRepTone)
	}
}

// TestTrackerReset: counters, events, and phase all return to the initial
// values.
func TestTrackerReset(t *testing.T) {
	tr := NewTracker(classifier.AirSquat)
	now := time.Now()
	for _, s := range squatCycle {
		tr.Process(now, s)
	}

	tr.Reset()
	snap := tr.Snapshot()
	if snap.State.RepCount != 0 || snap.State.InvalidCount != 0 {
		t.Errorf("counts after reset = %d/%d, want 0/0", snap.State.RepCount, snap.State.InvalidCount)
	}
	if snap.State.LastPhase != classifier.PhaseUnknown {
		t.Errorf("phase after reset = %q, want unknown", snap.State.LastPhase)
	}
	if len(snap.Events) != 0 {
		t.Errorf("events after reset = %d, want 0", len(snap.Events))
	}
}

// TestSwitchMovementDiscardsState: old-kind state never feeds the new
// kind's classifier.
func TestSwitchMovementDiscardsState(t *testing.T) {
	tr := NewTracker(classifier.AirSquat)
	now := time.Now()
	for _, s := range squatCycle {
		tr.Process(now, s)
	}

	tr.SwitchMovement(classifier.Deadlift)
	snap := tr.Snapshot()
	if snap.Kind != classifier.Deadlift {
		t.Errorf("kind = %q, want deadlift", snap.Kind)
	}
	if snap.State != classifier.NewRepState() {
		t.Errorf("state after switch = %+v, want fresh", snap.State)
	}
	if len(snap.Events) != 0 {
		t.Errorf("events after switch = %d, want 0", len(snap.Events))
	}
}

// TestRegistryObtain: same ID yields the same tracker; unknown IDs create
// fresh ones; Drop releases.
func TestRegistryObtain(t *testing.T) {
	reg := NewRegistry()
	id := uuid.New()

	a := reg.Obtain(id, classifier.WallBall)
	b := reg.Obtain(id, classifier.WallBall)
	if a != b {
		t.Error("Obtain returned distinct trackers for one session")
	}

	if _, ok := reg.Lookup(uuid.New()); ok {
		t.Error("Lookup found tracker for unknown session")
	}

	reg.Drop(id)
	if _, ok := reg.Lookup(id); ok {
		t.Error("tracker survived Drop")
	}
}
