// Package classifier counts repetitions of functional-fitness movements from
// a stream of body-landmark samples and flags reps that miss a simple
// movement standard (squat depth, deadlift lockout).
//
// The classifier is a pure function: it holds no state between calls. The
// caller threads a RepState value through Classify one sample at a time and
// reacts to the returned flags. Samples for one session must arrive in order
// through a single logical stream — phase detection is sequence-dependent.
package classifier

import "fmt"

// MovementKind selects which classification rules apply to a session.
type MovementKind string

const (
	AirSquat MovementKind = "air_squat"
	WallBall MovementKind = "wall_ball"
	Deadlift MovementKind = "deadlift"
)

// Kinds returns all supported movement kinds.
func Kinds() []MovementKind {
	return []MovementKind{AirSquat, WallBall, Deadlift}
}

// ParseKind validates a movement kind string from an API payload.
func ParseKind(s string) (MovementKind, error) {
	switch MovementKind(s) {
	case AirSquat, WallBall, Deadlift:
		return MovementKind(s), nil
	}
	return "", fmt.Errorf("unknown movement kind %q", s)
}

// RepPhase is where in the movement cycle the classifier believes the
// performer to be. Unknown is the only initial value; once phase has been
// observed it never returns to Unknown.
type RepPhase string

const (
	PhaseUnknown RepPhase = "unknown"
	PhaseTop     RepPhase = "top"
	PhaseBottom  RepPhase = "bottom"
)

// PoseSample is one snapshot of landmark measurements. Coordinates use
// inverted-Y image convention: larger values are visually lower in frame.
// No smoothing or unit conversion happens here — values are consumed as-is.
type PoseSample struct {
	HipY      float64
	KneeY     float64
	ShoulderY float64
	// BarY is the tracked bar (or hand proxy) position. Only meaningful for
	// Deadlift; nil for squat-like movements.
	BarY *float64
}

// RepState is the per-session classification state. It is a value: Classify
// returns a fresh copy each call and never mutates its input.
type RepState struct {
	RepCount     int      `json:"rep_count"`
	LastPhase    RepPhase `json:"last_phase"`
	InvalidCount int      `json:"invalid_count"`
	// LastInvalidReason is transient: non-empty exactly when the most recent
	// Classify call completed a rep and found it invalid.
	LastInvalidReason string `json:"last_invalid_reason,omitempty"`
}

// NewRepState returns the initial state for a fresh session. State must be
// discarded and recreated on session reset or movement switch — states are
// not interchangeable across movement kinds.
func NewRepState() RepState {
	return RepState{LastPhase: PhaseUnknown}
}

// Thresholds, in the same units as the landmark coordinates.
const (
	// DepthThreshold is how far the hip must sit below the knee to count as
	// the bottom of a squat-like movement.
	DepthThreshold = 0.04
	// LockoutDelta is how far the bar must rise above the hip (and the
	// shoulder sit above the hip) to count as a locked-out deadlift top.
	LockoutDelta = 0.03
)

// Fault messages, one per movement family.
const (
	ReasonShallowSquat = "Squat depth likely too shallow"
	ReasonSoftLockout  = "Deadlift lockout: stand taller and open hips fully"
)

// movementRules is the per-kind rule table: phase predicates plus the
// standard check applied to the sample that triggers a top transition.
type movementRules struct {
	atTop    func(PoseSample) bool
	atBottom func(PoseSample) bool
	// repValid judges the just-completed rep from the top-transition sample
	// only — not from the minimum depth reached during the descent.
	repValid func(PoseSample) bool
	reason   string
}

func squatAtBottom(s PoseSample) bool { return s.HipY-s.KneeY > DepthThreshold }
func squatAtTop(s PoseSample) bool    { return s.HipY <= s.KneeY }

// deadliftBarY substitutes hip height when no bar is tracked. That makes
// atBottom trivially false and can suppress bottom detection — a coarse
// fallback, not an estimate.
func deadliftBarY(s PoseSample) float64 {
	if s.BarY != nil {
		return *s.BarY
	}
	return s.HipY
}

func deadliftAtBottom(s PoseSample) bool { return deadliftBarY(s) > s.HipY }
func deadliftAtTop(s PoseSample) bool    { return deadliftBarY(s) <= s.HipY-LockoutDelta }

func deadliftLockedOut(s PoseSample) bool { return s.ShoulderY <= s.HipY-LockoutDelta }

var squatRules = movementRules{
	atTop:    squatAtTop,
	atBottom: squatAtBottom,
	repValid: squatAtBottom,
	reason:   ReasonShallowSquat,
}

var deadliftRules = movementRules{
	atTop:    deadliftAtTop,
	atBottom: deadliftAtBottom,
	repValid: deadliftLockedOut,
	reason:   ReasonSoftLockout,
}

func rulesFor(kind MovementKind) movementRules {
	if kind == Deadlift {
		return deadliftRules
	}
	// AirSquat and WallBall share identical rules.
	return squatRules
}

// Classify advances the state machine by one sample.
//
// It is total: every input produces a well-defined result, including
// physically implausible samples — there is no validation layer, and a single
// noisy sample can flip phase (no hysteresis, no debounce).
//
// A rep is counted only on a Bottom→Top transition. At that instant the
// movement's standard check is re-evaluated on the triggering sample itself;
// if it fails, the rep is counted as invalid and LastInvalidReason carries
// the movement-specific message for exactly one call.
func Classify(kind MovementKind, state RepState, sample PoseSample) (next RepState, repCompleted, invalidRep bool) {
	r := rulesFor(kind)

	next = state
	next.LastInvalidReason = ""

	switch state.LastPhase {
	case PhaseUnknown:
		// atTop checked first: the hipY == kneeY boundary resolves to Top.
		if r.atTop(sample) {
			next.LastPhase = PhaseTop
		} else if r.atBottom(sample) {
			next.LastPhase = PhaseBottom
		}
	case PhaseTop:
		if r.atBottom(sample) {
			next.LastPhase = PhaseBottom
		}
	case PhaseBottom:
		if r.atTop(sample) {
			next.LastPhase = PhaseTop
			next.RepCount++
			repCompleted = true
			if !r.repValid(sample) {
				invalidRep = true
				next.InvalidCount++
				next.LastInvalidReason = r.reason
			}
		}
	}

	return next, repCompleted, invalidRep
}

// MovementInfo describes one movement's rules for catalog endpoints.
type MovementInfo struct {
	Kind        MovementKind `json:"kind"`
	Standard    string       `json:"standard"`
	FaultReason string       `json:"fault_reason"`
	Threshold   float64      `json:"threshold"`
}

// Catalog returns the rule summary for every supported movement.
func Catalog() []MovementInfo {
	return []MovementInfo{
		{Kind: AirSquat, Standard: "hip below knee by depth threshold", FaultReason: ReasonShallowSquat, Threshold: DepthThreshold},
		{Kind: WallBall, Standard: "hip below knee by depth threshold", FaultReason: ReasonShallowSquat, Threshold: DepthThreshold},
		{Kind: Deadlift, Standard: "bar and shoulder above hip by lockout delta", FaultReason: ReasonSoftLockout, Threshold: LockoutDelta},
	}
}
