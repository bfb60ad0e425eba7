package ingest

import (
	"errors"

	"github.com/claude/repwatch/internal/classifier"
)

// ErrBadPayload marks ingest failures caused by the request payload itself
// (malformed session id, session nobody created, unsupported movement).
// Handlers map it to a client error; anything else is a server-side fault.
var ErrBadPayload = errors.New("bad ingest payload")

// Result holds the outcome of a frame ingest operation.
type Result struct {
	FramesReceived int   `json:"frames_received"`
	RepsCompleted  int   `json:"reps_completed"`
	InvalidReps    int   `json:"invalid_reps"`
	EventsInserted int64 `json:"events_inserted"`
	FramesStored   int64 `json:"frames_stored,omitempty"`

	// State is the session's classifier state after the batch, for clients
	// that render live counters without a follow-up query.
	State classifier.RepState `json:"state"`

	// LastCue is the audio cue for the final rep event in the batch, if any.
	LastCue string `json:"last_cue,omitempty"`

	Message string `json:"message,omitempty"`
}
