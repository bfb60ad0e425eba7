package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionRow is a row ready for insertion into the sessions table.
type SessionRow struct {
	ID           uuid.UUID  `json:"id"`
	Movement     string     `json:"movement"`
	Device       string     `json:"device,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	RepCount     int        `json:"rep_count"`
	InvalidCount int        `json:"invalid_count"`
	LastPhase    string     `json:"last_phase"`
}

// RepEventRow is a row ready for insertion into the rep_events table.
type RepEventRow struct {
	Time      time.Time `json:"time"`
	SessionID uuid.UUID `json:"session_id"`
	RepNumber int       `json:"rep_number"`
	Valid     bool      `json:"valid"`
	Reason    *string   `json:"reason,omitempty"`
}

// FrameRow is a row for the landmark_frames table (raw frame retention,
// enabled per config).
type FrameRow struct {
	Time      time.Time `json:"time"`
	SessionID uuid.UUID `json:"session_id"`
	HipY      float64   `json:"hip_y"`
	KneeY     float64   `json:"knee_y"`
	ShoulderY float64   `json:"shoulder_y"`
	BarY      *float64  `json:"bar_y,omitempty"`
}
