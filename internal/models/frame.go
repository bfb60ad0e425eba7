package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/claude/repwatch/internal/classifier"
)

// FrameTime handles the pose backend's timestamp encodings: RFC 3339 strings
// (with or without fractional seconds) or unix epoch milliseconds as a bare
// number.
type FrameTime struct {
	time.Time
}

func (t *FrameTime) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return t.Parse(s)
	}
	millis, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("cannot parse frame time %s: %w", data, err)
	}
	t.Time = time.UnixMilli(millis).UTC()
	return nil
}

func (t FrameTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// Parse parses an RFC 3339 timestamp, trying the fractional-seconds layout
// first.
func (t *FrameTime) Parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err2 := time.Parse(time.RFC3339, s)
	if err2 == nil {
		t.Time = parsed
		return nil
	}
	return fmt.Errorf("cannot parse frame time %q: %w", s, err)
}

// LandmarkPayload is the JSON body a pose-estimation backend posts to the
// frame ingest endpoint. Frames must be ordered as produced — classification
// is sequence-dependent.
type LandmarkPayload struct {
	SessionID string          `json:"session_id"`
	Device    string          `json:"device,omitempty"`
	Frames    []LandmarkFrame `json:"frames"`
}

// LandmarkFrame is one landmark snapshot. Vertical coordinates use the
// inverted-Y image convention (larger is lower in frame).
type LandmarkFrame struct {
	Time      FrameTime `json:"time"`
	HipY      float64   `json:"hip_y"`
	KneeY     float64   `json:"knee_y"`
	ShoulderY float64   `json:"shoulder_y"`
	BarY      *float64  `json:"bar_y,omitempty"`
}

// Sample converts the frame to a classifier input.
func (f LandmarkFrame) Sample() classifier.PoseSample {
	return classifier.PoseSample{
		HipY:      f.HipY,
		KneeY:     f.KneeY,
		ShoulderY: f.ShoulderY,
		BarY:      f.BarY,
	}
}
