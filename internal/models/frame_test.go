package models

import (
	"encoding/json"
	"testing"
	"time"
)

// TestFrameTimeFormats verifies both timestamp encodings the pose backend
// sends: RFC 3339 strings and unix epoch milliseconds.
func TestFrameTimeFormats(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc3339", `"2026-08-20T17:30:00Z"`, time.Date(2026, 8, 20, 17, 30, 0, 0, time.UTC)},
		{"rfc3339 fractional", `"2026-08-20T17:30:00.250Z"`, time.Date(2026, 8, 20, 17, 30, 0, 250_000_000, time.UTC)},
		{"unix millis", `1776965400000`, time.UnixMilli(1776965400000).UTC()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ft FrameTime
			if err := json.Unmarshal([]byte(tt.raw), &ft); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ft.Equal(tt.want) {
				t.Errorf("time = %v, want %v", ft.Time, tt.want)
			}
		})
	}
}

func TestFrameTimeInvalid(t *testing.T) {
	var ft FrameTime
	if err := json.Unmarshal([]byte(`"yesterday"`), &ft); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}

// TestLandmarkPayloadDecode verifies a realistic ingest body, including the
// optional bar position that is absent for squat-like movements.
func TestLandmarkPayloadDecode(t *testing.T) {
	body := `{
		"session_id": "6a1e8f4e-9c0b-4f62-a7d3-2c5b8e901234",
		"device": "rig-cam-1",
		"frames": [
			{"time": "2026-08-20T17:30:00Z", "hip_y": 0.3, "knee_y": 0.5, "shoulder_y": 0.1},
			{"time": "2026-08-20T17:30:00.100Z", "hip_y": 0.6, "knee_y": 0.5, "shoulder_y": 0.35, "bar_y": 0.8}
		]
	}`

	var p LandmarkPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(p.Frames))
	}
	if p.Frames[0].BarY != nil {
		t.Error("bar_y should be nil when absent")
	}
	if p.Frames[1].BarY == nil || *p.Frames[1].BarY != 0.8 {
		t.Errorf("bar_y = %v, want 0.8", p.Frames[1].BarY)
	}

	s := p.Frames[1].Sample()
	if s.HipY != 0.6 || s.KneeY != 0.5 || s.ShoulderY != 0.35 {
		t.Errorf("sample = %+v", s)
	}
	if s.BarY == nil || *s.BarY != 0.8 {
		t.Errorf("sample bar = %v, want 0.8", s.BarY)
	}
}
