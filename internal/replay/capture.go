package replay

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/claude/repwatch/internal/models"
)

// CaptureHeader is the first JSONL line of a capture file and identifies the
// recorded session.
type CaptureHeader struct {
	SessionID string           `json:"session_id"`
	Movement  string           `json:"movement"`
	Device    string           `json:"device,omitempty"`
	StartedAt models.FrameTime `json:"started_at"`
}

// Capture is one decoded recording: a session header followed by its frames
// in capture order.
type Capture struct {
	Header CaptureHeader
	Frames []models.LandmarkFrame
}

// ReadCapture decodes a capture file: one JSON header line, then one JSON
// frame per line. Files ending in .gz are transparently decompressed.
func ReadCapture(path string) (*Capture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening capture %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading header from %s: %w", path, err)
		}
		return nil, fmt.Errorf("capture %s is empty", path)
	}

	var c Capture
	if err := json.Unmarshal(scanner.Bytes(), &c.Header); err != nil {
		return nil, fmt.Errorf("parsing header in %s: %w", path, err)
	}
	if c.Header.SessionID == "" {
		return nil, fmt.Errorf("capture %s header has no session_id", path)
	}
	if c.Header.Movement == "" {
		return nil, fmt.Errorf("capture %s header has no movement", path)
	}

	line := 1
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var frame models.LandmarkFrame
		if err := json.Unmarshal([]byte(raw), &frame); err != nil {
			return nil, fmt.Errorf("parsing frame at %s:%d: %w", path, line, err)
		}
		c.Frames = append(c.Frames, frame)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return &c, nil
}
