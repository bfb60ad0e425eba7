package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/repwatch/internal/classifier"
	"github.com/claude/repwatch/internal/ingest"
	"github.com/claude/repwatch/internal/ingest/pose"
	"github.com/claude/repwatch/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// withURLParam injects a chi route parameter for direct handler tests.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// TestHandleMovementCatalog verifies the catalog endpoint lists every
// supported movement with its fault message.
func TestHandleMovementCatalog(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/movements", nil)
	rec := httptest.NewRecorder()

	s.handleMovementCatalog(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var catalog []classifier.MovementInfo
	if err := json.NewDecoder(rec.Body).Decode(&catalog); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(catalog) != len(classifier.Kinds()) {
		t.Errorf("catalog size = %d, want %d", len(catalog), len(classifier.Kinds()))
	}
	for _, info := range catalog {
		if info.FaultReason == "" {
			t.Errorf("%s: empty fault reason", info.Kind)
		}
	}
}

// TestHandleLiveSessionFromRegistry verifies the live endpoint serves the
// in-memory tracker snapshot without touching the database.
func TestHandleLiveSessionFromRegistry(t *testing.T) {
	reg := session.NewRegistry()
	id := uuid.New()
	tracker := reg.Obtain(id, classifier.AirSquat)
	now := time.Now()
	tracker.Process(now, classifier.PoseSample{HipY: 0.3, KneeY: 0.5})
	tracker.Process(now, classifier.PoseSample{HipY: 0.6, KneeY: 0.5})
	tracker.Process(now, classifier.PoseSample{HipY: 0.3, KneeY: 0.5})

	s := &Server{registry: reg}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+id.String()+"/live", nil)
	req = withURLParam(req, "id", id.String())
	rec := httptest.NewRecorder()

	s.handleLiveSession(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var snap session.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if snap.State.RepCount != 1 {
		t.Errorf("rep count = %d, want 1", snap.State.RepCount)
	}
	if snap.State.InvalidCount != 1 {
		t.Errorf("invalid count = %d, want 1", snap.State.InvalidCount)
	}
	if len(snap.Events) != 1 {
		t.Errorf("events = %d, want 1", len(snap.Events))
	}
}

// TestIngestStatusMapping verifies payload faults map to 400 and everything
// else (storage failures) to 500.
func TestIngestStatusMapping(t *testing.T) {
	payloadErr := fmt.Errorf("%w: invalid session id %q", ingest.ErrBadPayload, "nope")
	if got := ingestStatus(payloadErr); got != http.StatusBadRequest {
		t.Errorf("payload error status = %d, want 400", got)
	}

	storageErr := errors.New("inserting rep events: connection refused")
	if got := ingestStatus(storageErr); got != http.StatusInternalServerError {
		t.Errorf("storage error status = %d, want 500", got)
	}
}

// TestHandleIngestFramesBadSessionID verifies a malformed session id in the
// payload comes back as a client error without touching the database.
func TestHandleIngestFramesBadSessionID(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := &Server{
		pose: pose.NewProvider(nil, session.NewRegistry(), false, log),
		log:  log,
	}

	body := `{"session_id":"not-a-uuid","frames":[{"time":"2026-08-01T10:00:00Z","hip_y":0.5,"knee_y":0.6,"shoulder_y":0.3}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/frames", strings.NewReader(body))
	rec := httptest.NewRecorder()

	s.handleIngestFrames(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestSessionIDParamInvalid verifies malformed session IDs get 400 across
// the {id} routes.
func TestSessionIDParamInvalid(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/not-a-uuid", nil)
	req = withURLParam(req, "id", "not-a-uuid")
	rec := httptest.NewRecorder()

	if _, ok := sessionIDParam(rec, req); ok {
		t.Error("expected rejection of malformed ID")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestParseTimeRangeDefaults: no params means the last 7 days.
func TestParseTimeRangeDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil)
	start, end, err := parseTimeRange(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diff := end.Sub(start)
	if diff.Hours() < 167 || diff.Hours() > 169 {
		t.Errorf("default range = %.0f hours, want ~168", diff.Hours())
	}
}

// TestParseTimeRangeDateOnly: date-only end values extend to end of day.
func TestParseTimeRangeDateOnly(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions?start=2026-08-01&end=2026-08-02", nil)
	start, end, err := parseTimeRange(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Day() != 1 {
		t.Errorf("start day = %d, want 1", start.Day())
	}
	if got := end.Sub(start); got != 48*time.Hour {
		t.Errorf("range = %v, want 48h (end of day)", got)
	}
}

func TestParseTimeRangeInvalid(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions?start=lastweek", nil)
	if _, _, err := parseTimeRange(req); err == nil {
		t.Error("expected error for unparseable start")
	}
}
