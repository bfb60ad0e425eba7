package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/claude/repwatch/internal/classifier"
	"github.com/claude/repwatch/internal/ingest"
	"github.com/claude/repwatch/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleIngestFrames(w http.ResponseWriter, r *http.Request) {
	var payload models.LandmarkPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	result, err := s.pose.Ingest(r.Context(), &payload)
	if err != nil {
		s.log.Error("frame ingest error", "error", err)
		writeJSON(w, ingestStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ingestStatus maps an Ingest error to a response status: payload faults are
// the caller's (400), storage failures are ours (500).
func ingestStatus(err error) int {
	if errors.Is(err, ingest.ErrBadPayload) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type createSessionRequest struct {
	Movement string `json:"movement"`
	Device   string `json:"device"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	kind, err := classifier.ParseKind(req.Movement)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	row := models.SessionRow{
		ID:        uuid.New(),
		Movement:  string(kind),
		Device:    req.Device,
		StartedAt: time.Now(),
		LastPhase: string(classifier.PhaseUnknown),
	}
	if _, err := s.db.InsertSession(r.Context(), row); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.registry.Obtain(row.ID, kind)

	writeJSON(w, http.StatusCreated, row)
}

func (s *Server) handleQuerySessions(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	movementFilter := r.URL.Query().Get("movement")
	if movementFilter != "" {
		if _, err := classifier.ParseKind(movementFilter); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	sessions, err := s.db.QuerySessions(r.Context(), start, end, movementFilter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	detail, err := s.db.GetSession(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleLiveSession returns the in-memory tracker snapshot when one is
// live, falling back to persisted counters after a restart.
func (s *Server) handleLiveSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	if tracker, live := s.registry.Lookup(id); live {
		writeJSON(w, http.StatusOK, tracker.Snapshot())
		return
	}

	detail, err := s.db.GetSession(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, detail.SessionRow)
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	startedAt := time.Now()
	if tracker, live := s.registry.Lookup(id); live {
		tracker.Reset()
	}
	if err := s.db.ResetSession(r.Context(), id, startedAt); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": classifier.NewRepState()})
}

type switchMovementRequest struct {
	Movement string `json:"movement"`
}

func (s *Server) handleSwitchMovement(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	var req switchMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	kind, err := classifier.ParseKind(req.Movement)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	// State never crosses a movement switch: fresh tracker state and zeroed
	// persisted counters.
	startedAt := time.Now()
	s.registry.Obtain(id, kind).SwitchMovement(kind)
	if err := s.db.SwitchSessionMovement(r.Context(), id, string(kind), startedAt); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"movement": kind,
		"state":    classifier.NewRepState(),
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	if err := s.db.EndSession(r.Context(), id, time.Now()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.registry.Drop(id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

func (s *Server) handleMovementStats(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	stats, err := s.db.GetMovementStats(r.Context(), start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleMovementCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, classifier.Catalog())
}

func sessionIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 7 days
		end = time.Now()
		start = end.AddDate(0, 0, -7)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
