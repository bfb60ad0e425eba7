// Package pose ingests landmark frame batches from a pose-estimation
// backend and runs them through the per-session classifier.
package pose

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/repwatch/internal/classifier"
	"github.com/claude/repwatch/internal/ingest"
	"github.com/claude/repwatch/internal/models"
	"github.com/claude/repwatch/internal/session"
	"github.com/claude/repwatch/internal/storage"
	"github.com/google/uuid"
)

// Provider processes landmark payloads for known sessions.
type Provider struct {
	db         *storage.DB
	registry   *session.Registry
	log        *slog.Logger
	keepFrames bool
}

// NewProvider creates a pose ingest provider. When keepFrames is set, raw
// landmark frames are retained in the database alongside rep events.
func NewProvider(db *storage.DB, registry *session.Registry, keepFrames bool, log *slog.Logger) *Provider {
	return &Provider{db: db, registry: registry, keepFrames: keepFrames, log: log}
}

// Ingest classifies a payload's frames in arrival order and persists the
// resulting rep events. The frames themselves are never validated — the
// classifier is total over its input domain, and cadence is the sample
// source's concern.
//
// A session resumed after a server restart starts from fresh phase state
// (Unknown); recorded rep events from before the restart are kept, but the
// live counters restart. Prototype-level tradeoff.
func (p *Provider) Ingest(ctx context.Context, payload *models.LandmarkPayload) (*ingest.Result, error) {
	result := &ingest.Result{}

	sessionID, err := uuid.Parse(payload.SessionID)
	if err != nil {
		return result, fmt.Errorf("%w: invalid session id %q: %w", ingest.ErrBadPayload, payload.SessionID, err)
	}

	detail, err := p.db.GetSession(ctx, sessionID)
	if err != nil {
		return result, fmt.Errorf("%w: unknown session %s: %w", ingest.ErrBadPayload, sessionID, err)
	}

	kind, err := classifier.ParseKind(detail.Movement)
	if err != nil {
		return result, fmt.Errorf("%w: session %s: %w", ingest.ErrBadPayload, sessionID, err)
	}

	tracker := p.registry.Obtain(sessionID, kind)

	var eventRows []models.RepEventRow
	var frameRows []models.FrameRow
	var last session.Outcome

	for _, frame := range payload.Frames {
		result.FramesReceived++
		out := tracker.Process(frame.Time.Time, frame.Sample())
		last = out

		if out.RepCompleted {
			result.RepsCompleted++
			if out.InvalidRep {
				result.InvalidReps++
			}
			row := models.RepEventRow{
				Time:      out.Event.Time,
				SessionID: sessionID,
				RepNumber: out.Event.RepNumber,
				Valid:     out.Event.Valid,
			}
			if out.Event.Reason != "" {
				reason := out.Event.Reason
				row.Reason = &reason
			}
			eventRows = append(eventRows, row)
			result.LastCue = string(out.Cue)
		}

		if p.keepFrames {
			frameRows = append(frameRows, models.FrameRow{
				Time:      frame.Time.Time,
				SessionID: sessionID,
				HipY:      frame.HipY,
				KneeY:     frame.KneeY,
				ShoulderY: frame.ShoulderY,
				BarY:      frame.BarY,
			})
		}
	}

	if len(eventRows) > 0 {
		inserted, err := p.db.InsertRepEvents(ctx, eventRows)
		if err != nil {
			return result, fmt.Errorf("inserting rep events: %w", err)
		}
		result.EventsInserted = inserted
	}

	if len(frameRows) > 0 {
		stored, err := p.db.InsertFrames(ctx, frameRows)
		if err != nil {
			return result, fmt.Errorf("inserting frames: %w", err)
		}
		result.FramesStored = stored
	}

	if result.FramesReceived > 0 {
		result.State = last.State
		if err := p.db.UpdateSessionCounters(ctx, sessionID,
			last.State.RepCount, last.State.InvalidCount, string(last.State.LastPhase)); err != nil {
			return result, fmt.Errorf("persisting session counters: %w", err)
		}
	} else {
		result.State = tracker.Snapshot().State
		result.Message = "no frames in payload"
	}

	return result, nil
}
