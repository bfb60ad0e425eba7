// Package replay imports recorded landmark captures offline: each capture
// file is one session's frame stream, run through the classifier and written
// to the database as if it had arrived live.
package replay

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/repwatch/internal/classifier"
	"github.com/claude/repwatch/internal/models"
	"github.com/claude/repwatch/internal/session"
	"github.com/claude/repwatch/internal/storage"
	"github.com/google/uuid"
)

// Stats tracks replay progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	FramesReplayed int64
	RepsCounted    int64
	InvalidReps    int64
	FramesStored   int64
}

// Replayer reads capture files from a directory and replays them into the DB.
type Replayer struct {
	db         *storage.DB
	state      *StateDB
	log        *slog.Logger
	dryRun     bool
	keepFrames bool
	stats      Stats
}

// New creates a Replayer. state may be nil, in which case no skip tracking
// is done and every file is replayed.
func New(db *storage.DB, state *StateDB, log *slog.Logger, dryRun, keepFrames bool) *Replayer {
	return &Replayer{db: db, state: state, log: log, dryRun: dryRun, keepFrames: keepFrames}
}

// Replay processes all capture files (*.jsonl, *.jsonl.gz) under captureDir.
func (rp *Replayer) Replay(ctx context.Context, captureDir string) (*Stats, error) {
	files, err := listCaptures(captureDir)
	if err != nil {
		return &rp.stats, err
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &rp.stats, err
		}

		relPath, err := filepath.Rel(captureDir, f)
		if err != nil {
			relPath = f
		}

		skip, err := rp.alreadyReplayed(relPath, f)
		if err != nil {
			return &rp.stats, err
		}
		if skip {
			rp.stats.FilesSkipped++
			continue
		}

		if err := rp.replayFile(ctx, f); err != nil {
			rp.log.Warn("replay failed", "file", relPath, "error", err)
			rp.stats.FilesErrored++
			continue
		}
		rp.stats.FilesProcessed++

		if !rp.dryRun && rp.state != nil {
			if err := rp.markReplayed(relPath, f); err != nil {
				return &rp.stats, fmt.Errorf("marking %s replayed: %w", relPath, err)
			}
		}
	}

	return &rp.stats, nil
}

// listCaptures collects capture files under dir, sorted by path so replay
// order is deterministic.
func listCaptures(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".jsonl") || strings.HasSuffix(path, ".jsonl.gz") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

func (rp *Replayer) alreadyReplayed(relPath, path string) (bool, error) {
	if rp.state == nil {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	hash, err := HashFile(path)
	if err != nil {
		return false, fmt.Errorf("hashing %s: %w", path, err)
	}
	return rp.state.IsReplayed(relPath, info.Size(), hash)
}

func (rp *Replayer) markReplayed(relPath, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hash, err := HashFile(path)
	if err != nil {
		return err
	}
	return rp.state.MarkReplayed(relPath, info.Size(), hash)
}

// replayFile runs one capture through a fresh tracker and persists the
// resulting session, events, and (optionally) frames.
func (rp *Replayer) replayFile(ctx context.Context, path string) error {
	c, err := ReadCapture(path)
	if err != nil {
		return err
	}

	sessionID, err := uuid.Parse(c.Header.SessionID)
	if err != nil {
		return fmt.Errorf("invalid session_id %q: %w", c.Header.SessionID, err)
	}

	kind, err := classifier.ParseKind(c.Header.Movement)
	if err != nil {
		return err
	}

	tracker := session.NewTracker(kind)
	var events []models.RepEventRow
	var frames []models.FrameRow
	var reps, invalid int64

	for _, frame := range c.Frames {
		out := tracker.Process(frame.Time.Time, frame.Sample())
		if out.Event != nil {
			events = append(events, models.RepEventRow{
				Time:      out.Event.Time,
				SessionID: sessionID,
				RepNumber: out.Event.RepNumber,
				Valid:     out.Event.Valid,
				Reason:    reasonPtr(out.Event.Reason, out.Event.Valid),
			})
			reps++
			if out.InvalidRep {
				invalid++
			}
		}
		if rp.keepFrames {
			frames = append(frames, models.FrameRow{
				Time:      frame.Time.Time,
				SessionID: sessionID,
				HipY:      frame.HipY,
				KneeY:     frame.KneeY,
				ShoulderY: frame.ShoulderY,
				BarY:      frame.BarY,
			})
		}
	}

	rp.stats.FramesReplayed += int64(len(c.Frames))
	rp.stats.RepsCounted += reps
	rp.stats.InvalidReps += invalid

	if rp.dryRun {
		rp.stats.FramesStored += int64(len(frames))
		rp.log.Info("dry run", "file", filepath.Base(path),
			"frames", len(c.Frames), "reps", reps, "invalid", invalid)
		return nil
	}

	snap := tracker.Snapshot()
	startedAt := c.Header.StartedAt.Time
	if startedAt.IsZero() && len(c.Frames) > 0 {
		startedAt = c.Frames[0].Time.Time
	}

	row := models.SessionRow{
		ID:           sessionID,
		Movement:     string(kind),
		Device:       c.Header.Device,
		StartedAt:    startedAt,
		RepCount:     snap.State.RepCount,
		InvalidCount: snap.State.InvalidCount,
		LastPhase:    string(snap.State.LastPhase),
	}
	if len(c.Frames) > 0 {
		endedAt := c.Frames[len(c.Frames)-1].Time.Time
		row.EndedAt = &endedAt
	}

	inserted, err := rp.db.InsertSession(ctx, row)
	if err != nil {
		return err
	}
	if !inserted {
		// Session exists from a live run or earlier replay. Refresh counters
		// rather than duplicating events with conflicting numbering.
		if err := rp.db.UpdateSessionCounters(ctx, sessionID,
			snap.State.RepCount, snap.State.InvalidCount, string(snap.State.LastPhase)); err != nil {
			return err
		}
	}

	if _, err := rp.db.InsertRepEvents(ctx, events); err != nil {
		return err
	}
	stored, err := rp.db.InsertFrames(ctx, frames)
	if err != nil {
		return err
	}
	rp.stats.FramesStored += stored

	return nil
}

func reasonPtr(reason string, valid bool) *string {
	if valid || reason == "" {
		return nil
	}
	return &reason
}
