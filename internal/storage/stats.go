package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/repwatch/internal/models"
)

// MovementStats aggregates classification outcomes for one movement kind.
type MovementStats struct {
	Movement    string  `json:"movement"`
	Sessions    int     `json:"sessions"`
	TotalReps   int     `json:"total_reps"`
	InvalidReps int     `json:"invalid_reps"`
	FaultRate   float64 `json:"fault_rate"`
}

// GetMovementStats returns per-movement totals for sessions started in the
// given range.
func (db *DB) GetMovementStats(ctx context.Context, start, end time.Time) ([]MovementStats, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT movement, COUNT(*), COALESCE(SUM(rep_count), 0), COALESCE(SUM(invalid_count), 0)
		 FROM sessions
		 WHERE started_at >= $1 AND started_at < $2
		 GROUP BY movement
		 ORDER BY movement`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("querying movement stats: %w", err)
	}
	defer rows.Close()

	var result []MovementStats
	for rows.Next() {
		var s MovementStats
		if err := rows.Scan(&s.Movement, &s.Sessions, &s.TotalReps, &s.InvalidReps); err != nil {
			return nil, fmt.Errorf("scanning movement stats: %w", err)
		}
		if s.TotalReps > 0 {
			s.FaultRate = float64(s.InvalidReps) / float64(s.TotalReps)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// RecentSessions returns the most recently started sessions.
func (db *DB) RecentSessions(ctx context.Context, limit int) ([]models.SessionRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, movement, device, started_at, ended_at, rep_count, invalid_count, last_phase
		 FROM sessions
		 ORDER BY started_at DESC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent sessions: %w", err)
	}
	defer rows.Close()

	var result []models.SessionRow
	for rows.Next() {
		var s models.SessionRow
		if err := rows.Scan(&s.ID, &s.Movement, &s.Device, &s.StartedAt, &s.EndedAt,
			&s.RepCount, &s.InvalidCount, &s.LastPhase); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
