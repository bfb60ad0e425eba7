package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/repwatch/internal/models"
	"github.com/google/uuid"
)

// InsertSession inserts a session row. Returns true if inserted, false if
// the session already exists.
func (db *DB) InsertSession(ctx context.Context, row models.SessionRow) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO sessions (id, movement, device, started_at, ended_at, rep_count, invalid_count, last_phase)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT DO NOTHING`,
		row.ID, row.Movement, row.Device, row.StartedAt, row.EndedAt,
		row.RepCount, row.InvalidCount, row.LastPhase)
	if err != nil {
		return false, fmt.Errorf("inserting session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateSessionCounters persists the latest classifier state for a session.
func (db *DB) UpdateSessionCounters(ctx context.Context, id uuid.UUID, repCount, invalidCount int, lastPhase string) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE sessions SET rep_count = $2, invalid_count = $3, last_phase = $4 WHERE id = $1`,
		id, repCount, invalidCount, lastPhase)
	if err != nil {
		return fmt.Errorf("updating session counters: %w", err)
	}
	return nil
}

// ResetSession zeroes a session's counters and clears its recorded events
// and frames.
func (db *DB) ResetSession(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE sessions SET rep_count = 0, invalid_count = 0, last_phase = 'unknown',
		 started_at = $2, ended_at = NULL WHERE id = $1`,
		id, startedAt)
	if err != nil {
		return fmt.Errorf("resetting session: %w", err)
	}
	if _, err := db.Pool.Exec(ctx, `DELETE FROM rep_events WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("clearing rep events: %w", err)
	}
	if _, err := db.Pool.Exec(ctx, `DELETE FROM landmark_frames WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("clearing landmark frames: %w", err)
	}
	return nil
}

// SwitchSessionMovement changes a session's movement kind and zeroes its
// state, mirroring the tracker-side rule that state never crosses a kind
// switch.
func (db *DB) SwitchSessionMovement(ctx context.Context, id uuid.UUID, movement string, startedAt time.Time) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE sessions SET movement = $2, rep_count = 0, invalid_count = 0,
		 last_phase = 'unknown', started_at = $3, ended_at = NULL WHERE id = $1`,
		id, movement, startedAt)
	if err != nil {
		return fmt.Errorf("switching session movement: %w", err)
	}
	if _, err := db.Pool.Exec(ctx, `DELETE FROM rep_events WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("clearing rep events: %w", err)
	}
	if _, err := db.Pool.Exec(ctx, `DELETE FROM landmark_frames WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("clearing landmark frames: %w", err)
	}
	return nil
}

// EndSession stamps a session's end time.
func (db *DB) EndSession(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	_, err := db.Pool.Exec(ctx, `UPDATE sessions SET ended_at = $2 WHERE id = $1`, id, endedAt)
	if err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	return nil
}

// SessionDetail is a session with its recorded rep events.
type SessionDetail struct {
	models.SessionRow
	Events []models.RepEventRow `json:"events"`
}

// QuerySessions retrieves sessions started in a time range, newest first,
// optionally filtered by movement kind.
func (db *DB) QuerySessions(ctx context.Context, start, end time.Time, movementFilter string) ([]models.SessionRow, error) {
	query := `SELECT id, movement, device, started_at, ended_at, rep_count, invalid_count, last_phase
		 FROM sessions
		 WHERE started_at >= $1 AND started_at < $2`
	args := []any{start, end}
	if movementFilter != "" {
		query += ` AND movement = $3`
		args = append(args, movementFilter)
	}
	query += ` ORDER BY started_at DESC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
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

// GetSession retrieves a single session by ID with its rep events.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*SessionDetail, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, movement, device, started_at, ended_at, rep_count, invalid_count, last_phase
		 FROM sessions WHERE id = $1`, id)

	var s models.SessionRow
	err := row.Scan(&s.ID, &s.Movement, &s.Device, &s.StartedAt, &s.EndedAt,
		&s.RepCount, &s.InvalidCount, &s.LastPhase)
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	detail := &SessionDetail{SessionRow: s}

	events, err := db.QueryRepEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Events = events
	return detail, nil
}
