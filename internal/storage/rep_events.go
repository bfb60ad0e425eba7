package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/repwatch/internal/models"
	"github.com/google/uuid"
)

// InsertRepEvents batch-inserts rep events. Returns count inserted.
func (db *DB) InsertRepEvents(ctx context.Context, rows []models.RepEventRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO rep_events (time, session_id, rep_number, valid, reason) VALUES `
	args := make([]any, 0, len(rows)*5)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 5
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5,
		))
		args = append(args, r.Time, r.SessionID, r.RepNumber, r.Valid, r.Reason)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting rep events: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QueryRepEvents retrieves a session's rep events in rep order.
func (db *DB) QueryRepEvents(ctx context.Context, sessionID uuid.UUID) ([]models.RepEventRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT time, session_id, rep_number, valid, reason
		 FROM rep_events
		 WHERE session_id = $1
		 ORDER BY rep_number ASC`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying rep events: %w", err)
	}
	defer rows.Close()

	var result []models.RepEventRow
	for rows.Next() {
		var e models.RepEventRow
		if err := rows.Scan(&e.Time, &e.SessionID, &e.RepNumber, &e.Valid, &e.Reason); err != nil {
			return nil, fmt.Errorf("scanning rep event: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// InsertFrames batch-inserts raw landmark frames. Returns count inserted.
func (db *DB) InsertFrames(ctx context.Context, rows []models.FrameRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO landmark_frames (time, session_id, hip_y, knee_y, shoulder_y, bar_y) VALUES `
	args := make([]any, 0, len(rows)*6)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 6
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
		))
		args = append(args, r.Time, r.SessionID, r.HipY, r.KneeY, r.ShoulderY, r.BarY)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting landmark frames: %w", err)
	}
	return tag.RowsAffected(), nil
}
