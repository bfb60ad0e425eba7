package mcp

import (
	"context"
	"time"

	"github.com/claude/repwatch/internal/models"
	"github.com/claude/repwatch/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	QuerySessions(ctx context.Context, start, end time.Time, movementFilter string) ([]models.SessionRow, error)
	GetSession(ctx context.Context, id uuid.UUID) (*storage.SessionDetail, error)
	GetMovementStats(ctx context.Context, start, end time.Time) ([]storage.MovementStats, error)
	RecentSessions(ctx context.Context, limit int) ([]models.SessionRow, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
