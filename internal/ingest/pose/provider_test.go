package pose

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/claude/repwatch/internal/ingest"
	"github.com/claude/repwatch/internal/models"
	"github.com/claude/repwatch/internal/session"
)

// TestIngestBadSessionID verifies a malformed session id is classified as a
// payload fault, and rejected before any storage access.
func TestIngestBadSessionID(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := NewProvider(nil, session.NewRegistry(), false, log)

	_, err := p.Ingest(context.Background(), &models.LandmarkPayload{
		SessionID: "not-a-uuid",
	})
	if err == nil {
		t.Fatal("expected error for malformed session id")
	}
	if !errors.Is(err, ingest.ErrBadPayload) {
		t.Errorf("error %v should match ingest.ErrBadPayload", err)
	}
}
