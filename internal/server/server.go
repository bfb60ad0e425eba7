package server

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/claude/repwatch/internal/ingest/pose"
	"github.com/claude/repwatch/internal/session"
	"github.com/claude/repwatch/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	pose     *pose.Provider
	registry *session.Registry
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, poseProvider *pose.Provider, registry *session.Registry, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		pose:     poseProvider,
		registry: registry,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Frame ingest (API key required — this is the pose backend's door)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/frames", s.handleIngestFrames)
	})

	// Session lifecycle and dashboard API (no auth — tsnet handles access)
	s.router.Post("/api/v1/sessions", s.handleCreateSession)
	s.router.Get("/api/v1/sessions", s.handleQuerySessions)
	s.router.Get("/api/v1/sessions/{id}", s.handleGetSession)
	s.router.Get("/api/v1/sessions/{id}/live", s.handleLiveSession)
	s.router.Post("/api/v1/sessions/{id}/reset", s.handleResetSession)
	s.router.Post("/api/v1/sessions/{id}/movement", s.handleSwitchMovement)
	s.router.Post("/api/v1/sessions/{id}/end", s.handleEndSession)
	s.router.Get("/api/v1/stats", s.handleMovementStats)
	s.router.Get("/api/v1/movements", s.handleMovementCatalog)
}

// SetFrontend mounts the embedded SPA filesystem.
// Unmatched routes serve index.html for client-side routing.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		// Try to serve the exact file first
		f, err := webFS.Open(r.URL.Path[1:]) // strip leading /
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		// Fallback to index.html for SPA routing
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
