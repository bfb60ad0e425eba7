package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RepWatch", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RepWatch movement classification server. Query training sessions, per-rep events with standard-violation verdicts, and per-movement fault statistics."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetSessions, Handler: h.getSessions},
		server.ServerTool{Tool: toolGetSessionReps, Handler: h.getSessionReps},
		server.ServerTool{Tool: toolGetMovementStats, Handler: h.getMovementStats},
		server.ServerTool{Tool: toolListMovements, Handler: h.listMovements},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
		server.ServerResource{Resource: resMovementCatalog, Handler: h.movementCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resRecentSessions = mcp.NewResource(
	"repwatch://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("The 20 most recently started classification sessions with rep and fault counters"),
	mcp.WithMIMEType("application/json"),
)

var resMovementCatalog = mcp.NewResource(
	"repwatch://movement_catalog",
	"Movement Catalog",
	mcp.WithResourceDescription("All supported movements with their standard checks, thresholds, and fault messages"),
	mcp.WithMIMEType("application/json"),
)
