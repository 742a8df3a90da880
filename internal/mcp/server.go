package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const ownerIDKey contextKey = iota

// OwnerIDFromContext extracts the owner ID injected by the transport layer.
func OwnerIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(ownerIDKey).(int); ok {
		return id
	}
	return 1
}

// WithOwnerID returns a context with the given owner ID.
func WithOwnerID(ctx context.Context, ownerID int) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("VitalSink", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("VitalSink health data server. Query sleep entries and scores, measurements, exercise logs, and daily check-ins. All data is scoped to the authenticated owner."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetSleepEntries, Handler: h.getSleepEntries},
		server.ServerTool{Tool: toolGetSleepSummary, Handler: h.getSleepSummary},
		server.ServerTool{Tool: toolGetMeasurements, Handler: h.getMeasurements},
		server.ServerTool{Tool: toolListCategories, Handler: h.listCategories},
		server.ServerTool{Tool: toolGetExerciseLog, Handler: h.getExerciseLog},
		server.ServerTool{Tool: toolGetCheckIns, Handler: h.getCheckIns},
	)

	s.AddResources(
		server.ServerResource{Resource: resDailySummary, Handler: h.dailySummary},
		server.ServerResource{Resource: resCategoryCatalog, Handler: h.categoryCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resDailySummary = mcp.NewResource(
	"vitalsink://daily_summary",
	"Daily Summary",
	mcp.WithResourceDescription("Today's check-in record plus the latest scored sleep entry"),
	mcp.WithMIMEType("application/json"),
)

var resCategoryCatalog = mcp.NewResource(
	"vitalsink://category_catalog",
	"Category Catalog",
	mcp.WithResourceDescription("All measurement categories with their value kinds and sampling frequencies"),
	mcp.WithMIMEType("application/json"),
)
