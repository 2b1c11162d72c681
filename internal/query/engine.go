// Package query provides the central engine for census-mcp: location
// resolution, metric ranking, and catalog search over the embedded
// analytical store.
package query

import (
	"log/slog"

	"github.com/bfs/census-acs-mcp/internal/config"
	"github.com/bfs/census-acs-mcp/internal/storage"
)

// Engine owns the process-wide store handle and the catalogs built on it.
// It is created once at startup and passed to the MCP server; there is no
// hidden global. Concurrent tool calls issue independent context-bound
// queries through the one handle, which is safe for read-only access.
type Engine struct {
	db         *storage.DB
	svc        *storage.Service
	areas      *storage.AreaCatalog
	metrics    *storage.MetricCatalog
	boundaries *storage.BoundaryCatalog
	logger     *slog.Logger
	config     *config.Config
}

// NewEngine creates a query engine over an opened database.
func NewEngine(db *storage.DB, logger *slog.Logger, cfg *config.Config) *Engine {
	svc := storage.NewService(db, cfg.Timeout(), logger)
	return &Engine{
		db:         db,
		svc:        svc,
		areas:      storage.NewAreaCatalog(svc),
		metrics:    storage.NewMetricCatalog(svc),
		boundaries: storage.NewBoundaryCatalog(svc),
		logger:     logger,
		config:     cfg,
	}
}

// DB returns the underlying store handle.
func (e *Engine) DB() *storage.DB {
	return e.db
}

// Close shuts down the engine's store handle.
func (e *Engine) Close() error {
	return e.db.Close()
}

// clampLimit applies the configured default and ceiling to a requested limit.
func (e *Engine) clampLimit(limit int) int {
	if limit <= 0 {
		return e.config.Query.DefaultLimit
	}
	if limit > e.config.Query.MaxLimit {
		return e.config.Query.MaxLimit
	}
	return limit
}
