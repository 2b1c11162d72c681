package query

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bfs/census-acs-mcp/internal/config"
	"github.com/bfs/census-acs-mcp/internal/geo"
	"github.com/bfs/census-acs-mcp/internal/storage"
)

func setupEngine(t *testing.T) *Engine {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "census-mcp-query-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := storage.Open(filepath.Join(tmpDir, "acs.db"), logger)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.DatabasePath = db.Path()
	cfg.Query.MinPopulation = 1000

	engine := NewEngine(db, logger, cfg)
	t.Cleanup(func() { _ = engine.Close() })
	return engine
}

func seedArea(t *testing.T, e *Engine, geoID, name string) {
	t.Helper()
	if _, err := e.DB().Exec(
		`INSERT INTO geo_areas (geo_id, name, summary_level) VALUES (?, ?, ?)`,
		geoID, name, geo.SummaryLevelOf(geoID)); err != nil {
		t.Fatalf("Failed to seed area %s: %v", geoID, err)
	}
}

func seedDefinition(t *testing.T, e *Engine, variableID, tableID string, line int, label, title string) {
	t.Helper()
	if _, err := e.DB().Exec(
		`INSERT INTO metric_definitions (variable_id, table_id, line, label, title, universe)
		 VALUES (?, ?, ?, ?, ?, '')`,
		variableID, tableID, line, label, title); err != nil {
		t.Fatalf("Failed to seed definition %s: %v", variableID, err)
	}
}

func seedObservation(t *testing.T, e *Engine, variableID, geoID string, estimate, pct float64) {
	t.Helper()
	k, err := geo.Parse(geoID)
	if err != nil {
		t.Fatalf("bad test key %s: %v", geoID, err)
	}
	if _, err := e.DB().Exec(
		`INSERT INTO metric_observations
		 (variable_id, geo_id, estimate, summary_level, state_fips, national_percentile)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		variableID, geoID, estimate, k.SummaryLevel, k.StateFips(), pct); err != nil {
		t.Fatalf("Failed to seed observation %s/%s: %v", variableID, geoID, err)
	}
}

func seedBoundary(t *testing.T, e *Engine, geoID string, poly geo.Polygon) {
	t.Helper()
	blob, err := storage.EncodeRings(poly)
	if err != nil {
		t.Fatalf("Failed to encode rings for %s: %v", geoID, err)
	}
	minLon, minLat, maxLon, maxLat := poly.BoundingBox()
	if _, err := e.DB().Exec(
		`INSERT INTO geo_boundaries (geo_id, min_lon, min_lat, max_lon, max_lat, rings)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		geoID, minLon, minLat, maxLon, maxLat, blob); err != nil {
		t.Fatalf("Failed to seed boundary %s: %v", geoID, err)
	}
}

func TestClampLimit(t *testing.T) {
	e := setupEngine(t)

	if got := e.clampLimit(0); got != e.config.Query.DefaultLimit {
		t.Errorf("clampLimit(0) = %d, want default %d", got, e.config.Query.DefaultLimit)
	}
	if got := e.clampLimit(-5); got != e.config.Query.DefaultLimit {
		t.Errorf("clampLimit(-5) = %d, want default %d", got, e.config.Query.DefaultLimit)
	}
	if got := e.clampLimit(7); got != 7 {
		t.Errorf("clampLimit(7) = %d, want 7", got)
	}
	if got := e.clampLimit(10_000); got != e.config.Query.MaxLimit {
		t.Errorf("clampLimit(10000) = %d, want max %d", got, e.config.Query.MaxLimit)
	}
}

func TestEngineStatus(t *testing.T) {
	e := setupEngine(t)
	seedArea(t, e, "0400000US06", "California")
	seedDefinition(t, e, "B01001_001E", "B01001", 1, "Total", "Sex by Age")
	seedObservation(t, e, "B01001_001E", "0400000US06", 39_000_000, 0.99)

	st, err := e.GetStatus(context.Background())
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if st.Areas != 1 || st.Metrics != 1 || st.Observations != 1 || st.Boundaries != 0 {
		t.Errorf("unexpected counts: %+v", st)
	}
	if st.DatabasePath == "" {
		t.Error("expected database path in status")
	}
	if st.TimeoutMs != e.config.Query.TimeoutMs {
		t.Errorf("timeoutMs = %d, want %d", st.TimeoutMs, e.config.Query.TimeoutMs)
	}
}
