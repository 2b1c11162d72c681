package query

import (
	"context"
	"testing"

	"github.com/bfs/census-acs-mcp/internal/errors"
	"github.com/bfs/census-acs-mcp/internal/geo"
)

func seedResolverFixture(t *testing.T, e *Engine) {
	t.Helper()
	seedArea(t, e, "0400000US06", "California")
	seedArea(t, e, "0500000US06037", "Los Angeles County, California")
	seedArea(t, e, "3100000US31080", "Los Angeles-Long Beach-Anaheim, CA Metro Area")
	seedArea(t, e, "1400000US06037123456", "Census Tract 1234.56, Los Angeles County, California")
	seedArea(t, e, "8600000US90210", "ZCTA5 90210")
	// Subgroup variant of LA County, must never resolve from a name search
	seedArea(t, e, "0500001US06037", "Los Angeles County, California (Hispanic or Latino)")
}

func TestResolveLocationByRawKey(t *testing.T) {
	e := setupEngine(t)
	seedResolverFixture(t, e)

	loc, err := e.ResolveLocation(context.Background(), "0500000US06037", "state")
	if err != nil {
		t.Fatalf("ResolveLocation failed: %v", err)
	}
	if loc == nil {
		t.Fatal("expected a match for a known raw key")
	}
	if loc.GeoID != "0500000US06037" {
		t.Errorf("geoId = %s, want 0500000US06037", loc.GeoID)
	}
	// A raw key bypasses the level hint entirely
	if loc.Name != "Los Angeles County, California" {
		t.Errorf("name = %q", loc.Name)
	}
}

func TestResolveLocationByZIP(t *testing.T) {
	e := setupEngine(t)
	seedResolverFixture(t, e)

	loc, err := e.ResolveLocation(context.Background(), "90210", "")
	if err != nil {
		t.Fatalf("ResolveLocation failed: %v", err)
	}
	if loc == nil {
		t.Fatal("expected a match for ZIP 90210")
	}
	if loc.GeoID != geo.ZCTAKey("90210") {
		t.Errorf("geoId = %s, want %s", loc.GeoID, geo.ZCTAKey("90210"))
	}
	// The ZIP digits, not the catalog's ZCTA name, become the display name
	if loc.Name != "90210" {
		t.Errorf("name = %q, want 90210", loc.Name)
	}
}

func TestResolveLocationByName(t *testing.T) {
	e := setupEngine(t)
	seedResolverFixture(t, e)

	// With no hint, the metro outranks the county for an ambiguous name
	loc, err := e.ResolveLocation(context.Background(), "los angeles", "")
	if err != nil {
		t.Fatalf("ResolveLocation failed: %v", err)
	}
	if loc == nil {
		t.Fatal("expected a name match")
	}
	if loc.GeoID != "3100000US31080" {
		t.Errorf("geoId = %s, want metro 3100000US31080", loc.GeoID)
	}

	// A county hint narrows to the county row
	loc, err = e.ResolveLocation(context.Background(), "los angeles", "county")
	if err != nil {
		t.Fatalf("ResolveLocation with hint failed: %v", err)
	}
	if loc == nil || loc.GeoID != "0500000US06037" {
		t.Errorf("hinted match = %+v, want county", loc)
	}
}

func TestResolveLocationMiss(t *testing.T) {
	e := setupEngine(t)
	seedResolverFixture(t, e)

	loc, err := e.ResolveLocation(context.Background(), "atlantis", "")
	if err != nil {
		t.Fatalf("a miss must not be an error: %v", err)
	}
	if loc != nil {
		t.Errorf("expected nil for an unknown location, got %+v", loc)
	}
}

func TestResolveLocationValidation(t *testing.T) {
	e := setupEngine(t)

	_, err := e.ResolveLocation(context.Background(), "", "")
	if errors.CodeOf(err) != errors.ValidationFailed {
		t.Errorf("empty input: code = %v, want VALIDATION_FAILED", errors.CodeOf(err))
	}

	_, err = e.ResolveLocation(context.Background(), "somewhere", "galaxy")
	if errors.CodeOf(err) != errors.ValidationFailed {
		t.Errorf("bad hint: code = %v, want VALIDATION_FAILED", errors.CodeOf(err))
	}
}

func TestSearchLocations(t *testing.T) {
	e := setupEngine(t)
	seedResolverFixture(t, e)

	res, err := e.SearchLocations(context.Background(), "california", "", 2)
	if err != nil {
		t.Fatalf("SearchLocations failed: %v", err)
	}
	// State, county and tract names all contain "california"; the subgroup
	// county variant does not count
	if res.Total != 3 {
		t.Errorf("total = %d, want 3", res.Total)
	}
	if len(res.Matches) != 2 {
		t.Fatalf("matches = %d, want limit 2", len(res.Matches))
	}
	if res.Matches[0].GeoID != "0400000US06" {
		t.Errorf("first match = %s, want the state", res.Matches[0].GeoID)
	}
}

func TestListGeographies(t *testing.T) {
	e := setupEngine(t)
	seedResolverFixture(t, e)
	seedArea(t, e, "0500000US36061", "New York County, New York")

	list, err := e.ListGeographies(context.Background(), "county", "", 10)
	if err != nil {
		t.Fatalf("ListGeographies failed: %v", err)
	}
	if list.Level != geo.LevelCounty {
		t.Errorf("level = %s, want %s", list.Level, geo.LevelCounty)
	}
	if list.Total != 2 || len(list.Areas) != 2 {
		t.Fatalf("got %d/%d areas, want 2/2", len(list.Areas), list.Total)
	}
	// Name ascending
	if list.Areas[0].GeoID != "0500000US06037" {
		t.Errorf("first area = %s, want LA County", list.Areas[0].GeoID)
	}

	// A parent key narrows the list to that parent's state
	list, err = e.ListGeographies(context.Background(), "county", "0400000US36", 10)
	if err != nil {
		t.Fatalf("ListGeographies with parent failed: %v", err)
	}
	if list.Total != 1 || list.Areas[0].GeoID != "0500000US36061" {
		t.Errorf("parent-filtered list = %+v", list.Areas)
	}
}

func TestListGeographiesRequiresLevel(t *testing.T) {
	e := setupEngine(t)

	_, err := e.ListGeographies(context.Background(), "", "", 10)
	if errors.CodeOf(err) != errors.ValidationFailed {
		t.Errorf("code = %v, want VALIDATION_FAILED", errors.CodeOf(err))
	}
}

func squareAround(lon, lat, half float64) geo.Polygon {
	return geo.Polygon{{
		{lon - half, lat - half},
		{lon + half, lat - half},
		{lon + half, lat + half},
		{lon - half, lat + half},
		{lon - half, lat - half},
	}}
}

func TestLookupCoordinatesMostSpecificWins(t *testing.T) {
	e := setupEngine(t)
	seedResolverFixture(t, e)
	seedDefinition(t, e, "B01001_001E", "B01001", 1, "Total", "Sex by Age")
	seedObservation(t, e, "B01001_001E", "1400000US06037123456", 4321, 0.5)

	// County square encloses the tract square; both contain the point
	seedBoundary(t, e, "0500000US06037", squareAround(-118.25, 34.05, 1.0))
	seedBoundary(t, e, "1400000US06037123456", squareAround(-118.25, 34.05, 0.01))

	hit, err := e.LookupCoordinates(context.Background(), 34.05, -118.25, nil)
	if err != nil {
		t.Fatalf("LookupCoordinates failed: %v", err)
	}
	if hit == nil {
		t.Fatal("expected a containing area")
	}
	if hit.Location.GeoID != "1400000US06037123456" {
		t.Errorf("geoId = %s, want the tract", hit.Location.GeoID)
	}
	if hit.SummaryLevel != geo.LevelTract {
		t.Errorf("summaryLevel = %s, want %s", hit.SummaryLevel, geo.LevelTract)
	}
	if len(hit.Observations) != 1 || hit.Observations[0].VariableID != "B01001_001E" {
		t.Errorf("observations = %+v", hit.Observations)
	}

	// A point inside the county bbox but outside the tract falls back to
	// the county
	hit, err = e.LookupCoordinates(context.Background(), 34.5, -118.25, nil)
	if err != nil {
		t.Fatalf("LookupCoordinates failed: %v", err)
	}
	if hit == nil || hit.Location.GeoID != "0500000US06037" {
		t.Errorf("expected county fallback, got %+v", hit)
	}
}

func TestLookupCoordinatesMiss(t *testing.T) {
	e := setupEngine(t)
	seedArea(t, e, "0500000US06037", "Los Angeles County, California")
	seedBoundary(t, e, "0500000US06037", squareAround(-118.25, 34.05, 1.0))

	// Null Island is far outside every seeded boundary
	hit, err := e.LookupCoordinates(context.Background(), 0, 0, nil)
	if err != nil {
		t.Fatalf("a spatial miss must not be an error: %v", err)
	}
	if hit != nil {
		t.Errorf("expected nil outside all boundaries, got %+v", hit)
	}
}

func TestLookupCoordinatesValidation(t *testing.T) {
	e := setupEngine(t)

	if _, err := e.LookupCoordinates(context.Background(), 91, 0, nil); errors.CodeOf(err) != errors.ValidationFailed {
		t.Errorf("latitude 91: code = %v, want VALIDATION_FAILED", errors.CodeOf(err))
	}
	if _, err := e.LookupCoordinates(context.Background(), 0, -181, nil); errors.CodeOf(err) != errors.ValidationFailed {
		t.Errorf("longitude -181: code = %v, want VALIDATION_FAILED", errors.CodeOf(err))
	}
}

func TestSearchMetrics(t *testing.T) {
	e := setupEngine(t)
	seedDefinition(t, e, "B01001_001E", "B01001", 1, "Total", "Sex by Age")
	seedDefinition(t, e, "B08301_010E", "B08301", 10, "Public transportation", "Means of Transportation to Work")
	seedDefinition(t, e, "B08301_019E", "B08301", 19, "Walked", "Means of Transportation to Work")

	matches, total, err := e.SearchMetrics(context.Background(), "transportation", "", 10)
	if err != nil {
		t.Fatalf("SearchMetrics failed: %v", err)
	}
	if total != 2 || len(matches) != 2 {
		t.Fatalf("got %d/%d matches, want 2/2", len(matches), total)
	}
	if matches[0].Topic != "commuting" {
		t.Errorf("topic = %q, want commuting from the bundled manifest", matches[0].Topic)
	}

	// Topic names expand to their table ids
	matches, _, err = e.SearchMetrics(context.Background(), "walked", "commuting", 10)
	if err != nil {
		t.Fatalf("SearchMetrics with topic failed: %v", err)
	}
	if len(matches) != 1 || matches[0].VariableID != "B08301_019E" {
		t.Errorf("topic-filtered matches = %+v", matches)
	}
}
