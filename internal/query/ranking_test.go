package query

import (
	"context"
	"strings"
	"testing"

	"github.com/bfs/census-acs-mcp/internal/errors"
	"github.com/bfs/census-acs-mcp/internal/geo"
)

func seedRankingFixture(t *testing.T, e *Engine) {
	t.Helper()
	seedArea(t, e, "0500000US06037", "Los Angeles County, California")
	seedArea(t, e, "0500000US06073", "San Diego County, California")
	seedArea(t, e, "0500000US36061", "New York County, New York")

	seedDefinition(t, e, "B01003_001E", "B01003", 1, "Total", "Total Population")
	seedDefinition(t, e, "B08301_010E", "B08301", 10, "Public transportation", "Means of Transportation to Work")
	seedDefinition(t, e, "B08301_019E", "B08301", 19, "Walked", "Means of Transportation to Work")

	// Population (denominator)
	seedObservation(t, e, "B01003_001E", "0500000US06037", 10_000_000, 0.99)
	seedObservation(t, e, "B01003_001E", "0500000US06073", 3_300_000, 0.95)
	seedObservation(t, e, "B01003_001E", "0500000US36061", 1_600_000, 0.90)

	// Transit commuters
	seedObservation(t, e, "B08301_010E", "0500000US06037", 500_000, 0.80)
	seedObservation(t, e, "B08301_010E", "0500000US06073", 99_000, 0.70)
	seedObservation(t, e, "B08301_010E", "0500000US36061", 900_000, 0.98)

	// Walkers
	seedObservation(t, e, "B08301_019E", "0500000US06037", 200_000, 0.60)
	seedObservation(t, e, "B08301_019E", "0500000US06073", 66_000, 0.50)
	seedObservation(t, e, "B08301_019E", "0500000US36061", 300_000, 0.90)
}

func TestRankDirect(t *testing.T) {
	e := setupEngine(t)
	seedRankingFixture(t, e)

	res, err := e.RankAreasByMetric(context.Background(), RankingRequest{
		MetricIDs: []string{"B01003_001E"},
	})
	if err != nil {
		t.Fatalf("RankAreasByMetric failed: %v", err)
	}
	if res == nil {
		t.Fatal("expected a result for a known metric")
	}
	if res.Label != "Total Population: Total" {
		t.Errorf("label = %q", res.Label)
	}
	if res.TotalMatches != 3 || len(res.Rows) != 3 {
		t.Fatalf("got %d/%d rows, want 3/3", len(res.Rows), res.TotalMatches)
	}

	// Default order is descending by percentile
	if res.Rows[0].GeoID != "0500000US06037" || res.Rows[2].GeoID != "0500000US36061" {
		t.Errorf("unexpected order: %s .. %s", res.Rows[0].GeoID, res.Rows[2].GeoID)
	}
	top := res.Rows[0]
	if top.Value != 10_000_000 {
		t.Errorf("value = %v, want the raw estimate", top.Value)
	}
	if top.Unit != UnitCount {
		t.Errorf("unit = %q, want count", top.Unit)
	}
	if top.NationalPercentile == nil || *top.NationalPercentile != 0.99 {
		t.Errorf("percentile = %v, want 0.99", top.NationalPercentile)
	}
	if top.Name != "Los Angeles County, California" {
		t.Errorf("name = %q", top.Name)
	}
}

func TestRankDirectPercentileBand(t *testing.T) {
	e := setupEngine(t)
	seedRankingFixture(t, e)

	res, err := e.RankAreasByMetric(context.Background(), RankingRequest{
		MetricIDs:     []string{"B01003_001E"},
		PercentileMin: 0.91,
		PercentileMax: 1,
		Order:         "asc",
	})
	if err != nil {
		t.Fatalf("RankAreasByMetric failed: %v", err)
	}
	if res.TotalMatches != 2 {
		t.Fatalf("total = %d, want 2 inside the band", res.TotalMatches)
	}
	if res.Rows[0].GeoID != "0500000US06073" {
		t.Errorf("ascending order starts with %s, want San Diego", res.Rows[0].GeoID)
	}
}

func TestRankDirectPercentileMinOnly(t *testing.T) {
	e := setupEngine(t)
	seedRankingFixture(t, e)

	// Only the lower bound set, as a "top decile" style request sends it;
	// the unset upper bound opens to 1 rather than rejecting the band
	res, err := e.RankAreasByMetric(context.Background(), RankingRequest{
		MetricIDs:     []string{"B01003_001E"},
		PercentileMin: 0.91,
	})
	if err != nil {
		t.Fatalf("min-only band must not be a validation error: %v", err)
	}
	if res.TotalMatches != 2 {
		t.Errorf("total = %d, want 2 at or above 0.91", res.TotalMatches)
	}
	for _, row := range res.Rows {
		if row.NationalPercentile == nil || *row.NationalPercentile < 0.91 {
			t.Errorf("row %s percentile = %v, below the requested floor", row.GeoID, row.NationalPercentile)
		}
	}
}

func TestRankDirectStateFilter(t *testing.T) {
	e := setupEngine(t)
	seedRankingFixture(t, e)

	res, err := e.RankAreasByMetric(context.Background(), RankingRequest{
		MetricIDs:    []string{"B01003_001E"},
		SummaryLevel: "county",
		StateFips:    "36",
	})
	if err != nil {
		t.Fatalf("RankAreasByMetric failed: %v", err)
	}
	if res.TotalMatches != 1 || res.Rows[0].GeoID != "0500000US36061" {
		t.Errorf("state-filtered result = %+v", res.Rows)
	}
}

func TestRankUnknownMetricIsAMiss(t *testing.T) {
	e := setupEngine(t)
	seedRankingFixture(t, e)

	res, err := e.RankAreasByMetric(context.Background(), RankingRequest{
		MetricIDs: []string{"B99999_001E"},
	})
	if err != nil {
		t.Fatalf("an unknown metric must not be an error: %v", err)
	}
	if res != nil {
		t.Errorf("expected nil for an unknown metric, got %+v", res)
	}
}

func TestRankSum(t *testing.T) {
	e := setupEngine(t)
	seedRankingFixture(t, e)

	res, err := e.RankAreasByMetric(context.Background(), RankingRequest{
		MetricIDs: []string{"B08301_010E", "B08301_019E"},
	})
	if err != nil {
		t.Fatalf("RankAreasByMetric failed: %v", err)
	}
	if !strings.HasPrefix(res.Label, "Sum of 2 metrics") {
		t.Errorf("label = %q", res.Label)
	}
	if res.TotalMatches != 3 {
		t.Errorf("total = %d, want 3", res.TotalMatches)
	}
	top := res.Rows[0]
	if top.GeoID != "0500000US36061" || top.Value != 1_200_000 {
		t.Errorf("top row = %s/%v, want summed New York", top.GeoID, top.Value)
	}
	if top.Unit != UnitCount {
		t.Errorf("unit = %q, want count", top.Unit)
	}
	if top.NationalPercentile != nil {
		t.Error("summed values carry no precomputed percentile")
	}
}

func TestRankRate(t *testing.T) {
	e := setupEngine(t)
	seedRankingFixture(t, e)

	res, err := e.RankAreasByMetric(context.Background(), RankingRequest{
		MetricIDs:      []string{"B08301_010E"},
		DenominatorIDs: []string{"B01003_001E"},
	})
	if err != nil {
		t.Fatalf("RankAreasByMetric failed: %v", err)
	}
	if res.TotalMatches != 3 || len(res.Rows) != 3 {
		t.Fatalf("got %d/%d rows, want 3/3", len(res.Rows), res.TotalMatches)
	}

	top := res.Rows[0]
	// 900000 / 1600000 * 100, rounded to two decimals
	if top.GeoID != "0500000US36061" || top.Value != 56.25 {
		t.Errorf("top rate = %s/%v, want New York at 56.25", top.GeoID, top.Value)
	}
	if top.Unit != UnitPercent {
		t.Errorf("unit = %q, want percent", top.Unit)
	}
	if res.Rows[1].Value != 5.0 || res.Rows[2].Value != 3.0 {
		t.Errorf("rates = %v, %v, want 5 and 3", res.Rows[1].Value, res.Rows[2].Value)
	}
}

func TestRankRateMinPopulation(t *testing.T) {
	e := setupEngine(t)
	seedRankingFixture(t, e)
	seedArea(t, e, "0500000US56001", "Albany County, Wyoming")
	seedObservation(t, e, "B01003_001E", "0500000US56001", 500, 0.01)
	seedObservation(t, e, "B08301_010E", "0500000US56001", 499, 0.99)

	// The tiny county would top the rate list; the population floor drops it
	res, err := e.RankAreasByMetric(context.Background(), RankingRequest{
		MetricIDs:      []string{"B08301_010E"},
		DenominatorIDs: []string{"B01003_001E"},
	})
	if err != nil {
		t.Fatalf("RankAreasByMetric failed: %v", err)
	}
	if res.TotalMatches != 3 {
		t.Errorf("total = %d, want the small county excluded", res.TotalMatches)
	}
	for _, row := range res.Rows {
		if row.GeoID == "0500000US56001" {
			t.Error("area below the population floor leaked into the ranking")
		}
	}

	// An explicit lower floor lets it back in
	res, err = e.RankAreasByMetric(context.Background(), RankingRequest{
		MetricIDs:      []string{"B08301_010E"},
		DenominatorIDs: []string{"B01003_001E"},
		MinPopulation:  100,
	})
	if err != nil {
		t.Fatalf("RankAreasByMetric failed: %v", err)
	}
	if res.TotalMatches != 4 || res.Rows[0].GeoID != "0500000US56001" {
		t.Errorf("low-floor ranking: total=%d top=%s", res.TotalMatches, res.Rows[0].GeoID)
	}
}

func TestRankRateStateFilter(t *testing.T) {
	e := setupEngine(t)
	seedRankingFixture(t, e)

	res, err := e.RankAreasByMetric(context.Background(), RankingRequest{
		MetricIDs:      []string{"B08301_010E"},
		DenominatorIDs: []string{"B01003_001E"},
		StateFips:      "06",
		Order:          "asc",
	})
	if err != nil {
		t.Fatalf("RankAreasByMetric failed: %v", err)
	}
	if res.TotalMatches != 2 {
		t.Fatalf("total = %d, want 2 California counties", res.TotalMatches)
	}
	if res.Rows[0].GeoID != "0500000US06073" || res.Rows[1].GeoID != "0500000US06037" {
		t.Errorf("ascending order: %s, %s", res.Rows[0].GeoID, res.Rows[1].GeoID)
	}
}

func TestRankSubgroupExcludedByDefault(t *testing.T) {
	e := setupEngine(t)
	seedRankingFixture(t, e)
	// Subgroup variant key differs only in the population-group segment
	seedObservation(t, e, "B01003_001E", "0500001US06037", 4_800_000, 0.97)

	res, err := e.RankAreasByMetric(context.Background(), RankingRequest{
		MetricIDs: []string{"B01003_001E"},
	})
	if err != nil {
		t.Fatalf("RankAreasByMetric failed: %v", err)
	}
	if res.TotalMatches != 3 {
		t.Errorf("total = %d, subgroup variant must not count", res.TotalMatches)
	}

	res, err = e.RankAreasByMetric(context.Background(), RankingRequest{
		MetricIDs:       []string{"B01003_001E"},
		PopulationGroup: "0001",
	})
	if err != nil {
		t.Fatalf("RankAreasByMetric failed: %v", err)
	}
	if res.TotalMatches != 1 || res.Rows[0].GeoID != "0500001US06037" {
		t.Errorf("explicit subgroup ranking = %+v", res.Rows)
	}
	// No catalog row for the variant key; the raw key stands in as the name
	if res.Rows[0].Name != "0500001US06037" {
		t.Errorf("name = %q, want the raw key fallback", res.Rows[0].Name)
	}
}

func TestRankLimitAndTotal(t *testing.T) {
	e := setupEngine(t)
	seedRankingFixture(t, e)

	res, err := e.RankAreasByMetric(context.Background(), RankingRequest{
		MetricIDs: []string{"B01003_001E"},
		Limit:     2,
	})
	if err != nil {
		t.Fatalf("RankAreasByMetric failed: %v", err)
	}
	if len(res.Rows) != 2 {
		t.Errorf("rows = %d, want limit 2", len(res.Rows))
	}
	if res.TotalMatches != 3 {
		t.Errorf("total = %d, want 3 independent of the limit", res.TotalMatches)
	}
}

func TestRankValidation(t *testing.T) {
	e := setupEngine(t)

	cases := []struct {
		name string
		req  RankingRequest
	}{
		{"no metrics", RankingRequest{}},
		{"bad order", RankingRequest{MetricIDs: []string{"X"}, Order: "sideways"}},
		{"inverted band", RankingRequest{MetricIDs: []string{"X"}, PercentileMin: 0.9, PercentileMax: 0.1}},
		{"band above one", RankingRequest{MetricIDs: []string{"X"}, PercentileMin: 0.5, PercentileMax: 1.5}},
		{"bad group", RankingRequest{MetricIDs: []string{"X"}, PopulationGroup: "00"}},
		{"bad level", RankingRequest{MetricIDs: []string{"X"}, SummaryLevel: "galaxy"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.RankAreasByMetric(context.Background(), tc.req)
			if errors.CodeOf(err) != errors.ValidationFailed {
				t.Errorf("code = %v, want VALIDATION_FAILED", errors.CodeOf(err))
			}
		})
	}
}

func TestRankSummaryLevelHintNames(t *testing.T) {
	e := setupEngine(t)
	seedRankingFixture(t, e)

	// Level names and codes are interchangeable
	byName, err := e.RankAreasByMetric(context.Background(), RankingRequest{
		MetricIDs:    []string{"B01003_001E"},
		SummaryLevel: "county",
	})
	if err != nil {
		t.Fatalf("by name failed: %v", err)
	}
	byCode, err := e.RankAreasByMetric(context.Background(), RankingRequest{
		MetricIDs:    []string{"B01003_001E"},
		SummaryLevel: geo.LevelCounty,
	})
	if err != nil {
		t.Fatalf("by code failed: %v", err)
	}
	if byName.TotalMatches != byCode.TotalMatches {
		t.Errorf("name/code mismatch: %d vs %d", byName.TotalMatches, byCode.TotalMatches)
	}
}
