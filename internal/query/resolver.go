package query

import (
	"context"

	"github.com/bfs/census-acs-mcp/internal/errors"
	"github.com/bfs/census-acs-mcp/internal/geo"
	"github.com/bfs/census-acs-mcp/internal/storage"
)

// ResolvedLocation is the outcome of location resolution: one canonical
// geographic key plus its display name. Computed per request, never stored.
type ResolvedLocation struct {
	GeoID string `json:"geoId"`
	Name  string `json:"name"`
}

// LocationSearchResult holds ranked name-search matches plus the total match
// count ignoring the limit.
type LocationSearchResult struct {
	Matches []storage.Area `json:"matches"`
	Total   int            `json:"total"`
}

// GeographyList holds canonical areas at one summary level plus the total
// count ignoring the limit.
type GeographyList struct {
	Level string         `json:"level"`
	Areas []storage.Area `json:"areas"`
	Total int            `json:"total"`
}

// PointLookup is the outcome of a spatial lookup: the most specific area
// containing the point, with its metric observations attached.
type PointLookup struct {
	Location     ResolvedLocation          `json:"location"`
	SummaryLevel string                    `json:"summaryLevel"`
	Observations []storage.AreaObservation `json:"observations"`
}

// ResolveLocation turns an arbitrary location string into a single canonical
// area. Classification runs in order, first success wins:
//
//  1. raw geographic key (starts with a digit, carries the US marker) —
//     exact catalog lookup, levelHint ignored
//  2. five-digit ZIP — the synthesized ZCTA key, with the digits themselves
//     as display name (the catalog's bundled ZCTA names are unreliable)
//  3. case-insensitive substring name search, best candidate wins
//
// A miss returns (nil, nil): not finding an area is a normal outcome the
// caller handles, not an error.
func (e *Engine) ResolveLocation(ctx context.Context, input, levelHint string) (*ResolvedLocation, error) {
	if input == "" {
		return nil, errors.NewInvalidParameterError("location", "must not be empty")
	}

	if geo.LooksLikeKey(input) {
		area, err := e.areas.GetByKey(ctx, input)
		if err != nil {
			return nil, err
		}
		if area != nil {
			return &ResolvedLocation{GeoID: area.GeoID, Name: area.Name}, nil
		}
	}

	if geo.IsZIP(input) {
		key := geo.ZCTAKey(input)
		area, err := e.areas.GetByKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if area != nil {
			return &ResolvedLocation{GeoID: area.GeoID, Name: input}, nil
		}
	}

	level, err := geo.LevelCode(levelHint)
	if err != nil {
		return nil, errors.NewInvalidParameterError("levelHint", err.Error())
	}

	matches, _, err := e.areas.SearchByName(ctx, input, level, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &ResolvedLocation{GeoID: matches[0].GeoID, Name: matches[0].Name}, nil
}

// SearchLocations runs the same name-search predicate and tie-break ordering
// as resolution step 3, returning up to limit ranked matches with the total.
func (e *Engine) SearchLocations(ctx context.Context, input, levelHint string, limit int) (*LocationSearchResult, error) {
	if input == "" {
		return nil, errors.NewInvalidParameterError("query", "must not be empty")
	}
	level, err := geo.LevelCode(levelHint)
	if err != nil {
		return nil, errors.NewInvalidParameterError("levelHint", err.Error())
	}

	matches, total, err := e.areas.SearchByName(ctx, input, level, e.clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return &LocationSearchResult{Matches: matches, Total: total}, nil
}

// ListGeographies lists canonical areas at one summary level sorted by
// display name. parentKey restricts results to the parent's state: the
// filter compares the trailing 2-character state code of the parent key
// against each area's FIPS prefix, so any parent within a state produces
// the same state-wide filter. That approximation is intentional.
func (e *Engine) ListGeographies(ctx context.Context, levelHint, parentKey string, limit int) (*GeographyList, error) {
	level, err := geo.LevelCode(levelHint)
	if err != nil {
		return nil, errors.NewInvalidParameterError("level", err.Error())
	}
	if level == "" {
		return nil, errors.NewInvalidParameterError("level", "must not be empty")
	}

	stateFips := ""
	if parentKey != "" {
		if len(parentKey) < 2 {
			return nil, errors.NewInvalidParameterError("parentGeoId", "too short")
		}
		stateFips = parentKey[len(parentKey)-2:]
	}

	areas, total, err := e.areas.ListByLevel(ctx, level, stateFips, e.clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return &GeographyList{Level: level, Areas: areas, Total: total}, nil
}

// LookupCoordinates finds the most specific area containing a point and
// attaches its metric observations, optionally filtered to table groupings
// or topic names. A point outside every boundary returns (nil, nil).
func (e *Engine) LookupCoordinates(ctx context.Context, lat, lon float64, tables []string) (*PointLookup, error) {
	if lat < -90 || lat > 90 {
		return nil, errors.NewInvalidParameterError("latitude", "must be in [-90, 90]")
	}
	if lon < -180 || lon > 180 {
		return nil, errors.NewInvalidParameterError("longitude", "must be in [-180, 180]")
	}

	candidates, err := e.boundaries.CandidatesAt(ctx, lon, lat)
	if err != nil {
		return nil, err
	}

	var best *storage.Boundary
	bestRank := -1
	for i := range candidates {
		c := &candidates[i]
		if !c.Polygon.Contains(lon, lat) {
			continue
		}
		rank := geo.Specificity(geo.SummaryLevelOf(c.GeoID))
		if rank > bestRank {
			best = c
			bestRank = rank
		}
	}
	if best == nil {
		return nil, nil
	}

	name := best.GeoID
	area, err := e.areas.GetByKey(ctx, best.GeoID)
	if err != nil {
		return nil, err
	}
	if area != nil {
		name = area.Name
	}

	obs, err := e.metrics.ObservationsForArea(ctx, best.GeoID, ExpandTableFilter(tables))
	if err != nil {
		return nil, err
	}

	return &PointLookup{
		Location:     ResolvedLocation{GeoID: best.GeoID, Name: name},
		SummaryLevel: geo.SummaryLevelOf(best.GeoID),
		Observations: obs,
	}, nil
}

// SearchMetrics searches the metric catalog by label or title substring,
// optionally restricted to a table id or topic name. Topic labels from the
// bundled manifest are attached to each hit.
func (e *Engine) SearchMetrics(ctx context.Context, input, table string, limit int) ([]MetricMatch, int, error) {
	if input == "" && table == "" {
		return nil, 0, errors.NewInvalidParameterError("query", "query or table required")
	}

	tableIDs := []string{""}
	if table != "" {
		tableIDs = ExpandTableFilter([]string{table})
	}

	limit = e.clampLimit(limit)
	var out []MetricMatch
	total := 0
	for _, id := range tableIDs {
		defs, n, err := e.metrics.SearchDefinitions(ctx, input, id, limit)
		if err != nil {
			return nil, 0, err
		}
		total += n
		for _, d := range defs {
			if len(out) >= limit {
				break
			}
			out = append(out, MetricMatch{Definition: d, Topic: TableTopic(d.TableID)})
		}
	}
	return out, total, nil
}

// MetricMatch is one metric-search hit with its bundled topic label.
type MetricMatch struct {
	storage.Definition
	Topic string `json:"topic,omitempty"`
}
