package storage

import (
	"context"
	"database/sql"
	"strings"

	"github.com/bfs/census-acs-mcp/internal/geo"
)

// Area is one row of the geographic catalog.
type Area struct {
	GeoID        string `json:"geoId"`
	Name         string `json:"name"`
	SummaryLevel string `json:"summaryLevel"`
}

// AreaCatalog provides read access to the geographic areas table.
type AreaCatalog struct {
	svc *Service
}

// NewAreaCatalog creates an area catalog over the query service.
func NewAreaCatalog(svc *Service) *AreaCatalog {
	return &AreaCatalog{svc: svc}
}

// GetByKey fetches an area by exact key equality. Returns nil when the key
// is not in the catalog.
func (c *AreaCatalog) GetByKey(ctx context.Context, key string) (*Area, error) {
	var a Area
	found, err := c.svc.QueryRow(ctx, "area lookup",
		`SELECT geo_id, name, summary_level FROM geo_areas WHERE geo_id = ?`,
		[]interface{}{key},
		&a.GeoID, &a.Name, &a.SummaryLevel)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &a, nil
}

// searchOrder ranks name-search candidates: states before metros before
// counties before everything else, then shorter display names first. The
// trailing name/geo_id keys make equal-length ties deterministic.
const searchOrder = `
	ORDER BY CASE summary_level
		WHEN '` + geo.LevelState + `'  THEN 0
		WHEN '` + geo.LevelMetro + `'  THEN 1
		WHEN '` + geo.LevelCounty + `' THEN 2
		ELSE 3 END,
	length(name), name, geo_id`

// SearchByName finds canonical areas whose display name contains query
// (case-insensitive). level restricts to one summary level when non-empty.
// Returns up to limit ranked matches plus the total ignoring limit.
func (c *AreaCatalog) SearchByName(ctx context.Context, query, level string, limit int) ([]Area, int, error) {
	where := `WHERE instr(lower(name), lower(?)) > 0 AND substr(geo_id, 4, 4) = ?`
	args := []interface{}{query, geo.TotalPopulation}
	if level != "" {
		where += ` AND summary_level = ?`
		args = append(args, level)
	}

	total, err := c.svc.Count(ctx, "name search count",
		`SELECT COUNT(*) FROM geo_areas `+where, args)
	if err != nil {
		return nil, 0, err
	}

	var areas []Area
	err = c.svc.Query(ctx, "name search",
		`SELECT geo_id, name, summary_level FROM geo_areas `+where+searchOrder+` LIMIT ?`,
		append(args, limit),
		func(rows *sql.Rows) error {
			var a Area
			if err := rows.Scan(&a.GeoID, &a.Name, &a.SummaryLevel); err != nil {
				return err
			}
			areas = append(areas, a)
			return nil
		})
	if err != nil {
		return nil, 0, err
	}
	return areas, total, nil
}

// ListByLevel lists canonical areas at one summary level sorted by display
// name. stateFips, when non-empty, keeps only areas whose FIPS suffix starts
// with that state code. This discriminates by state only: a county parent and
// its state parent produce the same filter, which is an accepted
// approximation of parentage.
func (c *AreaCatalog) ListByLevel(ctx context.Context, level, stateFips string, limit int) ([]Area, int, error) {
	where := `WHERE summary_level = ? AND substr(geo_id, 4, 4) = ?`
	args := []interface{}{level, geo.TotalPopulation}
	if stateFips != "" {
		where += ` AND substr(geo_id, 10, 2) = ?`
		args = append(args, stateFips)
	}

	total, err := c.svc.Count(ctx, "geography list count",
		`SELECT COUNT(*) FROM geo_areas `+where, args)
	if err != nil {
		return nil, 0, err
	}

	var areas []Area
	err = c.svc.Query(ctx, "geography list",
		`SELECT geo_id, name, summary_level FROM geo_areas `+where+` ORDER BY name, geo_id LIMIT ?`,
		append(args, limit),
		func(rows *sql.Rows) error {
			var a Area
			if err := rows.Scan(&a.GeoID, &a.Name, &a.SummaryLevel); err != nil {
				return err
			}
			areas = append(areas, a)
			return nil
		})
	if err != nil {
		return nil, 0, err
	}
	return areas, total, nil
}

// NamesForKeys batch-resolves display names for a set of keys. Keys absent
// from the catalog are simply missing from the result map.
func (c *AreaCatalog) NamesForKeys(ctx context.Context, keys []string) (map[string]string, error) {
	names := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return names, nil
	}

	placeholders := strings.Repeat("?,", len(keys)-1) + "?"
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	err := c.svc.Query(ctx, "name batch lookup",
		`SELECT geo_id, name FROM geo_areas WHERE geo_id IN (`+placeholders+`)`,
		args,
		func(rows *sql.Rows) error {
			var id, name string
			if err := rows.Scan(&id, &name); err != nil {
				return err
			}
			names[id] = name
			return nil
		})
	if err != nil {
		return nil, err
	}
	return names, nil
}
