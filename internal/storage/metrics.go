package storage

import (
	"context"
	"database/sql"
	"strings"
)

// Definition is one row of the metric catalog: a single ACS statistic.
// TableID groups related variables (all rows of one survey table).
type Definition struct {
	VariableID string `json:"variableId"`
	TableID    string `json:"tableId"`
	Line       int64  `json:"line"`
	Label      string `json:"label"`
	Title      string `json:"title"`
	Universe   string `json:"universe,omitempty"`
}

// AreaObservation is a metric value observed for one area, joined with its
// definition for display.
type AreaObservation struct {
	VariableID         string   `json:"variableId"`
	TableID            string   `json:"tableId"`
	Label              string   `json:"label"`
	Title              string   `json:"title"`
	Estimate           float64  `json:"estimate"`
	NationalPercentile *float64 `json:"nationalPercentile,omitempty"`
}

// MetricCatalog provides read access to metric definitions and observations.
type MetricCatalog struct {
	svc *Service
}

// NewMetricCatalog creates a metric catalog over the query service.
func NewMetricCatalog(svc *Service) *MetricCatalog {
	return &MetricCatalog{svc: svc}
}

// GetDefinition fetches a metric definition by variable id. Returns nil when
// the id is unknown.
func (c *MetricCatalog) GetDefinition(ctx context.Context, variableID string) (*Definition, error) {
	var d Definition
	found, err := c.svc.QueryRow(ctx, "metric definition lookup",
		`SELECT variable_id, table_id, line, label, title, universe
		 FROM metric_definitions WHERE variable_id = ?`,
		[]interface{}{variableID},
		&d.VariableID, &d.TableID, &d.Line, &d.Label, &d.Title, &d.Universe)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &d, nil
}

// SearchDefinitions finds definitions whose label or title contains query
// (case-insensitive), optionally restricted to one table. Results sort by
// table then line so a table's rows read in survey order.
func (c *MetricCatalog) SearchDefinitions(ctx context.Context, query, tableID string, limit int) ([]Definition, int, error) {
	where := `WHERE (instr(lower(label), lower(?)) > 0 OR instr(lower(title), lower(?)) > 0)`
	args := []interface{}{query, query}
	if tableID != "" {
		where += ` AND table_id = ?`
		args = append(args, tableID)
	}

	total, err := c.svc.Count(ctx, "metric search count",
		`SELECT COUNT(*) FROM metric_definitions `+where, args)
	if err != nil {
		return nil, 0, err
	}

	var defs []Definition
	err = c.svc.Query(ctx, "metric search",
		`SELECT variable_id, table_id, line, label, title, universe
		 FROM metric_definitions `+where+` ORDER BY table_id, line LIMIT ?`,
		append(args, limit),
		func(rows *sql.Rows) error {
			var d Definition
			if err := rows.Scan(&d.VariableID, &d.TableID, &d.Line, &d.Label, &d.Title, &d.Universe); err != nil {
				return err
			}
			defs = append(defs, d)
			return nil
		})
	if err != nil {
		return nil, 0, err
	}
	return defs, total, nil
}

// ObservationsForArea fetches every observation for one area key, joined with
// definitions, optionally filtered to a set of table ids.
func (c *MetricCatalog) ObservationsForArea(ctx context.Context, geoID string, tableIDs []string) ([]AreaObservation, error) {
	q := `SELECT o.variable_id, d.table_id, d.label, d.title, o.estimate, o.national_percentile
	      FROM metric_observations o
	      JOIN metric_definitions d ON d.variable_id = o.variable_id
	      WHERE o.geo_id = ?`
	args := []interface{}{geoID}

	if len(tableIDs) > 0 {
		placeholders := strings.Repeat("?,", len(tableIDs)-1) + "?"
		q += ` AND d.table_id IN (` + placeholders + `)`
		for _, t := range tableIDs {
			args = append(args, t)
		}
	}
	q += ` ORDER BY d.table_id, d.line`

	var obs []AreaObservation
	err := c.svc.Query(ctx, "area observations", q, args,
		func(rows *sql.Rows) error {
			var o AreaObservation
			var pct sql.NullFloat64
			if err := rows.Scan(&o.VariableID, &o.TableID, &o.Label, &o.Title, &o.Estimate, &pct); err != nil {
				return err
			}
			if pct.Valid {
				v := pct.Float64
				o.NationalPercentile = &v
			}
			obs = append(obs, o)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return obs, nil
}
