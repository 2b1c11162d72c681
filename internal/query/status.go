package query

import (
	"context"
)

// Status summarizes the loaded dataset: row counts per catalog plus the
// store location and the configured per-query timeout.
type Status struct {
	DatabasePath string `json:"databasePath"`
	Areas        int    `json:"areas"`
	Boundaries   int    `json:"boundaries"`
	Metrics      int    `json:"metrics"`
	Observations int    `json:"observations"`
	TimeoutMs    int    `json:"timeoutMs"`
}

// GetStatus reports dataset statistics for health checks and diagnostics.
func (e *Engine) GetStatus(ctx context.Context) (*Status, error) {
	st := &Status{
		DatabasePath: e.db.Path(),
		TimeoutMs:    e.config.Query.TimeoutMs,
	}

	counts := []struct {
		table string
		dest  *int
	}{
		{"geo_areas", &st.Areas},
		{"geo_boundaries", &st.Boundaries},
		{"metric_definitions", &st.Metrics},
		{"metric_observations", &st.Observations},
	}
	for _, c := range counts {
		n, err := e.svc.Count(ctx, "status count "+c.table,
			"SELECT COUNT(*) FROM "+c.table, nil)
		if err != nil {
			return nil, err
		}
		*c.dest = n
	}
	return st, nil
}
