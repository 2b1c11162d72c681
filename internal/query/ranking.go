package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/bfs/census-acs-mcp/internal/errors"
	"github.com/bfs/census-acs-mcp/internal/geo"
)

// Unit values carried by ranking rows.
const (
	UnitCount   = "count"
	UnitPercent = "percent"
)

// RankingRequest describes one ranking/aggregation query over the metric
// catalog. MetricIDs is the numerator set; DenominatorIDs, when present,
// turns the query into a rate. More than one id on either side makes the
// request compound: estimates are summed per area before ranking.
type RankingRequest struct {
	MetricIDs       []string `json:"variables"`
	DenominatorIDs  []string `json:"denominators,omitempty"`
	Order           string   `json:"order,omitempty"`
	PercentileMin   float64  `json:"percentileMin,omitempty"`
	PercentileMax   float64  `json:"percentileMax,omitempty"`
	SummaryLevel    string   `json:"summaryLevel,omitempty"`
	StateFips       string   `json:"stateFips,omitempty"`
	PopulationGroup string   `json:"populationGroup,omitempty"`
	MinPopulation   int      `json:"minPopulation,omitempty"`
	Limit           int      `json:"limit,omitempty"`
}

// RankedRow is one area in a ranking result. NationalPercentile is present
// only on the single-metric direct branch; sums and rates have no
// precomputed percentile.
type RankedRow struct {
	GeoID              string   `json:"geoId"`
	Name               string   `json:"name"`
	Value              float64  `json:"value"`
	Unit               string   `json:"unit"`
	NationalPercentile *float64 `json:"nationalPercentile,omitempty"`
}

// RankingResult holds ranked rows plus the total match count independent of
// the page limit.
type RankingResult struct {
	Label        string      `json:"label"`
	Rows         []RankedRow `json:"rows"`
	TotalMatches int         `json:"totalMatches"`
}

// normalizeRanking validates the request and applies defaults in place.
func (e *Engine) normalizeRanking(req *RankingRequest) error {
	if len(req.MetricIDs) == 0 {
		return errors.NewInvalidParameterError("variables", "at least one metric id required")
	}
	if req.Order == "" {
		req.Order = "desc"
	}
	if !strings.EqualFold(req.Order, "asc") && !strings.EqualFold(req.Order, "desc") {
		return errors.NewInvalidParameterError("order", "must be asc or desc")
	}
	// Unset bounds default to the full band; JSON absence arrives as zero,
	// so an unset max opens to 1 the same way an unset min stays at 0.
	if req.PercentileMax == 0 {
		req.PercentileMax = 1
	}
	if req.PercentileMin < 0 || req.PercentileMax > 1 || req.PercentileMin > req.PercentileMax {
		return errors.NewInvalidParameterError("percentileMin",
			"band must satisfy 0 <= min <= max <= 1")
	}
	if req.PopulationGroup == "" {
		req.PopulationGroup = geo.TotalPopulation
	}
	if len(req.PopulationGroup) != 4 {
		return errors.NewInvalidParameterError("populationGroup", "must be a 4-character group code")
	}
	if req.MinPopulation <= 0 {
		req.MinPopulation = e.config.Query.MinPopulation
	}
	if req.SummaryLevel != "" {
		level, err := geo.LevelCode(req.SummaryLevel)
		if err != nil {
			return errors.NewInvalidParameterError("summaryLevel", err.Error())
		}
		req.SummaryLevel = level
	}
	req.Limit = e.clampLimit(req.Limit)
	return nil
}

// RankAreasByMetric ranks areas by a single metric, a compound sum, or a
// rate between two metric groups. An unknown single metric id returns
// (nil, nil): unknown entities are misses, not errors.
func (e *Engine) RankAreasByMetric(ctx context.Context, req RankingRequest) (*RankingResult, error) {
	if err := e.normalizeRanking(&req); err != nil {
		return nil, err
	}

	isCompound := len(req.MetricIDs) > 1 || len(req.DenominatorIDs) > 1

	label, err := e.rankingLabel(ctx, req.MetricIDs, isCompound)
	if err != nil {
		return nil, err
	}
	if label == "" {
		return nil, nil
	}

	var rows []RankedRow
	var total int
	switch {
	case len(req.DenominatorIDs) > 0:
		rows, total, err = e.rankRate(ctx, req)
	case isCompound:
		rows, total, err = e.rankSum(ctx, req)
	default:
		rows, total, err = e.rankDirect(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	if err := e.attachNames(ctx, rows); err != nil {
		return nil, err
	}

	return &RankingResult{Label: label, Rows: rows, TotalMatches: total}, nil
}

// rankingLabel resolves the result label. A single uncompounded metric uses
// its definition's "title: label"; anything else synthesizes a summary. An
// unknown single metric yields "" to signal a miss.
func (e *Engine) rankingLabel(ctx context.Context, metricIDs []string, isCompound bool) (string, error) {
	if !isCompound {
		def, err := e.metrics.GetDefinition(ctx, metricIDs[0])
		if err != nil {
			return "", err
		}
		if def == nil {
			return "", nil
		}
		return def.Title + ": " + def.Label, nil
	}

	shown := metricIDs
	ellipsis := ""
	if len(shown) > 3 {
		shown = shown[:3]
		ellipsis = ", ..."
	}
	return fmt.Sprintf("Sum of %d metrics (%s%s)", len(metricIDs), strings.Join(shown, ", "), ellipsis), nil
}

// rankRate implements the rate branch: numerator and denominator sums per
// area, inner-joined, value = round(n/d*100, 2). The demographic, level and
// state filters apply to the numerator's key; areas below minPopulation on
// the denominator are dropped.
func (e *Engine) rankRate(ctx context.Context, req RankingRequest) ([]RankedRow, int, error) {
	numIn := VariableIn("variable_id", req.MetricIDs)
	denIn := VariableIn("variable_id", req.DenominatorIDs)
	filters := keyFilters("n.geo_id", req.PopulationGroup, req.SummaryLevel, req.StateFips)
	filterClause, filterArgs := filters.Clause()

	base := `
		FROM (SELECT geo_id, SUM(estimate) AS total
		      FROM metric_observations WHERE ` + numIn.Expr + ` GROUP BY geo_id) n
		JOIN (SELECT geo_id, SUM(estimate) AS total
		      FROM metric_observations WHERE ` + denIn.Expr + ` GROUP BY geo_id) d
		  ON d.geo_id = n.geo_id
		WHERE d.total >= ? AND d.total > 0 AND ` + filterClause

	args := append(append([]interface{}{}, numIn.Args...), denIn.Args...)
	args = append(args, req.MinPopulation)
	args = append(args, filterArgs...)

	total, err := e.svc.Count(ctx, "rate ranking count", `SELECT COUNT(*)`+base, args)
	if err != nil {
		return nil, 0, err
	}

	q := `SELECT n.geo_id, ROUND(n.total * 100.0 / d.total, 2) AS value` + base +
		` ORDER BY value ` + orderDirection(req.Order) + `, n.geo_id ASC LIMIT ?`

	var rows []RankedRow
	err = e.svc.Query(ctx, "rate ranking", q, append(args, req.Limit),
		func(r *sql.Rows) error {
			var row RankedRow
			if err := r.Scan(&row.GeoID, &row.Value); err != nil {
				return err
			}
			row.Unit = UnitPercent
			rows = append(rows, row)
			return nil
		})
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// rankSum implements the compound branch: one summed value per area across
// all metric ids, no denominator.
func (e *Engine) rankSum(ctx context.Context, req RankingRequest) ([]RankedRow, int, error) {
	in := VariableIn("variable_id", req.MetricIDs)
	filters := keyFilters("geo_id", req.PopulationGroup, req.SummaryLevel, req.StateFips)
	filterClause, filterArgs := filters.Clause()

	where := ` FROM metric_observations WHERE ` + in.Expr + ` AND ` + filterClause
	args := append(append([]interface{}{}, in.Args...), filterArgs...)

	total, err := e.svc.Count(ctx, "sum ranking count",
		`SELECT COUNT(DISTINCT geo_id)`+where, args)
	if err != nil {
		return nil, 0, err
	}

	q := `SELECT geo_id, SUM(estimate) AS value` + where +
		` GROUP BY geo_id ORDER BY value ` + orderDirection(req.Order) + `, geo_id ASC LIMIT ?`

	var rows []RankedRow
	err = e.svc.Query(ctx, "sum ranking", q, append(args, req.Limit),
		func(r *sql.Rows) error {
			var row RankedRow
			if err := r.Scan(&row.GeoID, &row.Value); err != nil {
				return err
			}
			row.Unit = UnitCount
			rows = append(rows, row)
			return nil
		})
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// rankDirect implements the single-metric branch over raw observations:
// percentile-band filter, exact level/state column equality, sorted by the
// precomputed national percentile, which carries into each row.
func (e *Engine) rankDirect(ctx context.Context, req RankingRequest) ([]RankedRow, int, error) {
	filters := PredicateList{
		{Expr: "variable_id = ?", Args: []interface{}{req.MetricIDs[0]}},
		PercentileBetween("national_percentile", req.PercentileMin, req.PercentileMax),
	}
	filters = append(filters, observationFilters(req.PopulationGroup, req.SummaryLevel, req.StateFips)...)
	clause, args := filters.Clause()

	where := ` FROM metric_observations WHERE ` + clause

	total, err := e.svc.Count(ctx, "direct ranking count", `SELECT COUNT(*)`+where, args)
	if err != nil {
		return nil, 0, err
	}

	q := `SELECT geo_id, estimate, national_percentile` + where +
		` ORDER BY national_percentile ` + orderDirection(req.Order) + `, geo_id ASC LIMIT ?`

	var rows []RankedRow
	err = e.svc.Query(ctx, "direct ranking", q, append(args, req.Limit),
		func(r *sql.Rows) error {
			var row RankedRow
			var pct float64
			if err := r.Scan(&row.GeoID, &row.Value, &pct); err != nil {
				return err
			}
			row.Unit = UnitCount
			row.NationalPercentile = &pct
			rows = append(rows, row)
			return nil
		})
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// attachNames resolves display names for ranked rows in one batch, falling
// back to the raw key for areas absent from the catalog (derived or
// synthetic keys rank fine without a bundled name).
func (e *Engine) attachNames(ctx context.Context, rows []RankedRow) error {
	if len(rows) == 0 {
		return nil
	}
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.GeoID
	}
	names, err := e.areas.NamesForKeys(ctx, keys)
	if err != nil {
		return err
	}
	for i := range rows {
		if name, ok := names[rows[i].GeoID]; ok {
			rows[i].Name = name
		} else {
			rows[i].Name = rows[i].GeoID
		}
	}
	return nil
}
