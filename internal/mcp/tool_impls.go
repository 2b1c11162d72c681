package mcp

import (
	"context"
	"fmt"

	"github.com/bfs/census-acs-mcp/internal/envelope"
	"github.com/bfs/census-acs-mcp/internal/errors"
	"github.com/bfs/census-acs-mcp/internal/query"
)

// Warning codes attached to miss responses.
const (
	warnNoMatch       = "NO_MATCH"
	warnUnknownMetric = "UNKNOWN_METRIC"
)

func stringParam(params map[string]interface{}, key string) string {
	v, _ := params[key].(string)
	return v
}

func intParam(params map[string]interface{}, key string) int {
	// JSON numbers arrive as float64
	if v, ok := params[key].(float64); ok {
		return int(v)
	}
	return 0
}

func floatParam(params map[string]interface{}, key string) (float64, bool) {
	v, ok := params[key].(float64)
	return v, ok
}

func stringSliceParam(params map[string]interface{}, key string) ([]string, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, errors.NewInvalidParameterError(key, "expected an array of strings")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, errors.NewInvalidParameterError(key, fmt.Sprintf("expected a string, got %T", item))
		}
		out = append(out, s)
	}
	return out, nil
}

// toolResolveLocation implements the resolveLocation tool
func (s *Server) toolResolveLocation(params map[string]interface{}) (*envelope.Response, error) {
	loc, err := s.engine.ResolveLocation(context.Background(),
		stringParam(params, "location"), stringParam(params, "level"))
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return envelope.New().Data(nil).
			WarningCode(warnNoMatch, "no area matched the input").
			Build(), nil
	}
	return envelope.New().Data(loc).Build(), nil
}

// toolSearchLocations implements the searchLocations tool
func (s *Server) toolSearchLocations(params map[string]interface{}) (*envelope.Response, error) {
	res, err := s.engine.SearchLocations(context.Background(),
		stringParam(params, "query"), stringParam(params, "level"), intParam(params, "limit"))
	if err != nil {
		return nil, err
	}

	b := envelope.New().Data(res)
	if len(res.Matches) < res.Total {
		b.Warning(fmt.Sprintf("showing %d of %d matches", len(res.Matches), res.Total))
	}
	return b.Build(), nil
}

// toolListGeographies implements the listGeographies tool
func (s *Server) toolListGeographies(params map[string]interface{}) (*envelope.Response, error) {
	list, err := s.engine.ListGeographies(context.Background(),
		stringParam(params, "level"), stringParam(params, "parentGeoId"), intParam(params, "limit"))
	if err != nil {
		return nil, err
	}

	b := envelope.New().Data(list)
	if len(list.Areas) < list.Total {
		b.Warning(fmt.Sprintf("showing %d of %d areas", len(list.Areas), list.Total))
	}
	return b.Build(), nil
}

// toolLookupCoordinates implements the lookupCoordinates tool
func (s *Server) toolLookupCoordinates(params map[string]interface{}) (*envelope.Response, error) {
	lat, latOK := floatParam(params, "latitude")
	lon, lonOK := floatParam(params, "longitude")
	if !latOK {
		return nil, errors.NewInvalidParameterError("latitude", "required number")
	}
	if !lonOK {
		return nil, errors.NewInvalidParameterError("longitude", "required number")
	}
	tables, err := stringSliceParam(params, "tables")
	if err != nil {
		return nil, err
	}

	hit, err := s.engine.LookupCoordinates(context.Background(), lat, lon, tables)
	if err != nil {
		return nil, err
	}
	if hit == nil {
		return envelope.New().Data(nil).
			WarningCode(warnNoMatch, "no boundary contains the point").
			Build(), nil
	}
	return envelope.New().Data(hit).Build(), nil
}

// toolRankAreasByMetric implements the rankAreasByMetric tool
func (s *Server) toolRankAreasByMetric(params map[string]interface{}) (*envelope.Response, error) {
	variables, err := stringSliceParam(params, "variables")
	if err != nil {
		return nil, err
	}
	denominators, err := stringSliceParam(params, "denominators")
	if err != nil {
		return nil, err
	}

	req := query.RankingRequest{
		MetricIDs:       variables,
		DenominatorIDs:  denominators,
		Order:           stringParam(params, "order"),
		SummaryLevel:    stringParam(params, "summaryLevel"),
		StateFips:       stringParam(params, "stateFips"),
		PopulationGroup: stringParam(params, "populationGroup"),
		MinPopulation:   intParam(params, "minPopulation"),
		Limit:           intParam(params, "limit"),
	}
	if v, ok := floatParam(params, "percentileMin"); ok {
		req.PercentileMin = v
	}
	if v, ok := floatParam(params, "percentileMax"); ok {
		req.PercentileMax = v
	}

	res, err := s.engine.RankAreasByMetric(context.Background(), req)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return envelope.New().Data(nil).
			WarningCode(warnUnknownMetric, "no metric definition matched the requested variable").
			Build(), nil
	}

	b := envelope.New().Data(res)
	if len(res.Rows) < res.TotalMatches {
		b.Warning(fmt.Sprintf("showing %d of %d ranked areas", len(res.Rows), res.TotalMatches))
	}
	return b.Build(), nil
}

// toolSearchMetrics implements the searchMetrics tool
func (s *Server) toolSearchMetrics(params map[string]interface{}) (*envelope.Response, error) {
	matches, total, err := s.engine.SearchMetrics(context.Background(),
		stringParam(params, "query"), stringParam(params, "table"), intParam(params, "limit"))
	if err != nil {
		return nil, err
	}

	b := envelope.New().Data(map[string]interface{}{
		"matches": matches,
		"total":   total,
	})
	if len(matches) < total {
		b.Warning(fmt.Sprintf("showing %d of %d metrics", len(matches), total))
	}
	return b.Build(), nil
}

// toolGetStatus implements the getStatus tool
func (s *Server) toolGetStatus(params map[string]interface{}) (*envelope.Response, error) {
	st, err := s.engine.GetStatus(context.Background())
	if err != nil {
		return nil, err
	}
	return envelope.New().Data(st).Build(), nil
}
