package mcp

import "github.com/bfs/census-acs-mcp/internal/envelope"

// Tool represents a census-mcp tool exposed via MCP
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolHandler is a function that handles a tool call and returns an envelope response.
type ToolHandler func(params map[string]interface{}) (*envelope.Response, error)

// RegisterTools wires every tool name to its handler
func (s *Server) RegisterTools() {
	s.tools["resolveLocation"] = s.toolResolveLocation
	s.tools["searchLocations"] = s.toolSearchLocations
	s.tools["listGeographies"] = s.toolListGeographies
	s.tools["lookupCoordinates"] = s.toolLookupCoordinates
	s.tools["rankAreasByMetric"] = s.toolRankAreasByMetric
	s.tools["searchMetrics"] = s.toolSearchMetrics
	s.tools["getStatus"] = s.toolGetStatus
}

// GetToolDefinitions returns all tool definitions
func (s *Server) GetToolDefinitions() []Tool {
	levelProperty := map[string]interface{}{
		"type":        "string",
		"description": "Summary level, as a code ('050') or a name ('county', 'state', 'tract', 'block group', 'metro', 'zip')",
	}

	return []Tool{
		{
			Name:        "resolveLocation",
			Description: "Resolve a location string (place name, 5-digit ZIP, or raw geographic key) to a single canonical geographic area",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"location": map[string]interface{}{
						"type":        "string",
						"description": "Place name, ZIP code, or geographic key (e.g. '0500000US06037')",
					},
					"level": levelProperty,
				},
				"required": []string{"location"},
			},
		},
		{
			Name:        "searchLocations",
			Description: "Search geographic areas by name (case-insensitive substring) and return ranked matches",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Name fragment to search for",
					},
					"level": levelProperty,
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum matches to return",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        "listGeographies",
			Description: "List geographic areas at one summary level, optionally restricted to a parent area's state",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"level": levelProperty,
					"parentGeoId": map[string]interface{}{
						"type":        "string",
						"description": "Geographic key of a parent area; results are limited to its state",
					},
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum areas to return",
					},
				},
				"required": []string{"level"},
			},
		},
		{
			Name:        "lookupCoordinates",
			Description: "Find the most specific geographic area containing a latitude/longitude point and return its statistics",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"latitude": map[string]interface{}{
						"type":        "number",
						"description": "Latitude in decimal degrees, [-90, 90]",
					},
					"longitude": map[string]interface{}{
						"type":        "number",
						"description": "Longitude in decimal degrees, [-180, 180]",
					},
					"tables": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Optional table ids (e.g. 'B08301') or topic names (e.g. 'commuting') to filter the returned statistics",
					},
				},
				"required": []string{"latitude", "longitude"},
			},
		},
		{
			Name:        "rankAreasByMetric",
			Description: "Rank geographic areas by a metric, a sum of metrics, or a rate between two metric groups",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"variables": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Metric variable ids to rank by; more than one is summed per area",
					},
					"denominators": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Denominator variable ids; when present the result is a percentage rate",
					},
					"order": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"asc", "desc"},
						"default":     "desc",
						"description": "Sort direction",
					},
					"percentileMin": map[string]interface{}{
						"type":        "number",
						"description": "Lower bound of the national percentile band, 0 to 1 (single-metric rankings only)",
					},
					"percentileMax": map[string]interface{}{
						"type":        "number",
						"description": "Upper bound of the national percentile band, 0 to 1",
					},
					"summaryLevel": levelProperty,
					"stateFips": map[string]interface{}{
						"type":        "string",
						"description": "2-digit state FIPS code to restrict results to",
					},
					"populationGroup": map[string]interface{}{
						"type":        "string",
						"description": "4-character demographic group code; defaults to the total population ('0000')",
					},
					"minPopulation": map[string]interface{}{
						"type":        "integer",
						"description": "Minimum denominator total for rate rankings; small areas below it are dropped",
					},
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum ranked rows to return",
					},
				},
				"required": []string{"variables"},
			},
		},
		{
			Name:        "searchMetrics",
			Description: "Search the metric catalog by label or title, optionally restricted to a table id or topic name",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Label or title fragment to search for",
					},
					"table": map[string]interface{}{
						"type":        "string",
						"description": "Table id or topic name to restrict the search to",
					},
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum matches to return",
					},
				},
			},
		},
		{
			Name:        "getStatus",
			Description: "Get census-mcp dataset statistics: loaded area, boundary, metric and observation counts",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}
