package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/bfs/census-acs-mcp/internal/geo"
)

// Boundary is an area's polygon with its decoded rings.
type Boundary struct {
	GeoID   string
	Polygon geo.Polygon
}

// Polygon rings are large relative to the rest of a row, so they are stored
// zstd-compressed. The encoder and decoder are stateless in EncodeAll /
// DecodeAll mode and safe for concurrent use.
var (
	ringEncoder, _ = zstd.NewWriter(nil)
	ringDecoder, _ = zstd.NewReader(nil)
)

// EncodeRings serializes and compresses a polygon for storage.
func EncodeRings(p geo.Polygon) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rings: %w", err)
	}
	return ringEncoder.EncodeAll(raw, nil), nil
}

// DecodeRings decompresses and deserializes a stored polygon.
func DecodeRings(blob []byte) (geo.Polygon, error) {
	raw, err := ringDecoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress rings: %w", err)
	}
	var p geo.Polygon
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode rings: %w", err)
	}
	return p, nil
}

// BoundaryCatalog provides read access to area polygon boundaries.
type BoundaryCatalog struct {
	svc *Service
}

// NewBoundaryCatalog creates a boundary catalog over the query service.
func NewBoundaryCatalog(svc *Service) *BoundaryCatalog {
	return &BoundaryCatalog{svc: svc}
}

// CandidatesAt returns every boundary whose bounding box contains the point.
// Bounding boxes over-approximate; callers confirm containment against the
// decoded rings.
func (c *BoundaryCatalog) CandidatesAt(ctx context.Context, lon, lat float64) ([]Boundary, error) {
	var candidates []Boundary
	err := c.svc.Query(ctx, "boundary candidates",
		`SELECT geo_id, rings FROM geo_boundaries
		 WHERE min_lon <= ? AND max_lon >= ? AND min_lat <= ? AND max_lat >= ?`,
		[]interface{}{lon, lon, lat, lat},
		func(rows *sql.Rows) error {
			var id string
			var blob []byte
			if err := rows.Scan(&id, &blob); err != nil {
				return err
			}
			poly, err := DecodeRings(blob)
			if err != nil {
				return err
			}
			candidates = append(candidates, Boundary{GeoID: id, Polygon: poly})
			return nil
		})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}
