package geo

// Ring is a closed polygon ring of [lon, lat] vertices. The closing vertex
// may be present or omitted; containment treats the ring as closed either way.
type Ring [][2]float64

// Polygon is one or more rings. The first ring is the outer boundary; any
// further rings are holes.
type Polygon []Ring

// Contains reports whether the point (lon, lat) falls inside the polygon,
// using even-odd ray casting across all rings so holes subtract.
func (p Polygon) Contains(lon, lat float64) bool {
	inside := false
	for _, ring := range p {
		if ring.crosses(lon, lat) {
			inside = !inside
		}
	}
	return inside
}

// crosses reports whether a ray from (lon, lat) to the east crosses the ring
// an odd number of times.
func (r Ring) crosses(lon, lat float64) bool {
	odd := false
	n := len(r)
	if n < 3 {
		return false
	}
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := r[i][0], r[i][1]
		xj, yj := r[j][0], r[j][1]
		if (yi > lat) != (yj > lat) &&
			lon < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			odd = !odd
		}
		j = i
	}
	return odd
}

// BoundingBox returns the min/max lon/lat of the polygon's outer ring.
func (p Polygon) BoundingBox() (minLon, minLat, maxLon, maxLat float64) {
	if len(p) == 0 || len(p[0]) == 0 {
		return 0, 0, 0, 0
	}
	minLon, minLat = p[0][0][0], p[0][0][1]
	maxLon, maxLat = minLon, minLat
	for _, v := range p[0] {
		if v[0] < minLon {
			minLon = v[0]
		}
		if v[0] > maxLon {
			maxLon = v[0]
		}
		if v[1] < minLat {
			minLat = v[1]
		}
		if v[1] > maxLat {
			maxLat = v[1]
		}
	}
	return minLon, minLat, maxLon, maxLat
}
