package journey

import (
	"errors"

	"backend-globetrekker/internal/shared/geo"
)

// ErrEmptyRoute is returned when a polyline is built from zero points.
var ErrEmptyRoute = errors.New("route has no points")

// Polyline is an immutable road-following path. Cumulative distances are
// computed once at construction, so lookups only walk the cached sums. A
// single-point polyline is allowed and represents a not-yet-routed journey.
type Polyline struct {
	points []geo.Point
	cum    []float64 // cum[i] = km from points[0] through points[i]
}

// NewPolyline validates and indexes an ordered point sequence.
func NewPolyline(points []geo.Point) (*Polyline, error) {
	if len(points) == 0 {
		return nil, ErrEmptyRoute
	}
	for _, p := range points {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	pl := &Polyline{
		points: append([]geo.Point(nil), points...),
		cum:    make([]float64, len(points)),
	}
	for i := 1; i < len(pl.points); i++ {
		pl.cum[i] = pl.cum[i-1] + geo.DistanceKm(pl.points[i-1], pl.points[i])
	}
	return pl, nil
}

// Points returns a copy of the polyline's vertices.
func (p *Polyline) Points() []geo.Point {
	return append([]geo.Point(nil), p.points...)
}

// Len returns the number of vertices.
func (p *Polyline) Len() int {
	return len(p.points)
}

// TotalKm returns the full route length.
func (p *Polyline) TotalKm() float64 {
	return p.cum[len(p.cum)-1]
}

// PositionAt returns the position d kilometers along the route, linearly
// blending latitude and longitude between the bracketing vertices. Road
// segments are short enough that the linear blend stays within rendering
// accuracy. Out-of-range distances clamp to the route's endpoints.
func (p *Polyline) PositionAt(d float64) geo.Point {
	if d <= 0 || len(p.points) < 2 {
		return p.points[0]
	}
	if d >= p.TotalKm() {
		return p.points[len(p.points)-1]
	}

	for i := 1; i < len(p.cum); i++ {
		if d > p.cum[i] {
			continue
		}
		segLen := p.cum[i] - p.cum[i-1]
		if segLen == 0 {
			// duplicate vertex
			continue
		}
		ratio := (d - p.cum[i-1]) / segLen
		a, b := p.points[i-1], p.points[i]
		return geo.Point{
			Lat: a.Lat + (b.Lat-a.Lat)*ratio,
			Lng: a.Lng + (b.Lng-a.Lng)*ratio,
		}
	}
	return p.points[len(p.points)-1]
}

// SplitIndexAt returns the index of the last vertex whose cumulative distance
// is at most d. Renderers slice the polyline there to draw the completed and
// pending halves.
func (p *Polyline) SplitIndexAt(d float64) int {
	if d <= 0 || len(p.points) < 2 {
		return 0
	}
	idx := 0
	for i := 1; i < len(p.cum); i++ {
		if p.cum[i] > d {
			break
		}
		idx = i
	}
	return idx
}

// SegmentBetween returns the sub-polyline between two cumulative distances,
// with both boundary points exactly interpolated rather than rounded to the
// nearest vertex. Distances clamp to [0, TotalKm], so a segment requested
// past the route's end stops at the route's physical end. An inverted or
// empty window yields nil.
func (p *Polyline) SegmentBetween(startKm, endKm float64) []geo.Point {
	total := p.TotalKm()
	startKm = clampKm(startKm, total)
	endKm = clampKm(endKm, total)
	if startKm >= endKm {
		return nil
	}

	segment := []geo.Point{p.PositionAt(startKm)}
	for i := 1; i < len(p.cum); i++ {
		if p.cum[i] > startKm && p.cum[i] < endKm {
			segment = append(segment, p.points[i])
		}
	}
	return append(segment, p.PositionAt(endKm))
}

func clampKm(d, total float64) float64 {
	if d < 0 {
		return 0
	}
	if d > total {
		return total
	}
	return d
}
