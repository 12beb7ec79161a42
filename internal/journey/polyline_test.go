package journey

import (
	"math"
	"testing"

	"backend-globetrekker/internal/shared/geo"
)

func meridianRoute(t *testing.T) *Polyline {
	t.Helper()
	// consecutive points one degree apart along the equator, ~111.19 km each
	pl, err := NewPolyline([]geo.Point{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 0, Lng: 2}})
	if err != nil {
		t.Fatalf("build polyline: %v", err)
	}
	return pl
}

func TestNewPolylineEmpty(t *testing.T) {
	if _, err := NewPolyline(nil); err != ErrEmptyRoute {
		t.Fatalf("expected ErrEmptyRoute, got %v", err)
	}
}

func TestNewPolylineInvalidPoint(t *testing.T) {
	_, err := NewPolyline([]geo.Point{{Lat: 95, Lng: 0}})
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestNewPolylineSinglePoint(t *testing.T) {
	pl, err := NewPolyline([]geo.Point{{Lat: 8.0883, Lng: 77.5385}})
	if err != nil {
		t.Fatalf("build degenerate polyline: %v", err)
	}
	if pl.TotalKm() != 0 {
		t.Fatalf("expected zero length")
	}
	pos := pl.PositionAt(50)
	if pos.Lat != 8.0883 {
		t.Fatalf("expected the only point back, got %+v", pos)
	}
	if pl.SplitIndexAt(50) != 0 {
		t.Fatalf("expected split index 0 for degenerate route")
	}
}

func TestPositionAtEndpoints(t *testing.T) {
	pl := meridianRoute(t)
	total := pl.TotalKm()
	if total < 222 || total > 223 {
		t.Fatalf("unexpected route total: %v", total)
	}

	first := pl.PositionAt(0)
	if first.Lat != 0 || first.Lng != 0 {
		t.Fatalf("expected first point at distance 0, got %+v", first)
	}
	last := pl.PositionAt(total)
	if last.Lng != 2 {
		t.Fatalf("expected last point at total distance, got %+v", last)
	}
}

func TestPositionAtInterpolates(t *testing.T) {
	pl := meridianRoute(t)

	// one degree at the equator is ~111.19 km
	atVertex := pl.PositionAt(111.19)
	if math.Abs(atVertex.Lng-1) > 1e-3 {
		t.Fatalf("expected ~[0,1], got %+v", atVertex)
	}

	mid := pl.PositionAt(50)
	if math.Abs(mid.Lng-0.45) > 1e-3 {
		t.Fatalf("expected ~[0,0.45], got %+v", mid)
	}
	if mid.Lat != 0 {
		t.Fatalf("expected latitude 0, got %v", mid.Lat)
	}
}

func TestPositionAtIsPure(t *testing.T) {
	pl := meridianRoute(t)
	a := pl.PositionAt(42.5)
	b := pl.PositionAt(42.5)
	if a != b {
		t.Fatalf("expected identical results for repeated calls")
	}
}

func TestPositionAtClampsBeyondRoute(t *testing.T) {
	pl := meridianRoute(t)
	beyond := pl.PositionAt(pl.TotalKm() + 500)
	atEnd := pl.PositionAt(pl.TotalKm())
	if beyond != atEnd {
		t.Fatalf("expected clamped position, got %+v vs %+v", beyond, atEnd)
	}
}

func TestPositionAtMonotonic(t *testing.T) {
	pl := meridianRoute(t)
	prev := pl.PositionAt(0)
	for d := 10.0; d < pl.TotalKm(); d += 10 {
		cur := pl.PositionAt(d)
		if cur.Lng <= prev.Lng {
			t.Fatalf("expected strictly advancing longitude at %v km", d)
		}
		prev = cur
	}
}

func TestPositionAtDuplicateVertex(t *testing.T) {
	pl, err := NewPolyline([]geo.Point{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 0, Lng: 1}, {Lat: 0, Lng: 2}})
	if err != nil {
		t.Fatalf("build polyline: %v", err)
	}
	pos := pl.PositionAt(150)
	if math.IsNaN(pos.Lat) || math.IsNaN(pos.Lng) {
		t.Fatalf("expected finite position across duplicate vertex, got %+v", pos)
	}
	if pos.Lng <= 1 || pos.Lng >= 2 {
		t.Fatalf("expected position in final segment, got %+v", pos)
	}
}

func TestSplitIndexAt(t *testing.T) {
	pl := meridianRoute(t)

	if idx := pl.SplitIndexAt(0); idx != 0 {
		t.Fatalf("expected 0 at start, got %d", idx)
	}
	if idx := pl.SplitIndexAt(-5); idx != 0 {
		t.Fatalf("expected 0 for negative distance, got %d", idx)
	}
	if idx := pl.SplitIndexAt(50); idx != 0 {
		t.Fatalf("expected 0 inside first segment, got %d", idx)
	}
	if idx := pl.SplitIndexAt(150); idx != 1 {
		t.Fatalf("expected 1 inside second segment, got %d", idx)
	}
	if idx := pl.SplitIndexAt(10000); idx != 2 {
		t.Fatalf("expected last index beyond route, got %d", idx)
	}
}

func TestSegmentBetween(t *testing.T) {
	pl := meridianRoute(t)

	segment := pl.SegmentBetween(50, 170)
	if len(segment) != 3 {
		t.Fatalf("expected boundary points plus interior vertex, got %d", len(segment))
	}
	if math.Abs(segment[1].Lng-1) > 1e-9 {
		t.Fatalf("expected interior vertex [0,1], got %+v", segment[1])
	}

	// arc length of the returned segment matches the requested window
	var length float64
	for i := 1; i < len(segment); i++ {
		length += geo.DistanceKm(segment[i-1], segment[i])
	}
	if math.Abs(length-120) > 0.01 {
		t.Fatalf("expected segment length ~120 km, got %v", length)
	}
}

func TestSegmentBetweenClampsToRouteEnd(t *testing.T) {
	pl := meridianRoute(t)
	segment := pl.SegmentBetween(200, 500)
	if len(segment) < 2 {
		t.Fatalf("expected a segment, got %d points", len(segment))
	}
	end := segment[len(segment)-1]
	if end.Lng != 2 {
		t.Fatalf("expected segment to stop at route end, got %+v", end)
	}

	var length float64
	for i := 1; i < len(segment); i++ {
		length += geo.DistanceKm(segment[i-1], segment[i])
	}
	if length > pl.TotalKm()-200+0.01 {
		t.Fatalf("expected truncated segment, got %v km", length)
	}
}

func TestSegmentBetweenInvertedWindow(t *testing.T) {
	pl := meridianRoute(t)
	if seg := pl.SegmentBetween(100, 100); seg != nil {
		t.Fatalf("expected nil for empty window")
	}
	if seg := pl.SegmentBetween(150, 50); seg != nil {
		t.Fatalf("expected nil for inverted window")
	}
}

func TestPointsReturnsCopy(t *testing.T) {
	pl := meridianRoute(t)
	pts := pl.Points()
	pts[0].Lat = 99
	if pl.Points()[0].Lat == 99 {
		t.Fatalf("expected Points to return a copy")
	}
}
