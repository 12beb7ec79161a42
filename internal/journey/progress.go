package journey

import "backend-globetrekker/internal/shared/geo"

// Projection maps the ledger's total onto the route for rendering: where the
// marker sits, how much of the polyline is done, and where to split the line.
type Projection struct {
	Position        geo.Point `json:"position"`
	PercentComplete float64   `json:"percent_complete"`
	SplitIndex      int       `json:"split_index"`
	RemainingKm     float64   `json:"remaining_km"`
}

// Project computes the projection for totalKm walked. Before any progress is
// made, or while routing is incomplete, the raw geocoded start point is
// reported instead of the route's first vertex: the snapped-to-road vertex
// can sit slightly off the place the user actually named.
func Project(totalKm float64, route *Polyline, start geo.Point) Projection {
	if route == nil || totalKm <= 0 {
		return Projection{Position: start, RemainingKm: routeTotal(route)}
	}

	routeKm := route.TotalKm()
	var percent float64
	if routeKm > 0 {
		percent = totalKm / routeKm * 100
		if percent > 100 {
			percent = 100
		}
	}
	remaining := routeKm - totalKm
	if remaining < 0 {
		remaining = 0
	}

	return Projection{
		Position:        route.PositionAt(totalKm),
		PercentComplete: percent,
		SplitIndex:      route.SplitIndexAt(totalKm),
		RemainingKm:     remaining,
	}
}

func routeTotal(route *Polyline) float64 {
	if route == nil {
		return 0
	}
	return route.TotalKm()
}
