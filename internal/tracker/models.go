package tracker

import (
	"backend-globetrekker/internal/journey"
	"backend-globetrekker/internal/shared/geo"
)

// RouteRequest sets or replaces the journey endpoints by name. The server
// geocodes both and fetches the road path between them.
type RouteRequest struct {
	Start string `json:"start" validate:"required,min=2,max=200"`
	End   string `json:"end" validate:"required,min=2,max=200"`
}

// JourneyView is the stored journey as clients render it: the resolved
// endpoints plus the full polyline when routing succeeded. Routed is false
// while only the endpoints are known.
type JourneyView struct {
	Config  journey.RouteConfig `json:"config"`
	Routed  bool                `json:"routed"`
	TotalKm float64             `json:"total_km"`
	Points  []geo.Point         `json:"points,omitempty"`
}

// ProgressResponse is the walked total projected onto the route.
type ProgressResponse struct {
	TotalWalkedKm float64            `json:"total_walked_km"`
	WalkCount     int                `json:"walk_count"`
	Projection    journey.Projection `json:"projection"`
}

// CheckpointsResponse carries the per-day checkpoints for a period window
// together with the window's summary stats.
type CheckpointsResponse struct {
	Window      journey.DateRange    `json:"window"`
	Checkpoints []journey.Checkpoint `json:"checkpoints"`
	Stats       journey.PeriodStats  `json:"stats"`
}

// SegmentResponse is a slice of the route between two distances, with
// interpolated endpoints.
type SegmentResponse struct {
	StartKm  float64     `json:"start_km"`
	EndKm    float64     `json:"end_km"`
	LengthKm float64     `json:"length_km"`
	Points   []geo.Point `json:"points"`
}
