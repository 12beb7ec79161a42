package walk

import (
	"time"

	"backend-globetrekker/internal/journey"
)

// SnapshotVersion is stamped on every export payload.
const SnapshotVersion = "1.0"

// WalkInput is the client payload for logging one walk. Date is a calendar
// day; the server assigns the id and logged_at unless the client supplies an
// id (offline clients do, so retries stay idempotent).
type WalkInput struct {
	ID         string  `json:"id,omitempty"`
	Date       string  `json:"date" validate:"required,datetime=2006-01-02"`
	DistanceKm float64 `json:"distance_km" validate:"gte=0"`
	Notes      string  `json:"notes,omitempty" validate:"max=500"`
}

type ImportRequest struct {
	Data string `json:"data" validate:"required"`
}

// Snapshot is the portable journey backup: every walk plus the route
// endpoints, self-describing via version. Restoring one replaces the
// journey wholesale.
type Snapshot struct {
	Walks       []journey.Entry      `json:"walks"`
	RouteConfig *journey.RouteConfig `json:"routeConfig,omitempty"`
	ExportDate  time.Time            `json:"exportDate"`
	Version     string               `json:"version"`
}

// ExportRecord identifies a stored snapshot without its payload.
type ExportRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}
