package journey

import (
	"sort"
	"time"

	"backend-globetrekker/internal/shared/geo"
)

// RouteConfig pairs the user's chosen location names with their geocoded
// positions. The polyline is derived from it by the external router and is
// rebuilt wholesale whenever the config changes.
type RouteConfig struct {
	StartName  string    `json:"start_name"`
	EndName    string    `json:"end_name"`
	StartPoint geo.Point `json:"start_point"`
	EndPoint   geo.Point `json:"end_point"`
}

// State is everything the progress engine needs for one journey: the
// configured endpoints, the routed polyline (nil until routing completes),
// and the walk ledger. Callers hold one State per user and pass it in
// explicitly; nothing in this package keeps ambient state.
type State struct {
	Config RouteConfig
	Route  *Polyline
	Ledger *Ledger
}

// Progress projects the ledger total onto the route.
func (s *State) Progress() Projection {
	return Project(s.Ledger.TotalKm(), s.Route, s.Config.StartPoint)
}

// PeriodCheckpoints resolves the period window and produces the per-day
// checkpoints for it, in chronological order.
func (s *State) PeriodCheckpoints(mode PeriodMode, days int, custom DateRange, now time.Time) (DateRange, []Checkpoint, error) {
	window, err := ResolvePeriod(mode, days, custom, s.Ledger, now)
	if err != nil {
		return DateRange{}, nil, err
	}

	walks := s.Ledger.EntriesInRange(window)
	sort.Slice(walks, func(i, j int) bool { return walks[i].Date.Before(walks[j].Date) })

	before := s.Ledger.TotalKmBefore(window.Start)
	return window, Checkpoints(walks, before, s.Route), nil
}
