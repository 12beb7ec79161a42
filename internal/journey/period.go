package journey

import (
	"errors"
	"sort"
	"time"

	"backend-globetrekker/internal/shared/geo"
)

// ErrInvalidRange is returned when a custom period starts after it ends.
var ErrInvalidRange = errors.New("period start after end")

// PeriodMode selects how a date window is derived.
type PeriodMode string

const (
	PeriodAll      PeriodMode = "all"
	PeriodLastDays PeriodMode = "last"
	PeriodCustom   PeriodMode = "custom"
)

// Checkpoint is one day's marker inside a period: how far that day went, the
// running total including everything walked before the period, and the map
// position for that total. Position is nil when the route cannot supply one;
// a day without a position still keeps its place in the sequence.
type Checkpoint struct {
	DayIndex     int        `json:"day_index"`
	Date         time.Time  `json:"date"`
	DistanceKm   float64    `json:"distance_km"`
	CumulativeKm float64    `json:"cumulative_km"`
	Position     *geo.Point `json:"position,omitempty"`
}

// PeriodStats are the headline numbers for a period.
type PeriodStats struct {
	TotalKm     float64 `json:"total_km"`
	WalkCount   int     `json:"walk_count"`
	AvgPerWalk  float64 `json:"avg_per_walk_km"`
}

// ResolvePeriod turns a mode selection into a concrete inclusive window.
// "all" spans from the earliest walk (or today, for an empty ledger) through
// today, "last" covers the trailing N days, and "custom" uses the supplied
// window as-is after validation.
func ResolvePeriod(mode PeriodMode, days int, custom DateRange, ledger *Ledger, now time.Time) (DateRange, error) {
	endOfToday := endOfDay(now)

	switch mode {
	case PeriodLastDays:
		start := startOfDay(now.AddDate(0, 0, -days))
		return DateRange{Start: start, End: endOfToday}, nil
	case PeriodCustom:
		if custom.Start.After(custom.End) {
			return DateRange{}, ErrInvalidRange
		}
		return DateRange{Start: startOfDay(custom.Start), End: endOfDay(custom.End)}, nil
	default:
		start := ledger.EarliestDate()
		if start.IsZero() {
			start = startOfDay(now)
		}
		return DateRange{Start: start, End: endOfToday}, nil
	}
}

// Stats summarizes the walks inside a period.
func Stats(periodWalks []Entry) PeriodStats {
	var total float64
	for _, e := range periodWalks {
		total += e.DistanceKm
	}
	stats := PeriodStats{TotalKm: total, WalkCount: len(periodWalks)}
	if stats.WalkCount > 0 {
		stats.AvgPerWalk = total / float64(stats.WalkCount)
	}
	return stats
}

// Checkpoints groups the period's walks by calendar day, orders the days
// ascending, and projects each day's cumulative distance onto the route.
// beforeKm seeds the running total with everything walked before the period
// started, so the markers land where the user actually was. A route that is
// missing or has zero length leaves positions nil rather than failing the
// batch.
func Checkpoints(periodWalks []Entry, beforeKm float64, route *Polyline) []Checkpoint {
	if len(periodWalks) == 0 {
		return nil
	}

	byDay := map[string]*Checkpoint{}
	var keys []string
	for _, e := range periodWalks {
		key := e.Date.Format(DateFormat)
		cp, ok := byDay[key]
		if !ok {
			cp = &Checkpoint{Date: e.Date}
			byDay[key] = cp
			keys = append(keys, key)
		}
		cp.DistanceKm += e.DistanceKm
	}
	sort.Strings(keys)

	usable := route != nil && route.TotalKm() > 0

	out := make([]Checkpoint, 0, len(keys))
	cumulative := beforeKm
	for i, key := range keys {
		cp := byDay[key]
		cp.DayIndex = i + 1
		cumulative += cp.DistanceKm
		cp.CumulativeKm = cumulative
		if usable {
			pos := route.PositionAt(cumulative)
			cp.Position = &pos
		}
		out = append(out, *cp)
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
