package journey

import (
	"errors"
	"testing"
	"time"

	"backend-globetrekker/internal/shared/geo"
)

func TestResolvePeriodAll(t *testing.T) {
	l := NewLedger()
	_ = l.Add(Entry{ID: "w1", Date: day("2024-01-05"), DistanceKm: 5})
	_ = l.Add(Entry{ID: "w2", Date: day("2024-01-02"), DistanceKm: 3})

	now := time.Date(2024, 2, 10, 14, 30, 0, 0, time.UTC)
	window, err := ResolvePeriod(PeriodAll, 0, DateRange{}, l, now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !window.Start.Equal(day("2024-01-02")) {
		t.Fatalf("expected earliest walk date as start, got %v", window.Start)
	}
	if window.End.Before(now) {
		t.Fatalf("expected end of today, got %v", window.End)
	}
}

func TestResolvePeriodAllEmptyLedger(t *testing.T) {
	now := time.Date(2024, 2, 10, 14, 30, 0, 0, time.UTC)
	window, err := ResolvePeriod(PeriodAll, 0, DateRange{}, NewLedger(), now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !window.Start.Equal(day("2024-02-10")) {
		t.Fatalf("expected today as start for empty ledger, got %v", window.Start)
	}
}

func TestResolvePeriodLastDays(t *testing.T) {
	now := time.Date(2024, 2, 10, 14, 30, 0, 0, time.UTC)
	window, err := ResolvePeriod(PeriodLastDays, 7, DateRange{}, NewLedger(), now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !window.Start.Equal(day("2024-02-03")) {
		t.Fatalf("expected window open at midnight 7 days back, got %v", window.Start)
	}
	if window.End.Day() != 10 || window.End.Hour() != 23 {
		t.Fatalf("expected end of today, got %v", window.End)
	}
}

func TestResolvePeriodCustom(t *testing.T) {
	now := time.Now()
	custom := DateRange{Start: day("2024-01-01"), End: day("2024-01-31")}
	window, err := ResolvePeriod(PeriodCustom, 0, custom, NewLedger(), now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !window.Contains(day("2024-01-31")) {
		t.Fatalf("expected inclusive custom end")
	}

	_, err = ResolvePeriod(PeriodCustom, 0, DateRange{Start: day("2024-02-01"), End: day("2024-01-01")}, NewLedger(), now)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestCheckpointsGroupAndAccumulate(t *testing.T) {
	route := meridianRoute(t)
	walks := []Entry{
		{ID: "a", Date: day("2024-01-01"), DistanceKm: 30},
		{ID: "b", Date: day("2024-01-01"), DistanceKm: 20}, // same day, summed
		{ID: "c", Date: day("2024-01-03"), DistanceKm: 40},
	}

	cps := Checkpoints(walks, 10, route)
	if len(cps) != 2 {
		t.Fatalf("expected 2 checkpoints, got %d", len(cps))
	}

	first := cps[0]
	if first.DayIndex != 1 || first.DistanceKm != 50 || first.CumulativeKm != 60 {
		t.Fatalf("unexpected first checkpoint: %+v", first)
	}
	second := cps[1]
	if second.DayIndex != 2 || second.CumulativeKm != 100 {
		t.Fatalf("unexpected second checkpoint: %+v", second)
	}
	if first.Position == nil || second.Position == nil {
		t.Fatalf("expected positions on a usable route")
	}
	if second.CumulativeKm <= first.CumulativeKm {
		t.Fatalf("expected strictly increasing cumulative distance")
	}
	if second.Position.Lng <= first.Position.Lng {
		t.Fatalf("expected later checkpoint further along the route")
	}
}

func TestCheckpointsWithoutRoute(t *testing.T) {
	walks := []Entry{{ID: "a", Date: day("2024-01-01"), DistanceKm: 5}}

	cps := Checkpoints(walks, 0, nil)
	if len(cps) != 1 {
		t.Fatalf("expected checkpoint despite missing route")
	}
	if cps[0].Position != nil {
		t.Fatalf("expected nil position for missing route")
	}

	// zero-length route behaves the same
	degenerate, err := NewPolyline([]geo.Point{{Lat: 1, Lng: 1}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	cps = Checkpoints(walks, 0, degenerate)
	if cps[0].Position != nil {
		t.Fatalf("expected nil position for zero-length route")
	}
}

func TestCheckpointsEmptyPeriod(t *testing.T) {
	if cps := Checkpoints(nil, 0, nil); cps != nil {
		t.Fatalf("expected nil for empty period")
	}
}

func TestStats(t *testing.T) {
	walks := []Entry{
		{ID: "a", Date: day("2024-01-01"), DistanceKm: 4},
		{ID: "b", Date: day("2024-01-02"), DistanceKm: 8},
	}
	stats := Stats(walks)
	if stats.TotalKm != 12 || stats.WalkCount != 2 || stats.AvgPerWalk != 6 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	empty := Stats(nil)
	if empty.AvgPerWalk != 0 {
		t.Fatalf("expected zero average for empty period")
	}
}

func TestStatePeriodCheckpoints(t *testing.T) {
	route := meridianRoute(t)
	ledger := NewLedger()
	_ = ledger.Add(Entry{ID: "before", Date: day("2024-01-01"), DistanceKm: 25})
	_ = ledger.Add(Entry{ID: "in1", Date: day("2024-01-10"), DistanceKm: 30})
	_ = ledger.Add(Entry{ID: "in2", Date: day("2024-01-12"), DistanceKm: 10})

	state := &State{
		Config: RouteConfig{StartPoint: geo.Point{Lat: 0, Lng: 0}},
		Route:  route,
		Ledger: ledger,
	}

	custom := DateRange{Start: day("2024-01-09"), End: day("2024-01-13")}
	window, cps, err := state.PeriodCheckpoints(PeriodCustom, 0, custom, time.Now())
	if err != nil {
		t.Fatalf("checkpoints: %v", err)
	}
	if !window.Contains(day("2024-01-10")) {
		t.Fatalf("expected resolved window to cover the period")
	}
	if len(cps) != 2 {
		t.Fatalf("expected 2 checkpoints, got %d", len(cps))
	}
	// distance before the window seeds the running total
	if cps[0].CumulativeKm != 55 {
		t.Fatalf("expected cumulative 55, got %v", cps[0].CumulativeKm)
	}
	if cps[1].CumulativeKm != 65 {
		t.Fatalf("expected cumulative 65, got %v", cps[1].CumulativeKm)
	}

	_, _, err = state.PeriodCheckpoints(PeriodCustom, 0, DateRange{Start: day("2024-02-01"), End: day("2024-01-01")}, time.Now())
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}
