package journey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicateID is returned when an entry id is already present.
var ErrDuplicateID = errors.New("walk id already logged")

// DateFormat is the calendar-date wire format used everywhere walks move.
const DateFormat = "2006-01-02"

// Entry is a single logged walk. Date carries the calendar day only;
// LoggedAt records when the entry was created and decides conflicts during
// cloud sync.
type Entry struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	DistanceKm float64   `json:"distance_km"`
	Notes      string    `json:"notes,omitempty"`
	LoggedAt   time.Time `json:"logged_at"`
}

// DateRange is an inclusive calendar-date window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether d falls inside the window.
func (r DateRange) Contains(d time.Time) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Ledger is the collection of walk entries, keyed by id and kept in
// insertion order. The ledger itself imposes no date order; callers sort the
// slices it hands out. A single mutex serializes writers because one ledger
// is shared by every request a user's session makes.
type Ledger struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]Entry
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: map[string]Entry{}}
}

// Add appends an entry. Colliding ids fail with ErrDuplicateID.
func (l *Ledger) Add(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[e.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}
	l.entries[e.ID] = e
	l.order = append(l.order, e.ID)
	return nil
}

// Upsert inserts the entry, or replaces an existing one with the same id
// when the incoming entry was logged later. Cloud-sourced entries flow
// through here so that the last writer wins.
func (l *Ledger) Upsert(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.entries[e.ID]
	if !ok {
		l.entries[e.ID] = e
		l.order = append(l.order, e.ID)
		return
	}
	if e.LoggedAt.After(existing.LoggedAt) {
		l.entries[e.ID] = e
	}
}

// Remove deletes an entry by id. A missing id is a silent no-op.
func (l *Ledger) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[id]; !ok {
		return
	}
	delete(l.entries, id)
	for i, existing := range l.order {
		if existing == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// Replace swaps the ledger's contents for the given entries. Snapshot
// restores use this; later duplicates of an id are dropped.
func (l *Ledger) Replace(entries []Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.order = l.order[:0]
	l.entries = map[string]Entry{}
	for _, e := range entries {
		if _, ok := l.entries[e.ID]; ok {
			continue
		}
		l.entries[e.ID] = e
		l.order = append(l.order, e.ID)
	}
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

// Entries returns all entries in insertion order.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.entries[id])
	}
	return out
}

// TotalKm sums every entry's distance.
func (l *Ledger) TotalKm() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var sum float64
	for _, e := range l.entries {
		sum += e.DistanceKm
	}
	return sum
}

// TotalKmInRange sums distances for entries dated inside the window.
func (l *Ledger) TotalKmInRange(r DateRange) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var sum float64
	for _, e := range l.entries {
		if r.Contains(e.Date) {
			sum += e.DistanceKm
		}
	}
	return sum
}

// TotalKmBefore sums distances for entries dated strictly before day.
func (l *Ledger) TotalKmBefore(day time.Time) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var sum float64
	for _, e := range l.entries {
		if e.Date.Before(day) {
			sum += e.DistanceKm
		}
	}
	return sum
}

// EntriesInRange returns entries dated inside the window, in insertion
// order.
func (l *Ledger) EntriesInRange(r DateRange) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Entry
	for _, id := range l.order {
		if e := l.entries[id]; r.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// EarliestDate returns the oldest walk date, or zero when the ledger is
// empty.
func (l *Ledger) EarliestDate() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var earliest time.Time
	for _, e := range l.entries {
		if earliest.IsZero() || e.Date.Before(earliest) {
			earliest = e.Date
		}
	}
	return earliest
}

// ImportReport summarizes a bulk import run.
type ImportReport struct {
	Imported int      `json:"imported_count"`
	Errors   []string `json:"errors,omitempty"`
}

// ParseImportLines parses "date, distance[, notes]" lines. Malformed lines
// are collected as per-line messages and skipped; they never abort the
// batch. Valid lines become entries with fresh ids.
func ParseImportLines(data string, now time.Time) ([]Entry, []string) {
	var (
		entries []Entry
		errs    []string
	)

	for i, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		for j := range parts {
			parts[j] = strings.TrimSpace(parts[j])
		}
		if len(parts) < 2 {
			errs = append(errs, fmt.Sprintf("line %d: invalid format", i+1))
			continue
		}

		date, dateErr := time.ParseInLocation(DateFormat, parts[0], time.UTC)
		distance, distErr := strconv.ParseFloat(parts[1], 64)
		if dateErr != nil || distErr != nil || distance < 0 {
			errs = append(errs, fmt.Sprintf("line %d: invalid date or distance", i+1))
			continue
		}

		notes := ""
		if len(parts) > 2 {
			notes = strings.Join(parts[2:], ", ")
		}

		entries = append(entries, Entry{
			ID:         uuid.NewString(),
			Date:       date,
			DistanceKm: distance,
			Notes:      notes,
			LoggedAt:   now,
		})
	}
	return entries, errs
}

// ImportLines parses bulk data and appends the valid entries.
func (l *Ledger) ImportLines(data string, now time.Time) ImportReport {
	entries, errs := ParseImportLines(data, now)
	for _, e := range entries {
		_ = l.Add(e) // fresh uuids cannot collide
	}
	return ImportReport{Imported: len(entries), Errors: errs}
}
