package walk

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"backend-globetrekker/internal/db"
	"backend-globetrekker/internal/journey"
	"backend-globetrekker/internal/stream"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrSnapshotVersion = errors.New("unsupported snapshot version")

type Service struct {
	db       db.Querier
	hub      *stream.Hub
	validate *validator.Validate
}

func NewService(querier db.Querier, hub *stream.Hub) *Service {
	return &Service{db: querier, hub: hub, validate: validator.New()}
}

// Log records one walk. Re-submitting an id the user already logged fails
// with journey.ErrDuplicateID instead of silently double-counting.
func (s *Service) Log(ctx context.Context, userID string, input WalkInput) (journey.Entry, error) {
	if err := s.validate.Struct(input); err != nil {
		return journey.Entry{}, err
	}

	date, err := time.Parse(journey.DateFormat, input.Date)
	if err != nil {
		return journey.Entry{}, err
	}

	entry := journey.Entry{
		ID:         input.ID,
		Date:       date,
		DistanceKm: input.DistanceKm,
		Notes:      input.Notes,
		LoggedAt:   time.Now().UTC(),
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	tag, err := s.db.Exec(ctx, `
		INSERT INTO walks (id, user_id, walk_date, distance_km, notes, logged_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO NOTHING
	`, entry.ID, userID, entry.Date, entry.DistanceKm, entry.Notes, entry.LoggedAt)
	if err != nil {
		return journey.Entry{}, err
	}
	if tag.RowsAffected() == 0 {
		return journey.Entry{}, journey.ErrDuplicateID
	}

	s.broadcast(userID, "walk_logged", entry)
	return entry, nil
}

// Delete removes a walk. Unknown ids are a no-op, matching the ledger.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM walks WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	s.broadcast(userID, "walk_removed", journey.Entry{ID: id})
	return nil
}

// History lists walks newest-first for display.
func (s *Service) History(ctx context.Context, userID string) ([]journey.Entry, error) {
	return s.list(ctx, userID, `ORDER BY walk_date DESC, logged_at DESC`)
}

// Entries lists walks oldest-first, the order the progress engine wants.
func (s *Service) Entries(ctx context.Context, userID string) ([]journey.Entry, error) {
	return s.list(ctx, userID, `ORDER BY walk_date ASC, logged_at ASC`)
}

func (s *Service) list(ctx context.Context, userID, order string) ([]journey.Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, walk_date, distance_km, COALESCE(notes,''), logged_at
		FROM walks WHERE user_id=$1 `+order, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []journey.Entry
	for rows.Next() {
		var e journey.Entry
		if err := rows.Scan(&e.ID, &e.Date, &e.DistanceKm, &e.Notes, &e.LoggedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Import ingests "date, distance[, notes]" lines. Bad lines are reported
// per line number and skipped; the rest of the batch still lands.
func (s *Service) Import(ctx context.Context, userID, data string) (journey.ImportReport, error) {
	entries, errs := journey.ParseImportLines(data, time.Now().UTC())

	report := journey.ImportReport{Errors: errs}
	for _, e := range entries {
		tag, err := s.db.Exec(ctx, `
			INSERT INTO walks (id, user_id, walk_date, distance_km, notes, logged_at)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (id) DO NOTHING
		`, e.ID, userID, e.Date, e.DistanceKm, e.Notes, e.LoggedAt)
		if err != nil {
			return journey.ImportReport{}, err
		}
		report.Imported += int(tag.RowsAffected())
	}

	if report.Imported > 0 {
		s.broadcast(userID, "walks_imported", report)
	}
	return report, nil
}

// Export assembles the full snapshot and archives a copy server-side so it
// can be restored later without the file.
func (s *Service) Export(ctx context.Context, userID string) (Snapshot, error) {
	walks, err := s.Entries(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Walks:      walks,
		ExportDate: time.Now().UTC(),
		Version:    SnapshotVersion,
	}

	var cfg journey.RouteConfig
	err = s.db.QueryRow(ctx, `
		SELECT start_name, end_name, start_lat, start_lng, end_lat, end_lng
		FROM journeys WHERE user_id=$1
	`, userID).Scan(&cfg.StartName, &cfg.EndName,
		&cfg.StartPoint.Lat, &cfg.StartPoint.Lng,
		&cfg.EndPoint.Lat, &cfg.EndPoint.Lng)
	switch {
	case err == nil:
		snap.RouteConfig = &cfg
	case errors.Is(err, pgx.ErrNoRows):
		// no journey configured yet; snapshot carries walks only
	default:
		return Snapshot{}, err
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return Snapshot{}, err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO journey_exports (id, user_id, payload, created_at)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), userID, payload, snap.ExportDate)
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Exports lists the archived snapshots, newest first.
func (s *Service) Exports(ctx context.Context, userID string) ([]ExportRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, created_at FROM journey_exports
		WHERE user_id=$1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ExportRecord
	for rows.Next() {
		var r ExportRecord
		if err := rows.Scan(&r.ID, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Restore replaces the user's walks and route config with the snapshot's,
// in one transaction: a mid-restore failure must not leave the ledger wiped.
// The route itself is not carried in snapshots; it is re-routed on the next
// progress request.
func (s *Service) Restore(ctx context.Context, userID string, snap Snapshot) (int, error) {
	if snap.Version != SnapshotVersion {
		return 0, ErrSnapshotVersion
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM walks WHERE user_id=$1`, userID); err != nil {
		return 0, err
	}

	restored := 0
	for _, e := range snap.Walks {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.LoggedAt.IsZero() {
			e.LoggedAt = time.Now().UTC()
		}
		tag, err := tx.Exec(ctx, `
			INSERT INTO walks (id, user_id, walk_date, distance_km, notes, logged_at)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (id) DO NOTHING
		`, e.ID, userID, e.Date, e.DistanceKm, e.Notes, e.LoggedAt)
		if err != nil {
			return 0, err
		}
		restored += int(tag.RowsAffected())
	}

	if cfg := snap.RouteConfig; cfg != nil {
		_, err := tx.Exec(ctx, `
			INSERT INTO journeys (user_id, start_name, end_name, start_lat, start_lng, end_lat, end_lng, routed)
			VALUES ($1,$2,$3,$4,$5,$6,$7,false)
			ON CONFLICT (user_id) DO UPDATE SET
				start_name=EXCLUDED.start_name, end_name=EXCLUDED.end_name,
				start_lat=EXCLUDED.start_lat, start_lng=EXCLUDED.start_lng,
				end_lat=EXCLUDED.end_lat, end_lng=EXCLUDED.end_lng,
				routed=false, points=NULL, total_km=0
		`, userID, cfg.StartName, cfg.EndName,
			cfg.StartPoint.Lat, cfg.StartPoint.Lng,
			cfg.EndPoint.Lat, cfg.EndPoint.Lng)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	s.broadcast(userID, "journey_restored", map[string]int{"walks": restored})
	return restored, nil
}

// RestoreExport restores from a server-side archived snapshot.
func (s *Service) RestoreExport(ctx context.Context, userID, exportID string) (int, error) {
	var payload []byte
	err := s.db.QueryRow(ctx, `
		SELECT payload FROM journey_exports WHERE id=$1 AND user_id=$2
	`, exportID, userID).Scan(&payload)
	if err != nil {
		return 0, err
	}

	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return 0, err
	}
	return s.Restore(ctx, userID, snap)
}

func (s *Service) broadcast(userID, event string, data interface{}) {
	if s.hub == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{"event": event, "data": data})
	s.hub.Broadcast(userID, payload)
}
