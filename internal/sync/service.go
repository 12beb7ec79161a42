// Package sync reconciles walk ledgers between devices. Conflicts resolve
// last-write-wins on logged_at, so a stale device can never clobber a newer
// edit.
package sync

import (
	"context"
	"time"

	"backend-globetrekker/internal/db"
	"backend-globetrekker/internal/journey"

	"github.com/google/uuid"
)

type PushRequest struct {
	Walks []journey.Entry `json:"walks"`
}

type PushResult struct {
	Received int `json:"received"`
	Applied  int `json:"applied"`
}

type PullResult struct {
	Walks      []journey.Entry `json:"walks"`
	ServerTime time.Time       `json:"server_time"`
}

type Service struct {
	db db.Querier
}

func NewService(querier db.Querier) *Service {
	return &Service{db: querier}
}

// Push merges client walks into the server ledger. New ids insert; known
// ids update only when the row belongs to the pushing user and the incoming
// logged_at is strictly newer.
func (s *Service) Push(ctx context.Context, userID string, walks []journey.Entry) (PushResult, error) {
	result := PushResult{Received: len(walks)}

	for _, e := range walks {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.LoggedAt.IsZero() {
			e.LoggedAt = time.Now().UTC()
		}
		tag, err := s.db.Exec(ctx, `
			INSERT INTO walks (id, user_id, walk_date, distance_km, notes, logged_at)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (id) DO UPDATE SET
				walk_date=EXCLUDED.walk_date,
				distance_km=EXCLUDED.distance_km,
				notes=EXCLUDED.notes,
				logged_at=EXCLUDED.logged_at
			WHERE walks.user_id = EXCLUDED.user_id AND EXCLUDED.logged_at > walks.logged_at
		`, e.ID, userID, e.Date, e.DistanceKm, e.Notes, e.LoggedAt)
		if err != nil {
			return PushResult{}, err
		}
		result.Applied += int(tag.RowsAffected())
	}
	return result, nil
}

// Pull returns the walks changed after since, or everything when since is
// zero. The server_time in the response is the client's next since.
func (s *Service) Pull(ctx context.Context, userID string, since time.Time) (PullResult, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, walk_date, distance_km, COALESCE(notes,''), logged_at
		FROM walks
		WHERE user_id=$1 AND logged_at > $2
		ORDER BY walk_date ASC, logged_at ASC
	`, userID, since)
	if err != nil {
		return PullResult{}, err
	}
	defer rows.Close()

	result := PullResult{Walks: []journey.Entry{}, ServerTime: time.Now().UTC()}
	for rows.Next() {
		var e journey.Entry
		if err := rows.Scan(&e.ID, &e.Date, &e.DistanceKm, &e.Notes, &e.LoggedAt); err != nil {
			return PullResult{}, err
		}
		result.Walks = append(result.Walks, e)
	}
	return result, rows.Err()
}
