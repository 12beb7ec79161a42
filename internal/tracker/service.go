package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"backend-globetrekker/internal/db"
	"backend-globetrekker/internal/journey"
	"backend-globetrekker/internal/routing"
	"backend-globetrekker/internal/shared/geo"
	"backend-globetrekker/internal/walk"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNoJourney = errors.New("journey not configured")
	ErrNotRouted = errors.New("journey has no route yet")
)

// Router resolves place names and road paths. *routing.Client satisfies it;
// tests point it at local fixtures.
type Router interface {
	Geocode(ctx context.Context, query string) (routing.Location, error)
	Route(ctx context.Context, start, end geo.Point) (routing.RouteResult, error)
}

type Service struct {
	db       db.Querier
	router   Router
	walks    *walk.Service
	validate *validator.Validate

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(querier db.Querier, router Router, walks *walk.Service) *Service {
	return &Service{
		db:       querier,
		router:   router,
		walks:    walks,
		validate: validator.New(),
		locks:    map[string]*sync.Mutex{},
	}
}

// userLock serializes route mutations per user. Two concurrent PUTs must
// not interleave their geocode-then-store sequences.
func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// SetRoute geocodes both endpoints, fetches the road path, and stores the
// journey. A router outage is not fatal: the endpoints persist unrouted and
// progress falls back to the raw start point until routing succeeds.
func (s *Service) SetRoute(ctx context.Context, userID string, req RouteRequest) (JourneyView, error) {
	if err := s.validate.Struct(req); err != nil {
		return JourneyView{}, err
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	startLoc, err := s.router.Geocode(ctx, req.Start)
	if err != nil {
		return JourneyView{}, err
	}
	endLoc, err := s.router.Geocode(ctx, req.End)
	if err != nil {
		return JourneyView{}, err
	}

	view := JourneyView{
		Config: journey.RouteConfig{
			StartName:  req.Start,
			EndName:    req.End,
			StartPoint: startLoc.Point,
			EndPoint:   endLoc.Point,
		},
	}

	var pointsJSON []byte
	if route, err := s.router.Route(ctx, startLoc.Point, endLoc.Point); err == nil {
		view.Routed = true
		view.TotalKm = route.TotalKm
		view.Points = route.Points
		pointsJSON, err = json.Marshal(route.Points)
		if err != nil {
			return JourneyView{}, err
		}
	} else if !errors.Is(err, routing.ErrUnavailable) {
		return JourneyView{}, err
	}

	cfg := view.Config
	_, err = s.db.Exec(ctx, `
		INSERT INTO journeys (user_id, start_name, end_name, start_lat, start_lng, end_lat, end_lng, routed, points, total_km, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (user_id) DO UPDATE SET
			start_name=EXCLUDED.start_name, end_name=EXCLUDED.end_name,
			start_lat=EXCLUDED.start_lat, start_lng=EXCLUDED.start_lng,
			end_lat=EXCLUDED.end_lat, end_lng=EXCLUDED.end_lng,
			routed=EXCLUDED.routed, points=EXCLUDED.points,
			total_km=EXCLUDED.total_km, updated_at=EXCLUDED.updated_at
	`, userID, cfg.StartName, cfg.EndName,
		cfg.StartPoint.Lat, cfg.StartPoint.Lng,
		cfg.EndPoint.Lat, cfg.EndPoint.Lng,
		view.Routed, pointsJSON, view.TotalKm, time.Now().UTC())
	if err != nil {
		return JourneyView{}, err
	}
	return view, nil
}

// View loads the stored journey.
func (s *Service) View(ctx context.Context, userID string) (JourneyView, error) {
	var (
		view       JourneyView
		pointsJSON []byte
	)
	err := s.db.QueryRow(ctx, `
		SELECT start_name, end_name, start_lat, start_lng, end_lat, end_lng, routed, points, COALESCE(total_km,0)
		FROM journeys WHERE user_id=$1
	`, userID).Scan(
		&view.Config.StartName, &view.Config.EndName,
		&view.Config.StartPoint.Lat, &view.Config.StartPoint.Lng,
		&view.Config.EndPoint.Lat, &view.Config.EndPoint.Lng,
		&view.Routed, &pointsJSON, &view.TotalKm)
	if errors.Is(err, pgx.ErrNoRows) {
		return JourneyView{}, ErrNoJourney
	}
	if err != nil {
		return JourneyView{}, err
	}

	if len(pointsJSON) > 0 {
		if err := json.Unmarshal(pointsJSON, &view.Points); err != nil {
			return JourneyView{}, err
		}
	}
	return view, nil
}

// loadState assembles the in-memory journey state the progress engine
// works on: stored config, polyline if routed, and the full walk ledger.
func (s *Service) loadState(ctx context.Context, userID string) (*journey.State, error) {
	view, err := s.View(ctx, userID)
	if err != nil {
		return nil, err
	}

	st := &journey.State{Config: view.Config, Ledger: journey.NewLedger()}
	if view.Routed && len(view.Points) > 0 {
		route, err := journey.NewPolyline(view.Points)
		if err != nil {
			return nil, err
		}
		st.Route = route
	}

	entries, err := s.walks.Entries(ctx, userID)
	if err != nil {
		return nil, err
	}
	st.Ledger.Replace(entries)
	return st, nil
}

// Progress projects everything walked so far onto the route.
func (s *Service) Progress(ctx context.Context, userID string) (ProgressResponse, error) {
	st, err := s.loadState(ctx, userID)
	if err != nil {
		return ProgressResponse{}, err
	}
	return ProgressResponse{
		TotalWalkedKm: st.Ledger.TotalKm(),
		WalkCount:     st.Ledger.Len(),
		Projection:    st.Progress(),
	}, nil
}

// Checkpoints resolves the period window and returns its per-day
// checkpoints and stats.
func (s *Service) Checkpoints(ctx context.Context, userID string, mode journey.PeriodMode, days int, custom journey.DateRange, now time.Time) (CheckpointsResponse, error) {
	st, err := s.loadState(ctx, userID)
	if err != nil {
		return CheckpointsResponse{}, err
	}

	window, checkpoints, err := st.PeriodCheckpoints(mode, days, custom, now)
	if err != nil {
		return CheckpointsResponse{}, err
	}
	if checkpoints == nil {
		checkpoints = []journey.Checkpoint{}
	}

	return CheckpointsResponse{
		Window:      window,
		Checkpoints: checkpoints,
		Stats:       journey.Stats(st.Ledger.EntriesInRange(window)),
	}, nil
}

// Segment slices the route between two distances.
func (s *Service) Segment(ctx context.Context, userID string, startKm, endKm float64) (SegmentResponse, error) {
	st, err := s.loadState(ctx, userID)
	if err != nil {
		return SegmentResponse{}, err
	}
	if st.Route == nil {
		return SegmentResponse{}, ErrNotRouted
	}

	points := st.Route.SegmentBetween(startKm, endKm)
	resp := SegmentResponse{StartKm: startKm, EndKm: endKm, Points: points}
	if resp.Points == nil {
		resp.Points = []geo.Point{}
	}
	for i := 1; i < len(points); i++ {
		resp.LengthKm += geo.DistanceKm(points[i-1], points[i])
	}
	return resp, nil
}
