package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"backend-globetrekker/internal/shared/geo"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when the geocoder has no match for a query.
var ErrNotFound = errors.New("location not found")

// ErrUnavailable is returned when the road router cannot produce a route.
var ErrUnavailable = errors.New("routing service unavailable")

const cacheTTL = 24 * time.Hour

// Location is a geocoder match.
type Location struct {
	Point geo.Point `json:"point"`
	Name  string    `json:"name"`
}

// RouteResult is a road-following path between two points.
type RouteResult struct {
	Points  []geo.Point `json:"points"`
	TotalKm float64     `json:"total_km"`
}

// Client talks to the external geocoding and road-routing collaborators.
// Both speak the OpenStreetMap ecosystem wire formats (Nominatim search,
// OSRM route). Responses are cached in Redis so re-editing a journey does
// not hammer the public services.
type Client struct {
	geocoderURL string
	routerURL   string
	http        *http.Client
	redis       *redis.Client
}

func NewClient(geocoderURL, routerURL string, redisClient *redis.Client) *Client {
	return &Client{
		geocoderURL: geocoderURL,
		routerURL:   routerURL,
		http:        &http.Client{Timeout: 15 * time.Second},
		redis:       redisClient,
	}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves a free-text location to coordinates.
func (c *Client) Geocode(ctx context.Context, query string) (Location, error) {
	cacheKey := "geocode:" + query
	var cached Location
	if c.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	reqURL := fmt.Sprintf("%s/search?format=json&q=%s&limit=1", c.geocoderURL, url.QueryEscape(query))
	var results []nominatimResult
	if err := c.getJSON(ctx, reqURL, &results); err != nil {
		return Location{}, err
	}
	if len(results) == 0 {
		return Location{}, fmt.Errorf("%w: %q", ErrNotFound, query)
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lng, lngErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lngErr != nil {
		return Location{}, fmt.Errorf("%w: bad coordinates for %q", ErrNotFound, query)
	}

	loc := Location{Point: geo.Point{Lat: lat, Lng: lng}, Name: results[0].DisplayName}
	if err := loc.Point.Validate(); err != nil {
		return Location{}, err
	}

	c.cacheSet(ctx, cacheKey, loc)
	return loc, nil
}

type osrmResponse struct {
	Routes []struct {
		Distance float64 `json:"distance"` // meters
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"` // [lng, lat]
		} `json:"geometry"`
	} `json:"routes"`
}

// Route fetches the road path between two points.
func (c *Client) Route(ctx context.Context, start, end geo.Point) (RouteResult, error) {
	cacheKey := fmt.Sprintf("route:%v,%v:%v,%v", start.Lat, start.Lng, end.Lat, end.Lng)
	var cached RouteResult
	if c.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	reqURL := fmt.Sprintf("%s/route/v1/driving/%v,%v;%v,%v?overview=full&geometries=geojson",
		c.routerURL, start.Lng, start.Lat, end.Lng, end.Lat)

	var resp osrmResponse
	if err := c.getJSON(ctx, reqURL, &resp); err != nil {
		return RouteResult{}, err
	}
	if len(resp.Routes) == 0 || len(resp.Routes[0].Geometry.Coordinates) == 0 {
		return RouteResult{}, ErrUnavailable
	}

	route := resp.Routes[0]
	result := RouteResult{
		Points:  make([]geo.Point, 0, len(route.Geometry.Coordinates)),
		TotalKm: route.Distance / 1000,
	}
	for _, coord := range route.Geometry.Coordinates {
		if len(coord) < 2 {
			return RouteResult{}, ErrUnavailable
		}
		// OSRM emits [lng, lat]
		result.Points = append(result.Points, geo.Point{Lat: coord[1], Lng: coord[0]})
	}

	c.cacheSet(ctx, cacheKey, result)
	return result, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "globetrekker-backend")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) cacheGet(ctx context.Context, key string, out any) bool {
	if c.redis == nil {
		return false
	}
	raw, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func (c *Client) cacheSet(ctx context.Context, key string, value any) {
	if c.redis == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, raw, cacheTTL).Err()
}
