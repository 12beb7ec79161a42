// Package places finds named points of interest near a position on the
// route, via the Overpass API.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"backend-globetrekker/internal/shared/geo"

	"github.com/redis/go-redis/v9"
)

const (
	cacheTTL   = time.Hour
	maxResults = 10
)

// kindTags orders the OSM tag families we query; when a node carries more
// than one, the earliest wins as its display kind.
var kindTags = []string{"tourism", "historic", "amenity", "natural", "place"}

// Place is one nearby point of interest.
type Place struct {
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	Detail     string    `json:"detail,omitempty"`
	Point      geo.Point `json:"point"`
	DistanceKm float64   `json:"distance_km"`
}

type Client struct {
	baseURL string
	http    *http.Client
	redis   *redis.Client
}

func NewClient(baseURL string, redisClient *redis.Client) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 20 * time.Second},
		redis:   redisClient,
	}
}

type overpassResponse struct {
	Elements []struct {
		Lat  float64           `json:"lat"`
		Lon  float64           `json:"lon"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// Nearby returns up to ten named places within radiusKm of origin, closest
// first.
func (c *Client) Nearby(ctx context.Context, origin geo.Point, radiusKm float64) ([]Place, error) {
	if err := origin.Validate(); err != nil {
		return nil, err
	}
	if radiusKm <= 0 {
		radiusKm = 5
	}

	cacheKey := fmt.Sprintf("places:%.4f,%.4f:%.1f", origin.Lat, origin.Lng, radiusKm)
	if cached := c.cacheGet(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	resp, err := c.query(ctx, origin, radiusKm*1000)
	if err != nil {
		return nil, err
	}

	var places []Place
	for _, el := range resp.Elements {
		name := el.Tags["name"]
		if name == "" {
			continue
		}
		kind, detail := classify(el.Tags)
		if kind == "" {
			continue
		}
		point := geo.Point{Lat: el.Lat, Lng: el.Lon}
		places = append(places, Place{
			Name:       name,
			Kind:       kind,
			Detail:     detail,
			Point:      point,
			DistanceKm: geo.DistanceKm(origin, point),
		})
	}

	sort.Slice(places, func(i, j int) bool { return places[i].DistanceKm < places[j].DistanceKm })
	if len(places) > maxResults {
		places = places[:maxResults]
	}

	c.cacheSet(ctx, cacheKey, places)
	return places, nil
}

func (c *Client) query(ctx context.Context, origin geo.Point, radiusM float64) (overpassResponse, error) {
	var b strings.Builder
	b.WriteString("[out:json][timeout:10];(")
	for _, tag := range kindTags {
		fmt.Fprintf(&b, "node(around:%.0f,%.6f,%.6f)[%s][name];", radiusM, origin.Lat, origin.Lng, tag)
	}
	b.WriteString(");out body 50;")

	form := url.Values{"data": {b.String()}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/interpreter",
		strings.NewReader(form.Encode()))
	if err != nil {
		return overpassResponse{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "globetrekker-backend")

	httpResp, err := c.http.Do(req)
	if err != nil {
		return overpassResponse{}, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return overpassResponse{}, fmt.Errorf("overpass status %d", httpResp.StatusCode)
	}

	var resp overpassResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return overpassResponse{}, err
	}
	return resp, nil
}

// classify picks the node's kind by tag precedence and reports the tag
// value as detail ("tourism"/"museum", "amenity"/"cafe").
func classify(tags map[string]string) (string, string) {
	for _, tag := range kindTags {
		if v, ok := tags[tag]; ok && v != "" {
			return tag, v
		}
	}
	return "", ""
}

func (c *Client) cacheGet(ctx context.Context, key string) []Place {
	if c.redis == nil {
		return nil
	}
	raw, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var places []Place
	if json.Unmarshal(raw, &places) != nil {
		return nil
	}
	return places
}

func (c *Client) cacheSet(ctx context.Context, key string, places []Place) {
	if c.redis == nil {
		return
	}
	raw, err := json.Marshal(places)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, raw, cacheTTL).Err()
}
