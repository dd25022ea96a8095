package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Fallback values used when no driving route is available
const (
	FallbackETAMinutes = 18
	FallbackDistanceKm = 6.0
	minETAMinutes      = 5
)

// Route is a driving route between two points
type Route struct {
	Path            []Point
	DurationSeconds float64
	DistanceMeters  float64
}

// Router computes driving routes
type Router interface {
	Route(ctx context.Context, from, to Point) (*Route, error)
}

// OSRMClient is a Router backed by an OSRM instance
type OSRMClient struct {
	baseURL string
	client  *http.Client
}

func NewOSRMClient(baseURL string, client *http.Client) *OSRMClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &OSRMClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Duration float64 `json:"duration"`
		Distance float64 `json:"distance"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"` // [lng, lat]
		} `json:"geometry"`
	} `json:"routes"`
}

func (c *OSRMClient) Route(ctx context.Context, from, to Point) (*Route, error) {
	endpoint := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?steps=false&overview=full&geometries=geojson",
		c.baseURL, from.Lng, from.Lat, to.Lng, to.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach osrm: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("osrm returned %d", resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to parse osrm response: %w", err)
	}
	if len(body.Routes) == 0 {
		return nil, fmt.Errorf("osrm found no route (code %q)", body.Code)
	}

	best := body.Routes[0]
	path := make([]Point, 0, len(best.Geometry.Coordinates))
	for _, c := range best.Geometry.Coordinates {
		if len(c) < 2 {
			continue
		}
		path = append(path, Point{Lat: c[1], Lng: c[0]})
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("osrm route has no geometry")
	}

	return &Route{Path: path, DurationSeconds: best.Duration, DistanceMeters: best.Distance}, nil
}

// RouteSummary is the delivery route shown to customers
type RouteSummary struct {
	Path       []Point `json:"path"`
	ETAMinutes int     `json:"etaMinutes"`
	DistanceKm float64 `json:"distanceKm"`
	Fallback   bool    `json:"fallback"`
}

// PlanRoute asks the router for a driving route and falls back to a straight
// two point path with a fixed ETA and distance when it fails.
func PlanRoute(ctx context.Context, r Router, from, to Point) RouteSummary {
	route, err := r.Route(ctx, from, to)
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"from": from,
			"to":   to,
		}).Warn("Route lookup failed, using fallback route")
		return RouteSummary{
			Path:       []Point{from, to},
			ETAMinutes: FallbackETAMinutes,
			DistanceKm: FallbackDistanceKm,
			Fallback:   true,
		}
	}

	eta := int(math.Round(route.DurationSeconds / 60))
	if eta < minETAMinutes {
		eta = minETAMinutes
	}
	return RouteSummary{
		Path:       route.Path,
		ETAMinutes: eta,
		DistanceKm: math.Round(route.DistanceMeters/100) / 10,
	}
}

// Interpolate returns the position a fraction progress (clamped to [0,1]) of the way along path,
// advancing point by point the way the rider marker moves.
func Interpolate(path []Point, progress float64) Point {
	if len(path) == 0 {
		return Point{}
	}
	if progress <= 0 || len(path) == 1 {
		return path[0]
	}
	if progress >= 1 {
		return path[len(path)-1]
	}

	pos := progress * float64(len(path)-1)
	i := int(pos)
	frac := pos - float64(i)
	a, b := path[i], path[i+1]
	return Point{
		Lat: a.Lat + (b.Lat-a.Lat)*frac,
		Lng: a.Lng + (b.Lng-a.Lng)*frac,
	}
}
