package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchBody = `[
 {"place_id": 1001, "display_name": "Anna Nagar, Chennai", "lat": "13.085", "lon": "80.2101",
  "address": {"city": "Chennai", "state": "Tamil Nadu", "country": "India", "postcode": "600040"}},
 {"place_id": 1002, "display_name": "Tambaram", "lat": "12.9249", "lon": "80.1000",
  "address": {"town": "Tambaram", "state": "Tamil Nadu", "country": "India"}},
 {"place_id": 1003, "display_name": "Village", "lat": "12.1", "lon": "80.1", "address": {"village": "Kovalam"}},
 {"place_id": 1004, "display_name": "D", "lat": "12.2", "lon": "80.2", "address": {}},
 {"place_id": 1005, "display_name": "E", "lat": "12.3", "lon": "80.3", "address": {}},
 {"place_id": 1006, "display_name": "F", "lat": "12.4", "lon": "80.4", "address": {}}
]`

func TestNominatimSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "anna nagar", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "FreshBite-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(searchBody))
	}))
	defer server.Close()

	c := NewNominatimClient(server.URL, "FreshBite-test", server.Client())
	places, err := c.Search(context.Background(), "anna nagar")
	require.NoError(t, err)

	require.Len(t, places, MaxSuggestions)
	assert.Equal(t, "1001", places[0].PlaceID)
	assert.Equal(t, "Chennai", places[0].City)
	assert.Equal(t, "600040", places[0].PostalCode)
	assert.InDelta(t, 13.085, places[0].Latitude, 1e-9)
	assert.Equal(t, "Tambaram", places[1].City)
	assert.Equal(t, "Kovalam", places[2].City)
}

func TestNominatimReverse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "18", r.URL.Query().Get("zoom"))
		_, _ = w.Write([]byte(`{"place_id": "77", "display_name": "Pallavaram", "lat": "12.96", "lon": "80.15",
			"address": {"city": "Chennai"}}`))
	}))
	defer server.Close()

	c := NewNominatimClient(server.URL, "ua", server.Client())
	place, err := c.Reverse(context.Background(), 12.96, 80.15)
	require.NoError(t, err)
	assert.Equal(t, "77", place.PlaceID)
	assert.Equal(t, "Pallavaram", place.FormattedAddress)
}

type failingGeocoder struct{}

func (failingGeocoder) Search(context.Context, string) ([]Place, error) {
	return nil, errors.New("upstream down")
}

func (failingGeocoder) Reverse(context.Context, float64, float64) (*Place, error) {
	return nil, errors.New("upstream down")
}

func TestGeocoderFallbacks(t *testing.T) {
	places := SearchOrEmpty(context.Background(), failingGeocoder{}, "anna nagar")
	assert.NotNil(t, places)
	assert.Empty(t, places)

	place := ReverseOrCoordinates(context.Background(), failingGeocoder{}, 12.5, 80.25)
	assert.Equal(t, 12.5, place.Latitude)
	assert.Equal(t, 80.25, place.Longitude)
	assert.Equal(t, "12.500000, 80.250000", place.FormattedAddress)
	assert.Empty(t, place.PlaceID)
}

func TestOSRMRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/route/v1/driving/80.150310,12.967620;80.210100,13.085000")
		assert.Equal(t, "geojson", r.URL.Query().Get("geometries"))
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"duration":1250,"distance":15432,
			"geometry":{"coordinates":[[80.15031,12.96762],[80.18,13.0],[80.2101,13.085]]}}]}`))
	}))
	defer server.Close()

	c := NewOSRMClient(server.URL, server.Client())
	from := Point{Lat: 12.96762, Lng: 80.15031}
	to := Point{Lat: 13.085, Lng: 80.2101}

	summary := PlanRoute(context.Background(), c, from, to)
	assert.False(t, summary.Fallback)
	require.Len(t, summary.Path, 3)
	assert.Equal(t, Point{Lat: 13.0, Lng: 80.18}, summary.Path[1])
	assert.Equal(t, 21, summary.ETAMinutes)
	assert.InDelta(t, 15.4, summary.DistanceKm, 1e-9)
}

func TestPlanRouteMinimumETA(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"duration":60,"distance":480,
			"geometry":{"coordinates":[[80.1,12.9],[80.2,13.0]]}}]}`))
	}))
	defer server.Close()

	summary := PlanRoute(context.Background(), NewOSRMClient(server.URL, server.Client()), Point{}, Point{})
	assert.Equal(t, 5, summary.ETAMinutes)
	assert.InDelta(t, 0.5, summary.DistanceKm, 1e-9)
}

func TestPlanRouteFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	from := Point{Lat: 12.96762, Lng: 80.15031}
	to := Point{Lat: 13.0, Lng: 80.2}
	summary := PlanRoute(context.Background(), NewOSRMClient(server.URL, server.Client()), from, to)

	assert.True(t, summary.Fallback)
	assert.Equal(t, []Point{from, to}, summary.Path)
	assert.Equal(t, FallbackETAMinutes, summary.ETAMinutes)
	assert.Equal(t, FallbackDistanceKm, summary.DistanceKm)
}

func TestInterpolate(t *testing.T) {
	path := []Point{{Lat: 0, Lng: 0}, {Lat: 10, Lng: 0}, {Lat: 10, Lng: 10}}

	assert.Equal(t, path[0], Interpolate(path, -1))
	assert.Equal(t, path[0], Interpolate(path, 0))
	assert.Equal(t, path[2], Interpolate(path, 1))
	assert.Equal(t, path[2], Interpolate(path, 3))

	mid := Interpolate(path, 0.5)
	assert.InDelta(t, 10, mid.Lat, 1e-9)
	assert.InDelta(t, 0, mid.Lng, 1e-9)

	quarter := Interpolate(path, 0.25)
	assert.InDelta(t, 5, quarter.Lat, 1e-9)

	assert.Equal(t, Point{}, Interpolate(nil, 0.5))
	assert.Equal(t, path[0], Interpolate(path[:1], 0.7))
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(12.9, 80.1))
	assert.False(t, ValidCoordinates(91, 0))
	assert.False(t, ValidCoordinates(0, -181))
}
