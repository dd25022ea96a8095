package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// MaxSuggestions caps the number of search results returned to clients
const MaxSuggestions = 5

// Geocoder resolves free text and coordinates into places
type Geocoder interface {
	Search(ctx context.Context, query string) ([]Place, error)
	Reverse(ctx context.Context, lat, lng float64) (*Place, error)
}

// NominatimClient is a Geocoder backed by an OpenStreetMap Nominatim instance
type NominatimClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewNominatimClient(baseURL, userAgent string, client *http.Client) *NominatimClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &NominatimClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    client,
	}
}

type nominatimAddress struct {
	City     string `json:"city"`
	Town     string `json:"town"`
	Village  string `json:"village"`
	State    string `json:"state"`
	Country  string `json:"country"`
	Postcode string `json:"postcode"`
}

type nominatimPlace struct {
	PlaceID     looseString      `json:"place_id"`
	DisplayName string           `json:"display_name"`
	Lat         looseString      `json:"lat"`
	Lon         looseString      `json:"lon"`
	Address     nominatimAddress `json:"address"`
	Error       string           `json:"error"`
}

func (p nominatimPlace) toPlace() Place {
	city := p.Address.City
	if city == "" {
		city = p.Address.Town
	}
	if city == "" {
		city = p.Address.Village
	}
	return Place{
		PlaceID:          string(p.PlaceID),
		FormattedAddress: p.DisplayName,
		Latitude:         p.Lat.float(),
		Longitude:        p.Lon.float(),
		City:             city,
		State:            p.Address.State,
		Country:          p.Address.Country,
		PostalCode:       p.Address.Postcode,
	}
}

// Search returns at most MaxSuggestions places matching query
func (c *NominatimClient) Search(ctx context.Context, query string) ([]Place, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(MaxSuggestions))

	var results []nominatimPlace
	if err := c.get(ctx, "search", params, &results); err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(results))
	for _, r := range results {
		if len(places) == MaxSuggestions {
			break
		}
		places = append(places, r.toPlace())
	}
	return places, nil
}

// Reverse returns the place closest to the coordinates
func (c *NominatimClient) Reverse(ctx context.Context, lat, lng float64) (*Place, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("zoom", "18")

	var result nominatimPlace
	if err := c.get(ctx, "reverse", params, &result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, fmt.Errorf("nominatim: %s", result.Error)
	}
	place := result.toPlace()
	return &place, nil
}

func (c *NominatimClient) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	params.Set("format", "json")
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	// Nominatim's usage policy requires an identifying agent
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach nominatim: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nominatim %s returned %d", endpoint, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse nominatim response: %w", err)
	}
	return nil
}

// SearchOrEmpty searches and degrades to an empty result when the geocoder fails
func SearchOrEmpty(ctx context.Context, g Geocoder, query string) []Place {
	places, err := g.Search(ctx, query)
	if err != nil {
		log.WithError(err).WithField("query", query).Warn("Address search failed, returning no suggestions")
		return []Place{}
	}
	return places
}

// ReverseOrCoordinates reverse geocodes and degrades to a place carrying only the coordinates
func ReverseOrCoordinates(ctx context.Context, g Geocoder, lat, lng float64) *Place {
	place, err := g.Reverse(ctx, lat, lng)
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{"lat": lat, "lng": lng}).Warn("Reverse geocoding failed, returning coordinates only")
		return &Place{
			FormattedAddress: fmt.Sprintf("%.6f, %.6f", lat, lng),
			Latitude:         lat,
			Longitude:        lng,
		}
	}
	return place
}
