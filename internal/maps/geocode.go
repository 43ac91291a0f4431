// Package maps talks to the Google Maps Platform: geocoding the target address and
// location-biased text search for candidate places.
package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/octobees/catering-leads/internal/entity"
)

const defaultGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

var (
	// ErrMissingAPIKey reports that no Google Maps API key is configured.
	ErrMissingAPIKey = errors.New("GOOGLE_MAPS_API_KEY not configured")
	// ErrAddressNotFound reports that the geocoder had no match for an address.
	ErrAddressNotFound = errors.New("address not found")
)

// HTTPClient abstracts outbound HTTP calls so tests can stub them.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Geocoder resolves free-text addresses.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (entity.ResolvedLocation, error)
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// GeocodeClient calls the Google Geocoding API once per lookup, without caching or retries.
type GeocodeClient struct {
	apiKey     string
	endpoint   string
	httpClient HTTPClient
}

// GeocodeOption configures a GeocodeClient.
type GeocodeOption func(*GeocodeClient)

// WithGeocodeEndpoint overrides the Geocoding API URL.
func WithGeocodeEndpoint(endpoint string) GeocodeOption {
	return func(c *GeocodeClient) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithGeocodeHTTPClient overrides the HTTP client.
func WithGeocodeHTTPClient(client HTTPClient) GeocodeOption {
	return func(c *GeocodeClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewGeocodeClient builds a geocoder. An empty key is accepted here and reported
// as ErrMissingAPIKey on first use.
func NewGeocodeClient(apiKey string, opts ...GeocodeOption) *GeocodeClient {
	c := &GeocodeClient{
		apiKey:     strings.TrimSpace(apiKey),
		endpoint:   defaultGeocodeURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Geocode resolves address to coordinates and Google's formatted address.
// Any non-OK status or empty result set yields ErrAddressNotFound.
func (c *GeocodeClient) Geocode(ctx context.Context, address string) (entity.ResolvedLocation, error) {
	if c.apiKey == "" {
		return entity.ResolvedLocation{}, ErrMissingAPIKey
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return entity.ResolvedLocation{}, fmt.Errorf("geocode: empty address: %w", ErrAddressNotFound)
	}

	params := url.Values{
		"address": {address},
		"key":     {c.apiKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return entity.ResolvedLocation{}, eris.Wrap(err, "geocode: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return entity.ResolvedLocation{}, eris.Wrap(err, "geocode: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return entity.ResolvedLocation{}, eris.Wrap(err, "geocode: read body")
	}
	if resp.StatusCode != http.StatusOK {
		return entity.ResolvedLocation{}, fmt.Errorf("geocode: status %d: %w", resp.StatusCode, ErrAddressNotFound)
	}

	var payload geocodeResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return entity.ResolvedLocation{}, eris.Wrap(err, "geocode: parse response")
	}
	if payload.Status != "OK" || len(payload.Results) == 0 {
		return entity.ResolvedLocation{}, fmt.Errorf("geocode: status %s: %w", payload.Status, ErrAddressNotFound)
	}

	first := payload.Results[0]
	return entity.ResolvedLocation{
		Coordinate: entity.Coordinate{
			Latitude:  first.Geometry.Location.Lat,
			Longitude: first.Geometry.Location.Lng,
		},
		FormattedAddress: first.FormattedAddress,
	}, nil
}

var _ Geocoder = (*GeocodeClient)(nil)
