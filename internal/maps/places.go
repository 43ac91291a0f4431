package maps

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"github.com/rotisserie/eris"
	"google.golang.org/api/option"
	places "google.golang.org/api/places/v1"

	"github.com/octobees/catering-leads/internal/entity"
	"github.com/octobees/catering-leads/internal/geo"
)

const (
	defaultPlacesEndpoint = "https://places.googleapis.com/"
	// MaxResultsPerSearch caps each text search call.
	MaxResultsPerSearch = 20
	searchLanguage      = "en"
	phoneRegion         = "US"
)

// DefaultFieldMask lists the place fields requested from the Places API.
var DefaultFieldMask = []string{
	"places.id",
	"places.displayName",
	"places.formattedAddress",
	"places.addressComponents",
	"places.location",
	"places.rating",
	"places.userRatingCount",
	"places.websiteUri",
	"places.nationalPhoneNumber",
	"places.internationalPhoneNumber",
	"places.googleMapsUri",
	"places.businessStatus",
	"places.types",
}

// SearchRequest describes one location-biased text search.
type SearchRequest struct {
	Query       string
	Center      entity.Coordinate
	RadiusMiles float64
}

// Place is a search hit, scoped to a single search call.
type Place struct {
	ID                 string
	DisplayName        string
	FormattedAddress   string
	AddressComponents  []geo.AddressComponent
	Location           *entity.Coordinate
	Rating             *float64
	ReviewCount        *int
	WebsiteURL         string
	NationalPhone      string
	InternationalPhone string
	MapsURL            string
	BusinessStatus     string
	Types              []string
}

// Phone returns the national phone number, or the international one rendered in
// US national format when only that is available.
func (p Place) Phone() string {
	if phone := strings.TrimSpace(p.NationalPhone); phone != "" {
		return phone
	}
	intl := strings.TrimSpace(p.InternationalPhone)
	if intl == "" {
		return ""
	}
	number, err := phonenumbers.Parse(intl, phoneRegion)
	if err != nil {
		return intl
	}
	return phonenumbers.Format(number, phonenumbers.NATIONAL)
}

// PlaceSearcher issues text searches around a point.
type PlaceSearcher interface {
	SearchText(ctx context.Context, req SearchRequest) ([]Place, error)
}

// PlacesClient wraps the Places API (New) text search.
type PlacesClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	fieldMask  string
}

// PlacesOption configures a PlacesClient.
type PlacesOption func(*PlacesClient)

// WithPlacesEndpoint overrides the API root, e.g. for tests.
func WithPlacesEndpoint(endpoint string) PlacesOption {
	return func(c *PlacesClient) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithPlacesHTTPClient overrides the HTTP client.
func WithPlacesHTTPClient(client *http.Client) PlacesOption {
	return func(c *PlacesClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithFieldMask narrows the fields requested per place.
func WithFieldMask(fields ...string) PlacesOption {
	return func(c *PlacesClient) {
		if len(fields) > 0 {
			c.fieldMask = strings.Join(fields, ",")
		}
	}
}

// NewPlacesClient builds a Places client. Like the geocoder, a missing key is
// reported as ErrMissingAPIKey when a search is attempted.
func NewPlacesClient(apiKey string, opts ...PlacesOption) *PlacesClient {
	c := &PlacesClient{
		apiKey:     strings.TrimSpace(apiKey),
		endpoint:   defaultPlacesEndpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		fieldMask:  strings.Join(DefaultFieldMask, ","),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchText runs one capped, location-biased text search.
func (c *PlacesClient) SearchText(ctx context.Context, req SearchRequest) ([]Place, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	svc, err := places.NewService(ctx,
		option.WithHTTPClient(c.httpClient),
		option.WithEndpoint(c.endpoint),
	)
	if err != nil {
		return nil, eris.Wrap(err, "places: create service")
	}

	call := svc.Places.SearchText(&places.GoogleMapsPlacesV1SearchTextRequest{
		TextQuery:      req.Query,
		LanguageCode:   searchLanguage,
		MaxResultCount: MaxResultsPerSearch,
		LocationBias: &places.GoogleMapsPlacesV1SearchTextRequestLocationBias{
			Circle: &places.GoogleMapsPlacesV1Circle{
				Center: &places.GoogleTypeLatLng{
					Latitude:  req.Center.Latitude,
					Longitude: req.Center.Longitude,
				},
				Radius: geo.MilesToMeters(req.RadiusMiles),
			},
		},
	})
	call.Header().Set("X-Goog-Api-Key", c.apiKey)
	call.Header().Set("X-Goog-FieldMask", c.fieldMask)

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, eris.Wrapf(err, "places: search text %q", req.Query)
	}

	out := make([]Place, 0, len(resp.Places))
	for _, p := range resp.Places {
		if p == nil || p.Id == "" {
			continue
		}
		out = append(out, fromAPIPlace(p))
	}
	return out, nil
}

func fromAPIPlace(p *places.GoogleMapsPlacesV1Place) Place {
	place := Place{
		ID:                 p.Id,
		FormattedAddress:   p.FormattedAddress,
		WebsiteURL:         p.WebsiteUri,
		NationalPhone:      p.NationalPhoneNumber,
		InternationalPhone: p.InternationalPhoneNumber,
		MapsURL:            p.GoogleMapsUri,
		BusinessStatus:     p.BusinessStatus,
		Types:              p.Types,
	}
	if p.DisplayName != nil {
		place.DisplayName = p.DisplayName.Text
	}
	if p.Location != nil {
		place.Location = &entity.Coordinate{
			Latitude:  p.Location.Latitude,
			Longitude: p.Location.Longitude,
		}
	}
	if p.Rating > 0 {
		rating := p.Rating
		place.Rating = &rating
	}
	if p.UserRatingCount > 0 {
		count := int(p.UserRatingCount)
		place.ReviewCount = &count
	}
	for _, comp := range p.AddressComponents {
		if comp == nil {
			continue
		}
		place.AddressComponents = append(place.AddressComponents, geo.AddressComponent{
			LongText:  comp.LongText,
			ShortText: comp.ShortText,
			Types:     comp.Types,
		})
	}
	return place
}

var _ PlaceSearcher = (*PlacesClient)(nil)
