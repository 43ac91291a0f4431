package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/octobees/catering-leads/internal/entity"
	"github.com/octobees/catering-leads/internal/geo"
	"github.com/octobees/catering-leads/internal/maps"
	"github.com/octobees/catering-leads/internal/service/classify"
)

var (
	// ErrAddressNotResolvable is returned when the target address cannot be geocoded.
	ErrAddressNotResolvable = errors.New("address not resolvable")
	// ErrConfiguration marks missing credentials or similar setup problems.
	ErrConfiguration = errors.New("configuration error")
	// ErrInvalidDiscoveryRequest is returned for an empty address or a non-positive radius.
	ErrInvalidDiscoveryRequest = errors.New("invalid discovery request")
)

// SearchCategory selects a fixed set of search terms.
type SearchCategory string

const (
	CategoryCatering   SearchCategory = "catering"
	CategoryPizzaDiner SearchCategory = "pizza_diner"
	CategoryMealPrep   SearchCategory = "meal_prep"
	CategoryCustom     SearchCategory = "custom"
)

var categoryTerms = map[SearchCategory][]string{
	CategoryCatering:   {"catering", "catering company", "food catering", "meal prep catering"},
	CategoryPizzaDiner: {"pizza restaurant", "diner", "local pizza"},
	CategoryMealPrep:   {"meal prep", "meal delivery", "prepared meals"},
}

const fallbackTerm = "catering"

// SearchTerms returns the terms a run will issue. Custom runs use the caller's
// non-blank terms; unknown categories and empty custom lists fall back to "catering".
func SearchTerms(category SearchCategory, custom []string) []string {
	if category == CategoryCustom {
		terms := make([]string, 0, len(custom))
		for _, term := range custom {
			if term = strings.TrimSpace(term); term != "" {
				terms = append(terms, term)
			}
		}
		if len(terms) > 0 {
			return terms
		}
		return []string{fallbackTerm}
	}
	if terms, ok := categoryTerms[category]; ok {
		return append([]string(nil), terms...)
	}
	return []string{fallbackTerm}
}

// DiscoveryState is a step of a discovery run.
type DiscoveryState string

const (
	StateIdle        DiscoveryState = "idle"
	StateGeocoding   DiscoveryState = "geocoding"
	StateSearching   DiscoveryState = "searching"
	StateAggregating DiscoveryState = "aggregating"
	StateDone        DiscoveryState = "done"
	StateFailed      DiscoveryState = "failed"
)

// DiscoveryRequest describes one discovery run.
type DiscoveryRequest struct {
	SchoolAddress string
	RadiusMiles   float64
	Category      SearchCategory
	CustomTerms   []string
}

// DiscoveryResult is what a successful run produces. Leads are sorted by distance.
type DiscoveryResult struct {
	RunID       string
	Leads       []*entity.Lead
	Location    entity.ResolvedLocation
	TermsUsed   []string
	FailedTerms []string
}

// DiscoveryOrchestrator runs geocode, search, filter and classify in sequence.
type DiscoveryOrchestrator struct {
	geocoder maps.Geocoder
	searcher maps.PlaceSearcher
	logger   *zap.Logger
}

// DiscoveryOption configures optional dependencies.
type DiscoveryOption func(*DiscoveryOrchestrator)

// WithDiscoveryLogger overrides the global zap logger.
func WithDiscoveryLogger(logger *zap.Logger) DiscoveryOption {
	return func(o *DiscoveryOrchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewDiscoveryOrchestrator wires the geocoder and place searcher.
func NewDiscoveryOrchestrator(geocoder maps.Geocoder, searcher maps.PlaceSearcher, opts ...DiscoveryOption) *DiscoveryOrchestrator {
	o := &DiscoveryOrchestrator{geocoder: geocoder, searcher: searcher}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// discoveryRun carries the per-run logger and state.
type discoveryRun struct {
	id    string
	state DiscoveryState
	log   *zap.Logger
}

func (r *discoveryRun) enter(next DiscoveryState, fields ...zap.Field) {
	r.log.Info("discovery state change",
		append([]zap.Field{zap.String("from", string(r.state)), zap.String("to", string(next))}, fields...)...)
	r.state = next
}

func (r *discoveryRun) fail(err error) error {
	r.enter(StateFailed, zap.Error(err))
	return err
}

// RunDiscovery geocodes the address, issues one search per term and returns the
// unique places inside the radius as leads. Only configuration and geocoding
// failures abort the run; a failing search term contributes nothing.
func (o *DiscoveryOrchestrator) RunDiscovery(ctx context.Context, req DiscoveryRequest) (DiscoveryResult, error) {
	logger := o.logger
	if logger == nil {
		logger = zap.L()
	}
	run := &discoveryRun{id: uuid.NewString(), state: StateIdle}
	run.log = logger.With(zap.String("run_id", run.id))

	address := strings.TrimSpace(req.SchoolAddress)
	if address == "" || req.RadiusMiles <= 0 {
		return DiscoveryResult{}, run.fail(fmt.Errorf("%w: address %q radius %v", ErrInvalidDiscoveryRequest, address, req.RadiusMiles))
	}

	run.enter(StateGeocoding, zap.String("address", address))
	location, err := o.geocoder.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, maps.ErrMissingAPIKey) {
			return DiscoveryResult{}, run.fail(fmt.Errorf("%w: %w", ErrConfiguration, err))
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return DiscoveryResult{}, run.fail(ctxErr)
		}
		return DiscoveryResult{}, run.fail(fmt.Errorf("%w: %w", ErrAddressNotResolvable, err))
	}

	terms := SearchTerms(req.Category, req.CustomTerms)
	run.enter(StateSearching, zap.Strings("terms", terms))
	places, failed, err := o.search(ctx, run, address, location.Coordinate, req.RadiusMiles, terms)
	if err != nil {
		return DiscoveryResult{}, run.fail(err)
	}

	run.enter(StateAggregating, zap.Int("unique_places", len(places)))
	leads := aggregate(run, places, location.Coordinate, req.RadiusMiles)

	run.enter(StateDone, zap.Int("leads", len(leads)), zap.Int("failed_terms", len(failed)))
	return DiscoveryResult{
		RunID:       run.id,
		Leads:       leads,
		Location:    location,
		TermsUsed:   terms,
		FailedTerms: failed,
	}, nil
}

// search issues the terms one at a time and keeps the first occurrence of each place id.
func (o *DiscoveryOrchestrator) search(ctx context.Context, run *discoveryRun, address string, center entity.Coordinate, radius float64, terms []string) ([]maps.Place, []string, error) {
	seen := make(map[string]struct{})
	var (
		unique []maps.Place
		failed []string
	)

	for _, term := range terms {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		found, err := o.searcher.SearchText(ctx, maps.SearchRequest{
			Query:       fmt.Sprintf("%s near %s", term, address),
			Center:      center,
			RadiusMiles: radius,
		})
		if err != nil {
			if errors.Is(err, maps.ErrMissingAPIKey) {
				return nil, nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, nil, ctxErr
			}
			run.log.Warn("search term failed", zap.String("term", term), zap.Error(err))
			failed = append(failed, term)
			continue
		}

		added := 0
		for _, place := range found {
			if _, dup := seen[place.ID]; dup {
				continue
			}
			seen[place.ID] = struct{}{}
			unique = append(unique, place)
			added++
		}
		run.log.Debug("search term done", zap.String("term", term), zap.Int("results", len(found)), zap.Int("new", added))
	}
	return unique, failed, nil
}

func aggregate(run *discoveryRun, places []maps.Place, center entity.Coordinate, radius float64) []*entity.Lead {
	leads := make([]*entity.Lead, 0, len(places))
	for _, place := range places {
		if place.Location == nil {
			run.log.Debug("place without location dropped", zap.String("place_id", place.ID))
			continue
		}
		distance := geo.DistanceMiles(center, *place.Location)
		if distance > radius {
			continue
		}
		leads = append(leads, buildLead(place, displayDistance(distance, radius)))
	}
	SortByDistance(leads)
	return leads
}

// displayDistance rounds to one decimal, rounding down when rounding up would
// report a distance past the radius.
func displayDistance(distance, radius float64) float64 {
	rounded := geo.RoundTenth(distance)
	if rounded > radius {
		return math.Floor(distance*10) / 10
	}
	return rounded
}

func buildLead(place maps.Place, distance float64) *entity.Lead {
	addr := geo.NormalizeAddress(place.AddressComponents, place.FormattedAddress)
	flags := classify.Evaluate(place.DisplayName, place.WebsiteURL)
	display := geo.FormatMiles(distance)

	return &entity.Lead{
		Company:         place.DisplayName,
		SourcePlaceID:   entity.StringPtr(place.ID),
		URL:             entity.StringPtr(strings.TrimSpace(place.WebsiteURL)),
		ContactPhone:    entity.StringPtr(place.Phone()),
		Address:         entity.StringPtr(addr.Street),
		AddressLine2:    entity.StringPtr(addr.AddressLine2),
		City:            entity.StringPtr(addr.City),
		State:           entity.StringPtr(addr.State),
		Zipcode:         entity.StringPtr(addr.Zipcode),
		Country:         addr.Country,
		DistanceMiles:   &distance,
		DistanceDisplay: &display,
		Source:          entity.SourceGooglePlaces,
		Rating:          place.Rating,
		ReviewCount:     place.ReviewCount,
		IsChain:         flags.IsChain,
		ChainFlagged:    flags.ChainFlagged,
		CuisineFlagged:  flags.CuisineFlagged,
		FlagReason:      entity.StringPtr(flags.Reason),
	}
}

// SortByDistance orders leads nearest first; leads without a distance go last.
func SortByDistance(leads []*entity.Lead) {
	sort.SliceStable(leads, func(i, j int) bool {
		a, b := leads[i].DistanceMiles, leads[j].DistanceMiles
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}
