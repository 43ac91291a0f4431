// Package app assembles the lead pipeline from configuration. Both the HTTP
// server and the command-line tool build their services here.
package app

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/octobees/catering-leads/internal/config"
	"github.com/octobees/catering-leads/internal/maps"
	"github.com/octobees/catering-leads/internal/service"
	"github.com/octobees/catering-leads/internal/service/website"
)

// NewLeadService wires geocoding, place search, website validation and contact
// extraction into a LeadService.
func NewLeadService(cfg *config.Config) *service.LeadService {
	mapsClient := &http.Client{Timeout: cfg.HTTPTimeout}

	geocoder := maps.NewGeocodeClient(cfg.GoogleMapsAPIKey, maps.WithGeocodeHTTPClient(mapsClient))
	searcher := maps.NewPlacesClient(cfg.GoogleMapsAPIKey, maps.WithPlacesHTTPClient(mapsClient))
	discovery := service.NewDiscoveryOrchestrator(geocoder, searcher)

	scraper := website.NewHTTPClient()
	validator := website.NewValidator(website.WithValidatorHTTPClient(scraper))
	extractor := website.NewExtractor(
		website.WithExtractorHTTPClient(scraper),
		website.WithUserAgent(cfg.ScraperUserAgent),
		website.WithContactPageProbe(cfg.ContactPageProbe),
		website.WithContactNameResolver(contactResolver(cfg)),
	)
	enricher := service.NewEnrichmentSequencer(validator, extractor,
		service.WithPacer(service.FixedDelay(cfg.EnrichDelay)),
	)

	if cfg.GoogleMapsAPIKey == "" {
		zap.L().Warn("GOOGLE_MAPS_API_KEY is not set; discovery requests will fail")
	}

	return service.NewLeadService(discovery, enricher, cfg.EnrichLimit)
}

// contactResolver uses the people-search worker when CONTACT_LOOKUP_URL is set.
func contactResolver(cfg *config.Config) website.ContactNameResolver {
	if cfg.ContactLookupURL == "" {
		return website.NoopContactResolver{}
	}
	resolver, err := website.NewWorkerContactResolver(nil, cfg.ContactLookupURL)
	if err != nil {
		zap.L().Warn("contact lookup disabled", zap.Error(err))
		return website.NoopContactResolver{}
	}
	return resolver
}
