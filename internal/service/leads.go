package service

import (
	"context"
	"errors"

	"github.com/octobees/catering-leads/internal/entity"
)

// DefaultEnrichLimit bounds how many leads one request enriches.
const DefaultEnrichLimit = 20

// Discoverer runs a discovery.
type Discoverer interface {
	RunDiscovery(ctx context.Context, req DiscoveryRequest) (DiscoveryResult, error)
}

// BatchEnricher enriches an ordered batch of leads.
type BatchEnricher interface {
	EnrichBatch(ctx context.Context, leads []*entity.Lead, progress ProgressFunc) ([]*entity.Lead, error)
}

// GenerateInput is a discovery request plus the enrichment switch.
type GenerateInput struct {
	DiscoveryRequest
	Enrich bool
}

// GenerateOutput is a discovery result that may have been enriched.
// Interrupted is set when enrichment stopped partway; the leads handled up to
// that point keep their enrichment.
type GenerateOutput struct {
	DiscoveryResult
	Enriched    bool
	Interrupted bool
}

// LeadService combines discovery with bounded enrichment.
type LeadService struct {
	discoverer  Discoverer
	enricher    BatchEnricher
	enrichLimit int
}

// NewLeadService creates a LeadService. A non-positive limit uses DefaultEnrichLimit.
func NewLeadService(discoverer Discoverer, enricher BatchEnricher, enrichLimit int) *LeadService {
	if enrichLimit <= 0 {
		enrichLimit = DefaultEnrichLimit
	}
	return &LeadService{discoverer: discoverer, enricher: enricher, enrichLimit: enrichLimit}
}

// EnrichLimit reports how many leads a single call enriches.
func (s *LeadService) EnrichLimit() int {
	return s.enrichLimit
}

// Generate runs discovery and, when asked, enriches the nearest leads. If
// enrichment is cut short the discovered leads are still returned, marked
// Interrupted, together with the error.
func (s *LeadService) Generate(ctx context.Context, in GenerateInput) (GenerateOutput, error) {
	result, err := s.discoverer.RunDiscovery(ctx, in.DiscoveryRequest)
	if err != nil {
		return GenerateOutput{}, err
	}
	out := GenerateOutput{DiscoveryResult: result}
	if !in.Enrich || len(result.Leads) == 0 {
		return out, nil
	}

	leads, err := s.Enrich(ctx, result.Leads, nil)
	out.Leads = leads
	if err != nil {
		out.Interrupted = true
		return out, err
	}
	out.Enriched = true
	return out, nil
}

// IsInterruption reports whether err comes from a cancelled or expired context.
func IsInterruption(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Enrich enriches the first EnrichLimit leads and returns the whole list in its
// original order; leads past the limit come back unchanged.
func (s *LeadService) Enrich(ctx context.Context, leads []*entity.Lead, progress ProgressFunc) ([]*entity.Lead, error) {
	head := leads
	if len(head) > s.enrichLimit {
		head = head[:s.enrichLimit]
	}
	if _, err := s.enricher.EnrichBatch(ctx, head, progress); err != nil {
		return leads, err
	}
	return leads, nil
}
