package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/octobees/catering-leads/internal/entity"
	"github.com/octobees/catering-leads/internal/service/website"
)

// DefaultEnrichDelay is the pause between two consecutive leads.
const DefaultEnrichDelay = 500 * time.Millisecond

// Pacer decides when the next lead may be visited.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedDelay sleeps a constant duration between leads.
type FixedDelay time.Duration

// Wait blocks for the delay or until ctx is done.
func (d FixedDelay) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RatePacer spaces leads with a token bucket, so several workers can share one budget.
type RatePacer struct {
	limiter *rate.Limiter
}

// NewRatePacer allows one lead per interval with the given burst.
func NewRatePacer(interval time.Duration, burst int) *RatePacer {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &RatePacer{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until a token is available or ctx is done.
func (p *RatePacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// ReachabilityChecker reports whether a website responds.
type ReachabilityChecker interface {
	IsReachable(ctx context.Context, rawURL string) bool
}

// ContactExtractor scrapes contact details from a website.
type ContactExtractor interface {
	Extract(ctx context.Context, rawURL string) website.Result
}

// ProgressFunc is called before each lead with its 1-based position.
type ProgressFunc func(current, total int)

// EnrichmentSequencer visits leads one at a time and fills their contact gaps.
type EnrichmentSequencer struct {
	validator ReachabilityChecker
	extractor ContactExtractor
	pacer     Pacer
	logger    *zap.Logger
}

// EnrichmentOption configures optional dependencies.
type EnrichmentOption func(*EnrichmentSequencer)

// WithPacer replaces the fixed 500ms delay.
func WithPacer(p Pacer) EnrichmentOption {
	return func(s *EnrichmentSequencer) {
		if p != nil {
			s.pacer = p
		}
	}
}

// WithEnrichmentLogger overrides the global zap logger.
func WithEnrichmentLogger(logger *zap.Logger) EnrichmentOption {
	return func(s *EnrichmentSequencer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewEnrichmentSequencer wires the website validator and extractor.
func NewEnrichmentSequencer(validator ReachabilityChecker, extractor ContactExtractor, opts ...EnrichmentOption) *EnrichmentSequencer {
	s := &EnrichmentSequencer{
		validator: validator,
		extractor: extractor,
		pacer:     FixedDelay(DefaultEnrichDelay),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnrichBatch enriches leads in order, mutating them in place, and returns the
// same slice. If ctx ends mid-batch the leads handled so far are kept intact and
// ctx's error is returned alongside the slice.
func (s *EnrichmentSequencer) EnrichBatch(ctx context.Context, leads []*entity.Lead, progress ProgressFunc) ([]*entity.Lead, error) {
	log := s.logger
	if log == nil {
		log = zap.L()
	}
	total := len(leads)
	log.Info("enrichment started", zap.Int("leads", total))

	for i, lead := range leads {
		if i > 0 {
			if err := s.pacer.Wait(ctx); err != nil {
				log.Warn("enrichment interrupted", zap.Int("processed", i), zap.Error(err))
				return leads, err
			}
		}
		if err := ctx.Err(); err != nil {
			log.Warn("enrichment interrupted", zap.Int("processed", i), zap.Error(err))
			return leads, err
		}
		if progress != nil {
			progress(i+1, total)
		}
		s.enrichLead(ctx, log, lead)
	}

	log.Info("enrichment finished", zap.Int("leads", total))
	return leads, nil
}

func (s *EnrichmentSequencer) enrichLead(ctx context.Context, log *zap.Logger, lead *entity.Lead) {
	if lead == nil || lead.URL == nil || *lead.URL == "" {
		return
	}
	target := *lead.URL
	log = log.With(zap.String("company", lead.Company), zap.String("url", target))

	reachable := s.validator.IsReachable(ctx, target)
	if ctx.Err() != nil {
		return
	}
	lead.URLValid = entity.ValidityOf(reachable)
	if !reachable {
		log.Debug("website unreachable")
		return
	}

	result := s.extractor.Extract(ctx, target)
	if ctx.Err() != nil {
		return
	}
	if !result.IsReachable {
		log.Debug("website content not extracted")
		return
	}
	MergeContactResult(lead, result)
}

// MergeContactResult copies scraped details into nil fields of lead. Fields that
// already hold a value are left alone.
func MergeContactResult(lead *entity.Lead, result website.Result) {
	if lead.ContactEmail == nil && len(result.Emails) > 0 {
		lead.ContactEmail = entity.StringPtr(result.Emails[0])
	}
	if lead.ContactPhone == nil && len(result.Phones) > 0 {
		lead.ContactPhone = entity.StringPtr(result.Phones[0])
	}
	if result.ContactName != "" && lead.ContactFirstName == nil && lead.ContactLastName == nil {
		first, last := website.SplitName(result.ContactName)
		lead.ContactFirstName = entity.StringPtr(first)
		lead.ContactLastName = entity.StringPtr(last)
		if lead.ContactTitle == nil {
			lead.ContactTitle = entity.StringPtr(result.ContactTitle)
		}
	}
	if lead.FacebookLink == nil {
		lead.FacebookLink = entity.StringPtr(result.FacebookURL)
	}
	if lead.InstagramLink == nil {
		lead.InstagramLink = entity.StringPtr(result.InstagramURL)
	}
	if lead.CompanyDescription == nil {
		lead.CompanyDescription = entity.StringPtr(result.Description)
	}
}
