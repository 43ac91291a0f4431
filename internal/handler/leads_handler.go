package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/catering-leads/internal/dto"
	"github.com/octobees/catering-leads/internal/entity"
	"github.com/octobees/catering-leads/internal/export"
	middleware "github.com/octobees/catering-leads/internal/middleware"
	"github.com/octobees/catering-leads/internal/service"
	"github.com/octobees/catering-leads/internal/service/scoring"
)

// LeadGenerator abstracts the lead service for handler consumption.
type LeadGenerator interface {
	Generate(ctx context.Context, in service.GenerateInput) (service.GenerateOutput, error)
	Enrich(ctx context.Context, leads []*entity.Lead, progress service.ProgressFunc) ([]*entity.Lead, error)
	EnrichLimit() int
}

// ScoredLead is a lead as returned over HTTP, with its score alongside.
type ScoredLead struct {
	*entity.Lead
	Score scoring.ScoreResult `json:"score"`
}

// GenerateLeadsResponse is the data of a successful POST /leads/generate.
type GenerateLeadsResponse struct {
	Leads           []ScoredLead            `json:"leads"`
	TotalCount      int                     `json:"total_count"`
	SchoolLocation  entity.ResolvedLocation `json:"school_location"`
	SearchTermsUsed []string                `json:"search_terms_used"`
	FailedTerms     []string                `json:"failed_terms,omitempty"`
	Enriched        bool                    `json:"enriched"`
	Interrupted     bool                    `json:"enrichment_interrupted,omitempty"`
	RunID           string                  `json:"run_id"`
}

// EnrichLeadsResponse is the data of a successful POST /leads/enrich.
type EnrichLeadsResponse struct {
	Leads         []ScoredLead `json:"leads"`
	TotalCount    int          `json:"total_count"`
	EnrichedCount int          `json:"enriched_count"`
	Interrupted   bool         `json:"enrichment_interrupted,omitempty"`
}

const interruptedMessage = "enrichment interrupted; returning partially enriched leads"

// LeadsHandler serves discovery, enrichment and export.
type LeadsHandler struct {
	leads LeadGenerator
	now   func() time.Time
}

// NewLeadsHandler constructs a LeadsHandler.
func NewLeadsHandler(leads LeadGenerator) *LeadsHandler {
	return &LeadsHandler{leads: leads, now: time.Now}
}

// Generate handles POST /leads/generate.
func (h *LeadsHandler) Generate(c echo.Context) error {
	var req dto.GenerateLeadsRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	req.SchoolAddress = strings.TrimSpace(req.SchoolAddress)
	req.SearchType = strings.TrimSpace(req.SearchType)
	req.ApplyDefaults()
	if err := c.Validate(&req); err != nil {
		return ErrorWithDetails(c, http.StatusBadRequest, "validation failed", ValidationDetails(err))
	}

	out, err := h.leads.Generate(c.Request().Context(), service.GenerateInput{
		DiscoveryRequest: service.DiscoveryRequest{
			SchoolAddress: req.SchoolAddress,
			RadiusMiles:   req.RadiusMiles,
			Category:      service.SearchCategory(req.SearchType),
			CustomTerms:   req.CustomSearchTerms,
		},
		Enrich: req.EnrichLeads,
	})
	message := fmt.Sprintf("found %d leads", len(out.Leads))
	if err != nil {
		if !out.Interrupted || !service.IsInterruption(err) {
			return h.serviceError(c, err)
		}
		middleware.LoggerFromContext(c).Warn("enrichment interrupted", zap.Int("leads", len(out.Leads)), zap.Error(err))
		message = interruptedMessage
	}

	return Success(c, http.StatusOK, message, GenerateLeadsResponse{
		Leads:           scoreLeads(out.Leads),
		TotalCount:      len(out.Leads),
		SchoolLocation:  out.Location,
		SearchTermsUsed: out.TermsUsed,
		FailedTerms:     out.FailedTerms,
		Enriched:        out.Enriched,
		Interrupted:     out.Interrupted,
		RunID:           out.RunID,
	})
}

// Enrich handles POST /leads/enrich. At most EnrichLimit leads are enriched;
// the rest are returned unchanged.
func (h *LeadsHandler) Enrich(c echo.Context) error {
	var req dto.EnrichLeadsRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return ErrorWithDetails(c, http.StatusBadRequest, "validation failed", ValidationDetails(err))
	}

	leads, err := h.leads.Enrich(c.Request().Context(), req.Leads, nil)
	if err != nil {
		if !service.IsInterruption(err) || leads == nil {
			return h.serviceError(c, err)
		}
		middleware.LoggerFromContext(c).Warn("enrichment interrupted", zap.Int("leads", len(leads)), zap.Error(err))
		return Success(c, http.StatusOK, interruptedMessage, EnrichLeadsResponse{
			Leads:       scoreLeads(leads),
			TotalCount:  len(leads),
			Interrupted: true,
		})
	}

	return Success(c, http.StatusOK, "leads enriched", EnrichLeadsResponse{
		Leads:         scoreLeads(leads),
		TotalCount:    len(leads),
		EnrichedCount: min(len(leads), h.leads.EnrichLimit()),
	})
}

// Export handles POST /leads/export and returns an xlsx attachment.
func (h *LeadsHandler) Export(c echo.Context) error {
	var req dto.ExportLeadsRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return ErrorWithDetails(c, http.StatusBadRequest, "validation failed", ValidationDetails(err))
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, req.Leads); err != nil {
		middleware.LoggerFromContext(c).Error("export failed", zap.Error(err))
		return Error(c, http.StatusInternalServerError, "failed to build export")
	}

	filename := export.Filename(req.SchoolName, h.now())
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, export.ContentType, buf.Bytes())
}

func (h *LeadsHandler) serviceError(c echo.Context, err error) error {
	logger := middleware.LoggerFromContext(c)
	switch {
	case errors.Is(err, service.ErrInvalidDiscoveryRequest):
		return Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAddressNotResolvable):
		logger.Info("school address not resolvable", zap.Error(err))
		return Error(c, http.StatusBadRequest, "Could not geocode school address")
	case errors.Is(err, service.ErrConfiguration):
		logger.Error("lead service misconfigured", zap.Error(err))
		return Error(c, http.StatusServiceUnavailable, "lead discovery is not configured")
	default:
		logger.Error("lead service failed", zap.Error(err))
		return Error(c, http.StatusInternalServerError, "failed to generate leads")
	}
}

func scoreLeads(leads []*entity.Lead) []ScoredLead {
	scored := make([]ScoredLead, 0, len(leads))
	for _, lead := range leads {
		if lead == nil {
			continue
		}
		scored = append(scored, ScoredLead{Lead: lead, Score: scoring.ScoreLead(lead)})
	}
	return scored
}
