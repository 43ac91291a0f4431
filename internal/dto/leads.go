package dto

import "github.com/octobees/catering-leads/internal/entity"

// DefaultRadiusMiles is used when a generate request omits radius_miles.
const DefaultRadiusMiles = 15.0

// DefaultSearchType is used when a generate request omits search_type.
const DefaultSearchType = "catering"

// GenerateLeadsRequest is the payload of POST /leads/generate.
type GenerateLeadsRequest struct {
	SchoolAddress     string   `json:"school_address" validate:"required,max=500"`
	SchoolName        string   `json:"school_name,omitempty" validate:"omitempty,max=200"`
	RadiusMiles       float64  `json:"radius_miles" validate:"min=1,max=50"`
	SearchType        string   `json:"search_type" validate:"oneof=catering pizza_diner meal_prep custom"`
	CustomSearchTerms []string `json:"custom_search_terms,omitempty" validate:"omitempty,max=10,dive,max=100"`
	EnrichLeads       bool     `json:"enrich_leads"`
}

// ApplyDefaults fills the optional fields the caller left out.
func (r *GenerateLeadsRequest) ApplyDefaults() {
	if r.RadiusMiles == 0 {
		r.RadiusMiles = DefaultRadiusMiles
	}
	if r.SearchType == "" {
		r.SearchType = DefaultSearchType
	}
}

// EnrichLeadsRequest is the payload of POST /leads/enrich.
type EnrichLeadsRequest struct {
	Leads []*entity.Lead `json:"leads" validate:"required,min=1,dive,required"`
}

// ExportLeadsRequest is the payload of POST /leads/export.
type ExportLeadsRequest struct {
	Leads      []*entity.Lead `json:"leads" validate:"dive,required"`
	SchoolName string         `json:"school_name,omitempty" validate:"omitempty,max=200"`
}
