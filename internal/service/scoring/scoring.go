package scoring

import (
	"net/url"
	"strings"

	"github.com/octobees/catering-leads/internal/entity"
)

const (
	categoryContact  = "contact_completeness"
	categoryWebsite  = "website_quality"
	categorySocial   = "social_presence"
	categoryBusiness = "business_profile"
	categoryFit      = "fit_penalty"

	chainPenalty   = 20
	cuisinePenalty = 10

	wellReviewedRating = 4.0
	wellReviewedCount  = 10
)

var freeHostingDomains = []string{
	"wordpress.com",
	"blogspot.com",
	"wixsite.com",
	"weebly.com",
	"squarespace.com",
	"godaddysites.com",
	"business.site",
	"square.site",
	"toasttab.com",
	"facebook.com",
}

// ScoreResult reports the aggregate score and the per-category breakdown.
type ScoreResult struct {
	Total     int            `json:"total"`
	Breakdown map[string]int `json:"breakdown"`
}

// ScoreLead rates how actionable a lead is, from 0 to 100. Chain-flagged and
// cuisine-flagged leads are penalised.
func ScoreLead(lead *entity.Lead) ScoreResult {
	if lead == nil {
		return ScoreResult{Breakdown: map[string]int{}}
	}
	breakdown := map[string]int{
		categoryContact:  scoreContactCompleteness(lead),
		categoryWebsite:  scoreWebsiteQuality(lead),
		categorySocial:   scoreSocialPresence(lead),
		categoryBusiness: scoreBusinessProfile(lead),
		categoryFit:      -fitPenalty(lead),
	}

	total := 0
	for _, value := range breakdown {
		total += value
	}
	if total < 0 {
		total = 0
	}

	return ScoreResult{
		Total:     total,
		Breakdown: breakdown,
	}
}

func scoreContactCompleteness(lead *entity.Lead) int {
	score := 0
	if hasValue(lead.ContactEmail) {
		score += 10
	}
	if hasValue(lead.ContactPhone) {
		score += 10
	}
	if hasValue(lead.ContactFirstName) || hasValue(lead.ContactLastName) {
		score += 10
	}
	return min(score, 30)
}

func scoreWebsiteQuality(lead *entity.Lead) int {
	if !hasValue(lead.URL) || lead.URLValid == entity.ValidityInvalid {
		return 0
	}
	score := 5
	if lead.URLValid == entity.ValidityValid {
		score += 10
	}
	if hasHTTPS(*lead.URL) {
		score += 5
	}
	if hasValue(lead.CompanyDescription) {
		score += 5
	}
	if highQualityDomain(*lead.URL) {
		score += 5
	}
	return min(score, 30)
}

func scoreSocialPresence(lead *entity.Lead) int {
	score := 0
	if hasValue(lead.FacebookLink) {
		score += 10
	}
	if hasValue(lead.InstagramLink) {
		score += 10
	}
	return min(score, 20)
}

func scoreBusinessProfile(lead *entity.Lead) int {
	score := 0
	if hasCompleteAddress(lead) {
		score += 10
	}
	if lead.Rating != nil && *lead.Rating >= wellReviewedRating &&
		lead.ReviewCount != nil && *lead.ReviewCount >= wellReviewedCount {
		score += 10
	}
	return min(score, 20)
}

func fitPenalty(lead *entity.Lead) int {
	penalty := 0
	if lead.ChainFlagged {
		penalty += chainPenalty
	}
	if lead.CuisineFlagged {
		penalty += cuisinePenalty
	}
	return penalty
}

func hasValue(value *string) bool {
	return value != nil && strings.TrimSpace(*value) != ""
}

func hasHTTPS(site string) bool {
	site = strings.ToLower(strings.TrimSpace(site))
	return strings.HasPrefix(site, "https://") || !strings.Contains(site, "://")
}

func hasCompleteAddress(lead *entity.Lead) bool {
	return hasValue(lead.Address) && hasValue(lead.City) && hasValue(lead.State) && hasValue(lead.Zipcode)
}

func highQualityDomain(raw string) bool {
	domain := extractDomain(raw)
	if domain == "" {
		return false
	}
	for _, bad := range freeHostingDomains {
		if domain == bad || strings.HasSuffix(domain, "."+bad) {
			return false
		}
	}
	return strings.Count(domain, ".") >= 1
}

func extractDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lowered := strings.ToLower(raw)
	if !strings.Contains(lowered, "://") {
		lowered = "https://" + lowered
	}
	parsed, err := url.Parse(lowered)
	if err != nil {
		return ""
	}
	host := strings.TrimSpace(strings.ToLower(parsed.Hostname()))
	host = strings.TrimPrefix(host, "www.")
	return host
}
