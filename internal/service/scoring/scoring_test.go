package scoring

import (
	"testing"

	"github.com/octobees/catering-leads/internal/entity"
)

func ptr[T any](v T) *T { return &v }

func TestScoreLead_FullCoverage(t *testing.T) {
	lead := &entity.Lead{
		Company:            "Prairie Catering Co",
		URL:                ptr("https://prairiecatering.com"),
		URLValid:           entity.ValidityValid,
		CompanyDescription: ptr("School and office catering"),
		ContactFirstName:   ptr("Dana"),
		ContactEmail:       ptr("sales@prairiecatering.com"),
		ContactPhone:       ptr("(217) 555-0100"),
		Address:            ptr("12 Oak St"),
		City:               ptr("Springfield"),
		State:              ptr("IL"),
		Zipcode:            ptr("62701"),
		FacebookLink:       ptr("https://facebook.com/prairie"),
		InstagramLink:      ptr("https://instagram.com/prairie"),
		Rating:             ptr(4.6),
		ReviewCount:        ptr(87),
	}

	score := ScoreLead(lead)

	if score.Total != 100 {
		t.Fatalf("expected full score 100, got %d (%v)", score.Total, score.Breakdown)
	}
	if score.Breakdown[categoryContact] != 30 {
		t.Fatalf("expected contact completeness 30, got %d", score.Breakdown[categoryContact])
	}
	if score.Breakdown[categoryWebsite] != 30 {
		t.Fatalf("expected website quality 30, got %d", score.Breakdown[categoryWebsite])
	}
	if score.Breakdown[categorySocial] != 20 {
		t.Fatalf("expected social presence 20, got %d", score.Breakdown[categorySocial])
	}
	if score.Breakdown[categoryBusiness] != 20 {
		t.Fatalf("expected business profile 20, got %d", score.Breakdown[categoryBusiness])
	}
	if score.Breakdown[categoryFit] != 0 {
		t.Fatalf("expected no fit penalty, got %d", score.Breakdown[categoryFit])
	}
}

func TestScoreLead_MinimalSignals(t *testing.T) {
	lead := &entity.Lead{
		Company:      "Ghost Kitchen",
		URL:          ptr("http://ghostkitchen.wixsite.com"),
		URLValid:     entity.ValidityInvalid,
		ContactEmail: ptr("   "),
		City:         ptr("Springfield"),
		Rating:       ptr(4.9),
		ReviewCount:  ptr(3),
	}

	score := ScoreLead(lead)

	if score.Total != 0 {
		t.Fatalf("expected zero score for insufficient signals, got %d (%v)", score.Total, score.Breakdown)
	}
}

func TestScoreLead_FlagPenalties(t *testing.T) {
	lead := &entity.Lead{
		Company:        "Taqueria Location 2",
		ContactPhone:   ptr("(217) 555-0100"),
		FacebookLink:   ptr("https://facebook.com/taqueria"),
		ChainFlagged:   true,
		CuisineFlagged: true,
	}
	if got := ScoreLead(lead).Total; got != 0 {
		t.Fatalf("expected penalties to floor at 0, got %d", got)
	}

	lead.ChainFlagged = false
	lead.InstagramLink = ptr("https://instagram.com/taqueria")
	score := ScoreLead(lead)
	if score.Breakdown[categoryFit] != -cuisinePenalty {
		t.Fatalf("expected cuisine penalty, got %d", score.Breakdown[categoryFit])
	}
	if score.Total != 20 {
		t.Fatalf("expected 10 + 20 - 10 = 20, got %d", score.Total)
	}
}

func TestScoreLead_UncheckedWebsite(t *testing.T) {
	lead := &entity.Lead{URL: ptr("prairiecatering.com")}
	if got := ScoreLead(lead).Breakdown[categoryWebsite]; got != 15 {
		t.Fatalf("expected 5 + https 5 + domain 5 = 15, got %d", got)
	}
	if got := ScoreLead(nil).Total; got != 0 {
		t.Fatalf("nil lead should score 0, got %d", got)
	}
}

func TestHighQualityDomain(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"https://example.com", true},
		{"http://www.example.co.uk", true},
		{"mybrand.wordpress.com", false},
		{"", false},
		{"https://order.toasttab.com/online/prairie", false},
		{"ftp://subdomain.business.site", false},
	}

	for _, tc := range cases {
		if got := highQualityDomain(tc.input); got != tc.want {
			t.Fatalf("highQualityDomain(%q)=%v, want %v", tc.input, got, tc.want)
		}
	}
}
