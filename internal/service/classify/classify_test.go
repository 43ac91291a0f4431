package classify

import "testing"

func TestClassifyChainShortCircuitsCuisine(t *testing.T) {
	got := Classify("McDonald's Mexican Grill")
	if !got.IsChain || got.MatchedChain != "mcdonald's" {
		t.Fatalf("expected chain match, got %+v", got)
	}
	if got.IsCuisineLimited {
		t.Fatalf("cuisine check should not run after a chain match: %+v", got)
	}

	flags := Evaluate("McDonald's Mexican Grill", "")
	if !flags.ChainFlagged || flags.CuisineFlagged {
		t.Fatalf("unexpected flags: %+v", flags)
	}
	if flags.Reason != "Known chain: mcdonald's" {
		t.Fatalf("unexpected reason %q", flags.Reason)
	}
}

func TestClassifyCuisineOrder(t *testing.T) {
	// sushi is declared before thai.
	got := Classify("  Thai Sushi House ")
	if !got.IsCuisineLimited || got.MatchedCuisine != "sushi" {
		t.Fatalf("expected first declared keyword to win, got %+v", got)
	}
}

func TestClassifyPlain(t *testing.T) {
	if got := Classify("Prairie Catering Co"); got != (Result{}) {
		t.Fatalf("expected no match, got %+v", got)
	}
}

func TestFranchiseNamePatterns(t *testing.T) {
	cases := map[string]bool{
		"Good Eats Store #42":     true,
		"Kitchen 10452":           true,
		"Downtown Location":       true,
		"Unit B Deli":             true,
		"Relocation Movers Cafe":  false,
		"Community Kitchen 101":   false,
		"Grandma's Home Cooking":  false,
		"Business Unity Catering": false,
	}
	for name, want := range cases {
		if got := HasFranchiseIndicators(name, ""); got != want {
			t.Fatalf("HasFranchiseIndicators(%q)=%v, want %v", name, got, want)
		}
	}
}

func TestFranchiseURLPaths(t *testing.T) {
	cases := map[string]bool{
		"https://brand.com/locations/springfield": true,
		"brand.net/store/1234":                    true,
		"http://brand.org/franchise-info":         true,
		"https://independent.com/about":           false,
		"https://locations.example.com/":          false,
	}
	for site, want := range cases {
		if got := HasFranchiseIndicators("Plain Name", site); got != want {
			t.Fatalf("HasFranchiseIndicators(url=%q)=%v, want %v", site, got, want)
		}
	}
}

func TestEvaluateFranchiseOnly(t *testing.T) {
	flags := Evaluate("Good Eats Store #42", "")
	if !flags.IsChain || !flags.ChainFlagged || flags.CuisineFlagged {
		t.Fatalf("unexpected flags: %+v", flags)
	}
	if flags.Reason != "Possible franchise" {
		t.Fatalf("unexpected reason %q", flags.Reason)
	}
}

func TestEvaluateCuisineBeatsFranchiseReason(t *testing.T) {
	flags := Evaluate("Taqueria Location 2", "")
	if !flags.ChainFlagged || !flags.CuisineFlagged {
		t.Fatalf("expected both flags, got %+v", flags)
	}
	if flags.Reason != "Cuisine-limited: taqueria" {
		t.Fatalf("unexpected reason %q", flags.Reason)
	}
}

func TestEvaluateNoFlags(t *testing.T) {
	flags := Evaluate("Prairie Catering Co", "https://prairiecatering.com")
	if flags != (Flags{}) {
		t.Fatalf("expected zero flags, got %+v", flags)
	}
}
