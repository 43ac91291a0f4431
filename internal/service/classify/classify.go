// Package classify flags chain restaurants, cuisine-limited concepts and
// franchise-looking listings using deterministic substring and pattern rules.
package classify

import (
	"net/url"
	"regexp"
	"strings"
)

// knownChains is a priority list: the first entry contained in the name wins.
var knownChains = []string{
	// Fast food
	"mcdonald's",
	"mcdonalds",
	"burger king",
	"wendy's",
	"wendys",
	"taco bell",
	"kfc",
	"kentucky fried chicken",
	"chick-fil-a",
	"chickfila",
	"popeyes",
	"arby's",
	"arbys",
	"sonic",
	"jack in the box",
	"carl's jr",
	"carls jr",
	"hardee's",
	"hardees",
	"whataburger",
	"in-n-out",
	"in n out",
	"five guys",
	"shake shack",
	"white castle",

	// Pizza
	"domino's",
	"dominos",
	"pizza hut",
	"papa john's",
	"papa johns",
	"little caesars",
	"papa murphy's",
	"papa murphys",
	"marco's pizza",
	"marcos pizza",
	"hungry howie's",

	// Fast casual
	"chipotle",
	"panera",
	"panera bread",
	"qdoba",
	"moe's",
	"moes",
	"panda express",
	"noodles & company",
	"noodles and company",
	"firehouse subs",
	"jersey mike's",
	"jersey mikes",
	"jimmy john's",
	"jimmy johns",
	"subway",
	"quiznos",
	"potbelly",
	"jason's deli",
	"jasons deli",
	"mcalister's",
	"mcalisters",
	"newk's",
	"newks",
	"zaxby's",
	"zaxbys",
	"wingstop",
	"buffalo wild wings",
	"hooters",

	// Casual dining
	"applebee's",
	"applebees",
	"chili's",
	"chilis",
	"olive garden",
	"red lobster",
	"outback steakhouse",
	"outback",
	"longhorn steakhouse",
	"texas roadhouse",
	"cracker barrel",
	"denny's",
	"dennys",
	"ihop",
	"waffle house",
	"perkins",
	"bob evans",
	"golden corral",
	"ruby tuesday",
	"tgi friday's",
	"tgi fridays",
	"red robin",
	"cheesecake factory",
	"bj's restaurant",
	"bjs restaurant",
	"dave and buster's",
	"dave and busters",

	// Coffee
	"starbucks",
	"dunkin",
	"dunkin donuts",

	// Catering
	"clean eatz",
	"cleaneatz",
	"corporate catering",
}

// cuisineKeywords is a priority list, checked only when no chain matched.
var cuisineKeywords = []string{
	"mexican",
	"tacos",
	"taqueria",
	"burrito",
	"asian",
	"chinese",
	"japanese",
	"sushi",
	"thai",
	"vietnamese",
	"pho",
	"korean",
	"indian",
	"curry",
	"mediterranean",
	"greek",
	"middle eastern",
	"italian",
	"pizzeria",
	"bbq",
	"barbecue",
	"soul food",
	"cajun",
	"creole",
}

var (
	franchiseNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`#\d+`),
		regexp.MustCompile(`\b\d{4,}\b`),
		regexp.MustCompile(`\blocation\b`),
		regexp.MustCompile(`\bunit\b`),
	}
	franchisePathMarkers = []string{"/locations/", "/store/", "/franchise"}
)

// Result is the outcome of the chain and cuisine checks.
type Result struct {
	IsChain          bool
	IsCuisineLimited bool
	MatchedChain     string
	MatchedCuisine   string
}

// Flags is what discovery records on a lead.
type Flags struct {
	IsChain        bool
	ChainFlagged   bool
	CuisineFlagged bool
	// Reason names the single highest-priority rule that fired, or "".
	Reason string
}

// Classify checks the name against the chain list, then the cuisine list.
// A chain match short-circuits the cuisine check.
func Classify(name string) Result {
	normalized := strings.ToLower(strings.TrimSpace(name))

	for _, chain := range knownChains {
		if strings.Contains(normalized, chain) {
			return Result{IsChain: true, MatchedChain: chain}
		}
	}
	for _, keyword := range cuisineKeywords {
		if strings.Contains(normalized, keyword) {
			return Result{IsCuisineLimited: true, MatchedCuisine: keyword}
		}
	}
	return Result{}
}

// HasFranchiseIndicators reports store-number style names or chain-style website paths.
func HasFranchiseIndicators(name, website string) bool {
	normalized := strings.ToLower(name)
	for _, pattern := range franchiseNamePatterns {
		if pattern.MatchString(normalized) {
			return true
		}
	}

	website = strings.TrimSpace(website)
	if website == "" {
		return false
	}
	path := websitePath(website)
	for _, marker := range franchisePathMarkers {
		if strings.Contains(path, marker) {
			return true
		}
	}
	return false
}

// Evaluate combines both checks. The franchise heuristic is OR'd into the chain
// flag independently; the reason follows chain > cuisine > franchise, so a
// franchise hit is not named when a chain or cuisine rule also fired.
func Evaluate(name, website string) Flags {
	result := Classify(name)
	franchise := HasFranchiseIndicators(name, website)

	flags := Flags{
		IsChain:        result.IsChain || franchise,
		ChainFlagged:   result.IsChain || franchise,
		CuisineFlagged: result.IsCuisineLimited,
	}
	switch {
	case result.IsChain:
		flags.Reason = "Known chain: " + result.MatchedChain
	case result.IsCuisineLimited:
		flags.Reason = "Cuisine-limited: " + result.MatchedCuisine
	case franchise:
		flags.Reason = "Possible franchise"
	}
	return flags
}

func websitePath(raw string) string {
	lowered := strings.ToLower(raw)
	candidate := lowered
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" {
		return lowered
	}
	return u.Path
}
