package fund

import "regexp"

// houseRule maps a scheme-name pattern to a canonical fund house. Rules are
// evaluated in order; first match wins.
type houseRule struct {
	pattern *regexp.Regexp
	house   string
}

var houseRules = []houseRule{
	{regexp.MustCompile(`\bsbi\b`), "SBI Mutual Fund"},
	{regexp.MustCompile(`\bhdfc\b`), "HDFC Mutual Fund"},
	{regexp.MustCompile(`\bicici\b`), "ICICI Prudential Mutual Fund"},
	{regexp.MustCompile(`\baxis\b`), "Axis Mutual Fund"},
	{regexp.MustCompile(`\bkotak\b`), "Kotak Mahindra Mutual Fund"},
	{regexp.MustCompile(`aditya birla|absl|birla sun ?life`), "Aditya Birla Sun Life Mutual Fund"},
	{regexp.MustCompile(`nippon|reliance`), "Nippon India Mutual Fund"},
	{regexp.MustCompile(`franklin`), "Franklin Templeton Mutual Fund"},
	{regexp.MustCompile(`\bdsp\b`), "DSP Mutual Fund"},
	{regexp.MustCompile(`mirae`), "Mirae Asset Mutual Fund"},
	{regexp.MustCompile(`\buti\b`), "UTI Mutual Fund"},
	{regexp.MustCompile(`parag parikh|ppfas`), "PPFAS Mutual Fund"},
	{regexp.MustCompile(`motilal oswal`), "Motilal Oswal Mutual Fund"},
	{regexp.MustCompile(`\btata\b`), "Tata Mutual Fund"},
}

// categoryRule maps a scheme-name pattern to a category and sub-category.
// Evaluated in order; first match wins, then the broader fallback chain.
type categoryRule struct {
	pattern     *regexp.Regexp
	category    string
	subCategory string
}

var categoryRules = []categoryRule{
	{regexp.MustCompile(`large ?cap`), "Equity", "Large Cap"},
	{regexp.MustCompile(`mid ?cap`), "Equity", "Mid Cap"},
	{regexp.MustCompile(`small ?cap`), "Equity", "Small Cap"},
	{regexp.MustCompile(`flexi ?cap`), "Equity", "Flexi Cap"},
	{regexp.MustCompile(`multi ?cap`), "Equity", "Multi Cap"},
	{regexp.MustCompile(`elss|tax sav`), "Equity", "ELSS"},
	{regexp.MustCompile(`liquid`), "Debt", "Liquid"},
	{regexp.MustCompile(`ultra short`), "Debt", "Ultra Short Duration"},
	{regexp.MustCompile(`short duration|short term`), "Debt", "Short Duration"},
	{regexp.MustCompile(`gilt`), "Debt", "Gilt"},
	{regexp.MustCompile(`hybrid|balanced`), "Hybrid", "Hybrid"},
	{regexp.MustCompile(`arbitrage`), "Hybrid", "Arbitrage"},
	{regexp.MustCompile(`index|etf|nifty|sensex`), "Others", "Index/ETF"},
}

var categoryFallbacks = []categoryRule{
	{regexp.MustCompile(`equity|growth|opportunities`), "Equity", "Multi Cap"},
	{regexp.MustCompile(`debt|income|bond`), "Debt", "Medium Duration"},
}

const (
	defaultHouse       = "Others"
	defaultCategory    = "Others"
	defaultSubCategory = "Miscellaneous"
)

// riskBaselines is the starting risk level per category; name keywords then
// adjust within [1,5].
var riskBaselines = map[string]int{
	"Equity": 4,
	"Hybrid": 3,
	"Debt":   2,
	"Others": 2,
}

var (
	riskUpPattern   = regexp.MustCompile(`small ?cap|sectoral|thematic`)
	riskDownPattern = regexp.MustCompile(`large ?cap|liquid|overnight`)
)

func matchHouse(lowerName string) string {
	for _, rule := range houseRules {
		if rule.pattern.MatchString(lowerName) {
			return rule.house
		}
	}
	return defaultHouse
}

func matchCategory(lowerName string) (string, string) {
	for _, rule := range categoryRules {
		if rule.pattern.MatchString(lowerName) {
			return rule.category, rule.subCategory
		}
	}
	for _, rule := range categoryFallbacks {
		if rule.pattern.MatchString(lowerName) {
			return rule.category, rule.subCategory
		}
	}
	return defaultCategory, defaultSubCategory
}

func matchRiskLevel(lowerName string, category string) int {
	risk, ok := riskBaselines[category]
	if !ok {
		risk = riskBaselines["Others"]
	}
	if riskUpPattern.MatchString(lowerName) {
		risk++
	}
	if riskDownPattern.MatchString(lowerName) {
		risk--
	}
	if risk < 1 {
		risk = 1
	}
	if risk > 5 {
		risk = 5
	}
	return risk
}
