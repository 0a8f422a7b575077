// Package engine executes search queries against the sealed index: candidate
// retrieval with fuzzy expansion, AND-with-OR-fallback combination, faceted
// filtering, TF-IDF scoring with field boosts, sorting, pagination, and
// suggestion generation.
package engine

import (
	"github.com/niveshhub/fundsearch/internal/fund"
)

// Sort keys accepted by Query.SortBy.
const (
	SortRelevance    = "relevance"
	SortAUM          = "aum"
	SortExpenseRatio = "expenseRatio"
	SortNAV          = "nav"
	SortAlphabetical = "alphabetical"
)

// Sort orders accepted by Query.SortOrder.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Filters narrows a result set. The list filters are inclusion checks; the
// range filters are inclusive numeric bounds.
type Filters struct {
	FundHouses        []string    `json:"fundHouse,omitempty"`
	Categories        []string    `json:"category,omitempty"`
	Plans             []fund.Plan `json:"plan,omitempty"`
	RiskLevels        []int       `json:"riskLevel,omitempty"`
	AUMRange          *[2]float64 `json:"aumRange,omitempty"`
	ExpenseRatioRange *[2]float64 `json:"expenseRatioRange,omitempty"`
}

// Query is the search request contract consumed by the HTTP layer.
type Query struct {
	Text      string   `json:"text,omitempty"`
	Filters   *Filters `json:"filters,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	Offset    int      `json:"offset,omitempty"`
	SortBy    string   `json:"sortBy,omitempty"`
	SortOrder string   `json:"sortOrder,omitempty"`
}

// Result is one scored document.
type Result struct {
	Document     *fund.Document `json:"document"`
	Score        float64        `json:"score"`
	MatchedTerms []string       `json:"matchedTerms"`
	Explanation  string         `json:"explanation"`
}

// Facets tallies the filtered candidate set (pre-pagination) by categorical
// attribute.
type Facets struct {
	Categories map[string]int `json:"categories"`
	FundHouses map[string]int `json:"fundHouses"`
	RiskLevels map[int]int    `json:"riskLevels"`
}

// Response is the search result contract.
type Response struct {
	Results      []Result `json:"results"`
	Total        int      `json:"total"`
	SearchTimeMs float64  `json:"searchTime"`
	Suggestions  []string `json:"suggestions"`
	Facets       Facets   `json:"facets"`
	HasMore      bool     `json:"hasMore"`
}
