package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/niveshhub/fundsearch/internal/fund"
	"github.com/niveshhub/fundsearch/internal/index"
	"github.com/niveshhub/fundsearch/internal/tokenizer"
)

// Limits bounds result-set sizes.
type Limits struct {
	DefaultLimit   int
	MaxLimit       int
	MaxSuggestions int
}

// DefaultLimits match the public query contract: 20 results by default,
// hard cap 100, up to 10 suggestions.
var DefaultLimits = Limits{
	DefaultLimit:   20,
	MaxLimit:       100,
	MaxSuggestions: 10,
}

// Engine answers queries against one immutable snapshot of the catalog. All
// fields are read-only after construction; a changed catalog requires a new
// Engine over a freshly built index.
type Engine struct {
	docs   map[string]*fund.Document
	index  *index.Index
	trie   *index.Trie
	limits Limits
}

// New creates an Engine over a sealed index, its trie, and the document map
// keyed by document id.
func New(docs map[string]*fund.Document, ix *index.Index, trie *index.Trie, limits Limits) *Engine {
	if limits.DefaultLimit <= 0 {
		limits.DefaultLimit = DefaultLimits.DefaultLimit
	}
	if limits.MaxLimit <= 0 {
		limits.MaxLimit = DefaultLimits.MaxLimit
	}
	if limits.MaxSuggestions <= 0 {
		limits.MaxSuggestions = DefaultLimits.MaxSuggestions
	}
	return &Engine{
		docs:   docs,
		index:  ix,
		trie:   trie,
		limits: limits,
	}
}

// Search runs the full query pipeline and returns a ranked, paginated,
// faceted response.
func (e *Engine) Search(q Query) *Response {
	start := time.Now()

	limit := q.Limit
	if limit <= 0 {
		limit = e.limits.DefaultLimit
	}
	if limit > e.limits.MaxLimit {
		limit = e.limits.MaxLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	terms := tokenizer.Tokenize(q.Text)
	candidates := e.retrieve(terms)
	filtered := e.applyFilters(candidates, q.Filters)

	scored := make([]Result, 0, len(filtered))
	for _, doc := range filtered {
		score, matched, explanation := e.score(doc, terms)
		scored = append(scored, Result{
			Document:     doc,
			Score:        score,
			MatchedTerms: matched,
			Explanation:  explanation,
		})
	}

	sortResults(scored, q.SortBy, q.SortOrder)

	total := len(scored)
	facets := buildFacets(filtered)

	hasMore := offset+limit < total
	end := offset + limit
	if offset > total {
		offset = total
	}
	if end > total {
		end = total
	}
	page := scored[offset:end]

	return &Response{
		Results:      page,
		Total:        total,
		SearchTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
		Suggestions:  e.Suggest(q.Text, e.limits.MaxSuggestions),
		Facets:       facets,
		HasMore:      hasMore,
	}
}

// retrieve produces the candidate set for the query terms: per-term exact
// index lookups widened by fuzzy matching, intersected across terms, with a
// fall back to the union when the intersection is empty. Preferring AND but
// never returning zero results when any term matches is a deliberate
// recall-over-precision policy.
func (e *Engine) retrieve(terms []string) map[string]*fund.Document {
	if len(terms) == 0 {
		return e.docs
	}

	perTerm := make([]map[string]struct{}, 0, len(terms))
	for _, term := range terms {
		set := make(map[string]struct{})
		if postings, ok := e.index.Postings(term); ok {
			postings.Each(func(docID string, _ int) {
				set[docID] = struct{}{}
			})
		} else {
			e.index.EachToken(func(token string, _ int) {
				if !fuzzyMatch(term, token) {
					return
				}
				if postings, ok := e.index.Postings(token); ok {
					postings.Each(func(docID string, _ int) {
						set[docID] = struct{}{}
					})
				}
			})
		}
		perTerm = append(perTerm, set)
	}

	ids := intersect(perTerm)
	if len(ids) == 0 {
		ids = union(perTerm)
	}

	candidates := make(map[string]*fund.Document, len(ids))
	for id := range ids {
		if doc, ok := e.docs[id]; ok {
			candidates[id] = doc
		}
	}
	return candidates
}

func intersect(sets []map[string]struct{}) map[string]struct{} {
	if len(sets) == 0 {
		return nil
	}
	smallest := sets[0]
	for _, set := range sets[1:] {
		if len(set) < len(smallest) {
			smallest = set
		}
	}
	result := make(map[string]struct{}, len(smallest))
	for id := range smallest {
		inAll := true
		for _, set := range sets {
			if _, ok := set[id]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			result[id] = struct{}{}
		}
	}
	return result
}

func union(sets []map[string]struct{}) map[string]struct{} {
	result := make(map[string]struct{})
	for _, set := range sets {
		for id := range set {
			result[id] = struct{}{}
		}
	}
	return result
}

// applyFilters keeps documents matching every provided filter dimension.
func (e *Engine) applyFilters(candidates map[string]*fund.Document, f *Filters) []*fund.Document {
	result := make([]*fund.Document, 0, len(candidates))
	for _, doc := range candidates {
		if f == nil || matchesFilters(doc, f) {
			result = append(result, doc)
		}
	}
	return result
}

func matchesFilters(doc *fund.Document, f *Filters) bool {
	if len(f.FundHouses) > 0 && !containsString(f.FundHouses, doc.FundHouse) {
		return false
	}
	if len(f.Categories) > 0 && !containsString(f.Categories, doc.Category) {
		return false
	}
	if len(f.Plans) > 0 && !containsPlan(f.Plans, doc.Plan) {
		return false
	}
	if len(f.RiskLevels) > 0 && !containsInt(f.RiskLevels, doc.RiskLevel) {
		return false
	}
	if f.AUMRange != nil && (doc.AUM < f.AUMRange[0] || doc.AUM > f.AUMRange[1]) {
		return false
	}
	if f.ExpenseRatioRange != nil && (doc.ExpenseRatio < f.ExpenseRatioRange[0] || doc.ExpenseRatio > f.ExpenseRatioRange[1]) {
		return false
	}
	return true
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsPlan(list []fund.Plan, v fund.Plan) bool {
	for _, p := range list {
		if p == v {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, n := range list {
		if n == v {
			return true
		}
	}
	return false
}

// score accumulates TF-IDF over the query terms literally present in the
// document's token set, with extra weight when the raw term appears as a
// substring of the scheme name (x2) or fund house (x1.5). Terms that only
// matched fuzzily contribute nothing here; they widened the candidate set
// but rank at the bottom.
func (e *Engine) score(doc *fund.Document, terms []string) (float64, []string, string) {
	if len(terms) == 0 {
		return 0, []string{}, ""
	}

	totalDocs := float64(e.index.DocCount())
	lowerName := strings.ToLower(doc.SchemeName)
	lowerHouse := strings.ToLower(doc.FundHouse)

	var score float64
	matched := make([]string, 0, len(terms))
	parts := make([]string, 0, len(terms))

	for _, term := range terms {
		postings, ok := e.index.Postings(term)
		if !ok {
			continue
		}
		freq := postings.Frequency(doc.ID)
		if freq == 0 || doc.TotalTokens == 0 {
			continue
		}
		tf := float64(freq) / float64(doc.TotalTokens)
		idf := math.Log(totalDocs / float64(postings.Len()))
		tfIdf := tf * idf
		score += tfIdf

		boosts := ""
		if strings.Contains(lowerName, term) {
			score += tfIdf * 2
			boosts = "+name"
		}
		if strings.Contains(lowerHouse, term) {
			score += tfIdf * 1.5
			boosts += "+house"
		}
		matched = append(matched, term)
		parts = append(parts, fmt.Sprintf("%s:%.4f%s", term, tfIdf, boosts))
	}

	explanation := ""
	if len(parts) > 0 {
		explanation = fmt.Sprintf("matched %d/%d terms (%s)", len(matched), len(terms), strings.Join(parts, " "))
	}
	return score, matched, explanation
}

// sortResults orders the scored set. Relevance sorts by score with highest
// first by default and "asc" flipping the direction; the numeric keys and
// alphabetical apply the order conventionally, defaulting to descending.
// Ties break on scheme name, then id, so pagination is stable.
func sortResults(results []Result, sortBy, sortOrder string) {
	asc := sortOrder == OrderAsc

	var less func(a, b Result) bool
	switch sortBy {
	case SortAUM:
		less = func(a, b Result) bool { return a.Document.AUM > b.Document.AUM }
	case SortExpenseRatio:
		less = func(a, b Result) bool { return a.Document.ExpenseRatio > b.Document.ExpenseRatio }
	case SortNAV:
		less = func(a, b Result) bool { return a.Document.NAV > b.Document.NAV }
	case SortAlphabetical:
		less = func(a, b Result) bool { return a.Document.SchemeName > b.Document.SchemeName }
	default: // relevance
		less = func(a, b Result) bool { return a.Score > b.Score }
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if asc {
			a, b = b, a
		}
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		if a.Document.SchemeName != b.Document.SchemeName {
			return results[i].Document.SchemeName < results[j].Document.SchemeName
		}
		return results[i].Document.ID < results[j].Document.ID
	})
}

// buildFacets tallies the filtered candidate set, pre-pagination.
func buildFacets(docs []*fund.Document) Facets {
	facets := Facets{
		Categories: make(map[string]int),
		FundHouses: make(map[string]int),
		RiskLevels: make(map[int]int),
	}
	for _, doc := range docs {
		facets.Categories[doc.Category]++
		facets.FundHouses[doc.FundHouse]++
		facets.RiskLevels[doc.RiskLevel]++
	}
	return facets
}

// Suggest unions up to five trie completions of the lowercased query with up
// to five strictly longer index tokens sharing the query as prefix, ranked
// by document frequency, deduplicated and capped at max.
func (e *Engine) Suggest(text string, max int) []string {
	prefix := strings.ToLower(strings.TrimSpace(text))
	if prefix == "" || max <= 0 {
		return []string{}
	}

	suggestions := make([]string, 0, max)
	seen := make(map[string]struct{})
	for _, word := range e.trie.Complete(prefix, 5) {
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		suggestions = append(suggestions, word)
	}

	type tokenDF struct {
		token string
		df    int
	}
	var prefixed []tokenDF
	e.index.EachToken(func(token string, df int) {
		if len(token) > len(prefix) && strings.HasPrefix(token, prefix) {
			prefixed = append(prefixed, tokenDF{token, df})
		}
	})
	sort.Slice(prefixed, func(i, j int) bool {
		if prefixed[i].df != prefixed[j].df {
			return prefixed[i].df > prefixed[j].df
		}
		return prefixed[i].token < prefixed[j].token
	})
	for i := 0; i < len(prefixed) && i < 5; i++ {
		word := prefixed[i].token
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		suggestions = append(suggestions, word)
	}

	if len(suggestions) > max {
		suggestions = suggestions[:max]
	}
	return suggestions
}
