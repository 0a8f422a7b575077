package engine

import (
	"sort"
	"strings"
	"testing"

	"github.com/niveshhub/fundsearch/internal/fund"
	"github.com/niveshhub/fundsearch/internal/index"
)

// newTestEngine indexes the given scheme names with sequential codes starting
// at 1 and returns an engine over the sealed index.
func newTestEngine(t *testing.T, schemeNames ...string) *Engine {
	t.Helper()

	docs := make(map[string]*fund.Document, len(schemeNames))
	builder := index.NewBuilder()
	tokens := make(map[string]struct{})

	for i, name := range schemeNames {
		doc, ok := fund.Build(fund.RawRecord{SchemeCode: int64(i + 1), SchemeName: name})
		if !ok {
			t.Fatalf("Build dropped %q", name)
		}
		docs[doc.ID] = doc
		builder.Add(doc)
		for _, token := range doc.SearchTokens {
			tokens[token] = struct{}{}
		}
	}

	sorted := make([]string, 0, len(tokens))
	for token := range tokens {
		sorted = append(sorted, token)
	}
	sort.Strings(sorted)
	trie := index.NewTrie()
	for _, token := range sorted {
		trie.Insert(token)
	}

	return New(docs, builder.Build(), trie, DefaultLimits)
}

func corpus(t *testing.T) *Engine {
	return newTestEngine(t,
		"HDFC Large Cap Fund - Direct Growth", // mf-1
		"HDFC Midcap Opportunities Fund",      // mf-2
		"Axis Bluechip Fund",                  // mf-3
		"SBI Small Cap Fund",                  // mf-4
		"HDFC Liquid Fund",                    // mf-5
	)
}

func resultIDs(resp *Response) []string {
	ids := make([]string, len(resp.Results))
	for i, r := range resp.Results {
		ids[i] = r.Document.ID
	}
	return ids
}

func TestSearchEmptyQueryReturnsEverything(t *testing.T) {
	e := corpus(t)
	resp := e.Search(Query{})
	if resp.Total != 5 {
		t.Errorf("Total = %d; want 5", resp.Total)
	}
	if len(resp.Results) != 5 {
		t.Errorf("len(Results) = %d; want 5", len(resp.Results))
	}
	if resp.HasMore {
		t.Error("HasMore = true for a fully returned set")
	}
	for _, r := range resp.Results {
		if r.Score != 0 {
			t.Errorf("empty query scored %s at %v; want 0", r.Document.ID, r.Score)
		}
	}
}

func TestSearchExactTerm(t *testing.T) {
	e := corpus(t)
	resp := e.Search(Query{Text: "bluechip"})
	if resp.Total != 1 {
		t.Fatalf("Total = %d; want 1: %v", resp.Total, resultIDs(resp))
	}
	r := resp.Results[0]
	if r.Document.ID != "mf-3" {
		t.Errorf("top result = %s; want mf-3", r.Document.ID)
	}
	if len(r.MatchedTerms) != 1 || r.MatchedTerms[0] != "bluechip" {
		t.Errorf("MatchedTerms = %v; want [bluechip]", r.MatchedTerms)
	}
	if r.Score <= 0 {
		t.Errorf("Score = %v; want > 0", r.Score)
	}
	if !strings.Contains(r.Explanation, "matched 1/1 terms") {
		t.Errorf("Explanation = %q", r.Explanation)
	}
}

func TestSearchIntersectsTerms(t *testing.T) {
	e := corpus(t)
	// Three documents carry "hdfc" but only one also carries "large".
	resp := e.Search(Query{Text: "hdfc large"})
	if resp.Total != 1 {
		t.Fatalf("Total = %d; want 1: %v", resp.Total, resultIDs(resp))
	}
	r := resp.Results[0]
	if r.Document.ID != "mf-1" {
		t.Errorf("top result = %s; want mf-1", r.Document.ID)
	}
	want := []string{"hdfc", "large"}
	if len(r.MatchedTerms) != 2 || r.MatchedTerms[0] != want[0] || r.MatchedTerms[1] != want[1] {
		t.Errorf("MatchedTerms = %v; want %v", r.MatchedTerms, want)
	}
}

func TestSearchFallsBackToUnion(t *testing.T) {
	e := corpus(t)
	// No document carries both terms; the union keeps both single-term hits.
	resp := e.Search(Query{Text: "bluechip liquid"})
	if resp.Total != 2 {
		t.Fatalf("Total = %d; want 2: %v", resp.Total, resultIDs(resp))
	}
	ids := map[string]bool{}
	for _, id := range resultIDs(resp) {
		ids[id] = true
	}
	if !ids["mf-3"] || !ids["mf-5"] {
		t.Errorf("results = %v; want mf-3 and mf-5", resultIDs(resp))
	}
}

func TestSearchFuzzyTypo(t *testing.T) {
	e := corpus(t)
	// "hdfx" is one edit from the indexed token "hdfc".
	resp := e.Search(Query{Text: "hdfx"})
	if resp.Total != 3 {
		t.Fatalf("Total = %d; want 3 hdfc documents: %v", resp.Total, resultIDs(resp))
	}
	for _, r := range resp.Results {
		if r.Score != 0 {
			t.Errorf("fuzzy-only match %s scored %v; want 0", r.Document.ID, r.Score)
		}
		if len(r.MatchedTerms) != 0 {
			t.Errorf("fuzzy-only match %s lists MatchedTerms %v; want none", r.Document.ID, r.MatchedTerms)
		}
	}
}

func TestSearchNoMatches(t *testing.T) {
	e := corpus(t)
	resp := e.Search(Query{Text: "zzzzqqqq"})
	if resp.Total != 0 {
		t.Errorf("Total = %d; want 0", resp.Total)
	}
	if resp.Results == nil {
		t.Error("Results is nil; want empty slice")
	}
	if resp.HasMore {
		t.Error("HasMore = true on an empty result set")
	}
}

func TestSearchCategoryFilter(t *testing.T) {
	e := corpus(t)
	resp := e.Search(Query{Filters: &Filters{Categories: []string{"Debt"}}})
	if resp.Total != 1 {
		t.Fatalf("Total = %d; want 1: %v", resp.Total, resultIDs(resp))
	}
	if resp.Results[0].Document.ID != "mf-5" {
		t.Errorf("result = %s; want mf-5", resp.Results[0].Document.ID)
	}
}

func TestSearchFilterCombinesWithText(t *testing.T) {
	e := corpus(t)
	resp := e.Search(Query{
		Text:    "hdfc",
		Filters: &Filters{Categories: []string{"Equity"}},
	})
	if resp.Total != 2 {
		t.Fatalf("Total = %d; want 2: %v", resp.Total, resultIDs(resp))
	}
	for _, r := range resp.Results {
		if r.Document.Category != "Equity" {
			t.Errorf("filtered result %s has category %q", r.Document.ID, r.Document.Category)
		}
	}
}

func TestSearchRangeFilterInclusive(t *testing.T) {
	e := corpus(t)
	all := e.Search(Query{})
	var target *fund.Document
	for _, r := range all.Results {
		if r.Document.ID == "mf-1" {
			target = r.Document
		}
	}
	if target == nil {
		t.Fatal("mf-1 missing from corpus")
	}

	bounds := [2]float64{target.AUM, target.AUM}
	resp := e.Search(Query{Filters: &Filters{AUMRange: &bounds}})
	found := false
	for _, id := range resultIDs(resp) {
		if id == "mf-1" {
			found = true
		}
	}
	if !found {
		t.Errorf("inclusive bounds [%v,%v] excluded mf-1; got %v", bounds[0], bounds[1], resultIDs(resp))
	}
}

func TestSearchFacetsCoverFilteredSet(t *testing.T) {
	e := corpus(t)
	resp := e.Search(Query{Text: "hdfc", Limit: 1})

	sum := 0
	for _, n := range resp.Facets.Categories {
		sum += n
	}
	if sum != resp.Total {
		t.Errorf("category facet counts sum to %d; Total = %d", sum, resp.Total)
	}
	if resp.Facets.FundHouses["HDFC Mutual Fund"] != 3 {
		t.Errorf("FundHouses facet = %v; want HDFC Mutual Fund: 3", resp.Facets.FundHouses)
	}
}

func TestSearchPagination(t *testing.T) {
	e := corpus(t)

	first := e.Search(Query{Limit: 2})
	if len(first.Results) != 2 || first.Total != 5 || !first.HasMore {
		t.Fatalf("page 1: len=%d total=%d hasMore=%v; want 2/5/true",
			len(first.Results), first.Total, first.HasMore)
	}

	last := e.Search(Query{Limit: 2, Offset: 4})
	if len(last.Results) != 1 || last.HasMore {
		t.Errorf("last page: len=%d hasMore=%v; want 1/false", len(last.Results), last.HasMore)
	}

	beyond := e.Search(Query{Limit: 2, Offset: 50})
	if len(beyond.Results) != 0 || beyond.HasMore {
		t.Errorf("offset past end: len=%d hasMore=%v; want 0/false", len(beyond.Results), beyond.HasMore)
	}

	// Pages must not overlap and must be stable across calls.
	second := e.Search(Query{Limit: 2, Offset: 2})
	seen := map[string]bool{}
	for _, id := range append(resultIDs(first), resultIDs(second)...) {
		if seen[id] {
			t.Errorf("document %s appears on two pages", id)
		}
		seen[id] = true
	}
}

func TestSearchSortByAUM(t *testing.T) {
	e := corpus(t)

	desc := e.Search(Query{SortBy: SortAUM})
	for i := 1; i < len(desc.Results); i++ {
		if desc.Results[i].Document.AUM > desc.Results[i-1].Document.AUM {
			t.Fatalf("aum not descending at %d: %v", i, resultIDs(desc))
		}
	}

	asc := e.Search(Query{SortBy: SortAUM, SortOrder: OrderAsc})
	for i := 1; i < len(asc.Results); i++ {
		if asc.Results[i].Document.AUM < asc.Results[i-1].Document.AUM {
			t.Fatalf("aum not ascending at %d: %v", i, resultIDs(asc))
		}
	}
}

func TestSearchSortAlphabetical(t *testing.T) {
	e := corpus(t)
	resp := e.Search(Query{SortBy: SortAlphabetical, SortOrder: OrderAsc})
	for i := 1; i < len(resp.Results); i++ {
		if resp.Results[i].Document.SchemeName < resp.Results[i-1].Document.SchemeName {
			t.Fatalf("names not ascending at %d: %v", i, resultIDs(resp))
		}
	}
}

func TestSearchRelevanceAscendingFlips(t *testing.T) {
	e := corpus(t)
	resp := e.Search(Query{Text: "hdfc", SortOrder: OrderAsc})
	for i := 1; i < len(resp.Results); i++ {
		if resp.Results[i].Score < resp.Results[i-1].Score {
			t.Fatalf("scores not ascending at %d", i)
		}
	}
}

func TestSearchLimitClamped(t *testing.T) {
	limits := Limits{DefaultLimit: 2, MaxLimit: 3, MaxSuggestions: 5}
	e := newTestEngine(t,
		"HDFC Large Cap Fund",
		"HDFC Midcap Opportunities Fund",
		"Axis Bluechip Fund",
		"SBI Small Cap Fund",
		"HDFC Liquid Fund",
	)
	e.limits = limits

	if resp := e.Search(Query{}); len(resp.Results) != 2 {
		t.Errorf("default limit: got %d results; want 2", len(resp.Results))
	}
	if resp := e.Search(Query{Limit: 100}); len(resp.Results) != 3 {
		t.Errorf("clamped limit: got %d results; want 3", len(resp.Results))
	}
}

func TestSuggest(t *testing.T) {
	e := corpus(t)

	got := e.Suggest("blu", 10)
	found := false
	for _, s := range got {
		if s == "bluechip" {
			found = true
		}
	}
	if !found {
		t.Errorf("Suggest(\"blu\") = %v; want bluechip included", got)
	}

	if got := e.Suggest("", 10); len(got) != 0 {
		t.Errorf("Suggest(\"\") = %v; want empty", got)
	}
	if got := e.Suggest("zzz", 10); len(got) != 0 {
		t.Errorf("Suggest(\"zzz\") = %v; want empty", got)
	}

	got = e.Suggest("Liq", 10)
	found = false
	for _, s := range got {
		if s == "liquid" {
			found = true
		}
	}
	if !found {
		t.Errorf("Suggest(\"Liq\") = %v; want liquid included", got)
	}

	if got := e.Suggest("hd", 1); len(got) > 1 {
		t.Errorf("Suggest with max 1 returned %d entries: %v", len(got), got)
	}
}

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		term, token string
		want        bool
	}{
		{"hdfc", "hdfc", true},
		{"hdf", "hdfc", true},  // term is a prefix of the token
		{"hdfcx", "hdfc", true}, // token is a prefix of the term
		{"hdfx", "hdfc", true},  // distance 1
		{"axis", "hdfc", false},
		{"cap", "cab", false}, // short terms never edit-distance match
		{"liquid", "liquor", false},
	}
	for _, tt := range tests {
		if got := fuzzyMatch(tt.term, tt.token); got != tt.want {
			t.Errorf("fuzzyMatch(%q, %q) = %v; want %v", tt.term, tt.token, got, tt.want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"hdfc", "hdfc", 0},
		{"hdfc", "hdfx", 1},
		{"hdfc", "hdc", 1},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d; want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
