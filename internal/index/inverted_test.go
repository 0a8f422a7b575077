package index

import (
	"testing"

	"github.com/niveshhub/fundsearch/internal/fund"
)

func mustBuild(t *testing.T, code int64, name string) *fund.Document {
	t.Helper()
	doc, ok := fund.Build(fund.RawRecord{SchemeCode: code, SchemeName: name})
	if !ok {
		t.Fatalf("Build dropped %q", name)
	}
	return doc
}

func TestBuilderFrequencies(t *testing.T) {
	b := NewBuilder()
	docA := mustBuild(t, 1, "HDFC Large Cap Fund")
	docB := mustBuild(t, 2, "HDFC Midcap Opportunities Fund")
	b.Add(docA)
	b.Add(docB)
	ix := b.Build()

	if ix.DocCount() != 2 {
		t.Errorf("DocCount = %d; want 2", ix.DocCount())
	}

	postings, ok := ix.Postings("hdfc")
	if !ok {
		t.Fatal("no postings for hdfc")
	}
	if postings.Len() != 2 {
		t.Errorf("df(hdfc) = %d; want 2", postings.Len())
	}
	// Scheme-name token plus the derived fund-house token.
	if got := postings.Frequency(docA.ID); got != 2 {
		t.Errorf("tf(hdfc, %s) = %d; want 2", docA.ID, got)
	}

	postings, ok = ix.Postings("large")
	if !ok {
		t.Fatal("no postings for large")
	}
	if postings.Len() != 1 {
		t.Errorf("df(large) = %d; want 1", postings.Len())
	}
	if got := postings.Frequency(docB.ID); got != 0 {
		t.Errorf("tf(large, %s) = %d; want 0", docB.ID, got)
	}
}

func TestDocumentFrequencyTracksSetSize(t *testing.T) {
	b := NewBuilder()
	for i := int64(1); i <= 5; i++ {
		b.Add(mustBuild(t, i, "Axis Bluechip Fund"))
	}
	ix := b.Build()

	postings, ok := ix.Postings("bluechip")
	if !ok {
		t.Fatal("no postings for bluechip")
	}
	count := 0
	postings.Each(func(string, int) { count++ })
	if postings.Len() != count {
		t.Errorf("df = %d but set size = %d; must be equal", postings.Len(), count)
	}
	if count != 5 {
		t.Errorf("set size = %d; want 5", count)
	}
}

func TestPostingsMissingToken(t *testing.T) {
	ix := NewBuilder().Build()
	if _, ok := ix.Postings("absent"); ok {
		t.Error("Postings returned ok for a token never indexed")
	}
	if ix.TokenCount() != 0 {
		t.Errorf("TokenCount = %d; want 0", ix.TokenCount())
	}
}

func TestEachTokenCoversAllTokens(t *testing.T) {
	b := NewBuilder()
	b.Add(mustBuild(t, 1, "SBI Gilt Fund"))
	ix := b.Build()

	seen := make(map[string]int)
	ix.EachToken(func(token string, df int) {
		seen[token] = df
	})
	if len(seen) != ix.TokenCount() {
		t.Errorf("EachToken visited %d tokens; TokenCount = %d", len(seen), ix.TokenCount())
	}
	if seen["gilt"] != 1 {
		t.Errorf("df(gilt) = %d; want 1", seen["gilt"])
	}
}
