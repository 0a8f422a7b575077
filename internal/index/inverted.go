// Package index holds the inverted index and the autocomplete trie. Both
// are built exactly once per catalog load by a single build task and are
// read-only afterwards: the Builder seals into an Index that exposes no
// mutation methods, so query paths cannot write concurrently with readers.
package index

import (
	"github.com/niveshhub/fundsearch/internal/fund"
)

// entry is the per-token index record: the documents containing the token
// with their term frequencies, and the cached document frequency. The cache
// is updated whenever the document set changes so it always equals the live
// set size.
type entry struct {
	freqs map[string]int
	df    int
}

// Builder accumulates documents into an inverted index. Adding the same
// document id twice is not supported; term and document frequencies would
// double-count. A full rebuild is the only correction path.
type Builder struct {
	entries  map[string]*entry
	docCount int
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		entries: make(map[string]*entry),
	}
}

// Add indexes one document: for each distinct token, the document id joins
// the token's set with its occurrence count as term frequency.
func (b *Builder) Add(doc *fund.Document) {
	for token, count := range doc.TokenCounts {
		e, ok := b.entries[token]
		if !ok {
			e = &entry{freqs: make(map[string]int, 4)}
			b.entries[token] = e
		}
		e.freqs[doc.ID] = count
		e.df = len(e.freqs)
	}
	b.docCount++
}

// Build seals the accumulated entries into a read-only Index. The Builder
// must not be used afterwards.
func (b *Builder) Build() *Index {
	ix := &Index{
		entries:  b.entries,
		docCount: b.docCount,
	}
	b.entries = nil
	return ix
}

// Index is the sealed, read-only inverted index.
type Index struct {
	entries  map[string]*entry
	docCount int
}

// Postings is a read-only view of one token's document set.
type Postings struct {
	e *entry
}

// Postings returns the postings view for an exact token.
func (ix *Index) Postings(token string) (Postings, bool) {
	e, ok := ix.entries[token]
	if !ok {
		return Postings{}, false
	}
	return Postings{e: e}, true
}

// EachToken calls fn for every distinct token in the index with its
// document frequency. Iteration order is unspecified.
func (ix *Index) EachToken(fn func(token string, df int)) {
	for token, e := range ix.entries {
		fn(token, e.df)
	}
}

// TokenCount returns the number of distinct tokens.
func (ix *Index) TokenCount() int {
	return len(ix.entries)
}

// DocCount returns the number of indexed documents.
func (ix *Index) DocCount() int {
	return ix.docCount
}

// Len returns the document frequency.
func (p Postings) Len() int {
	if p.e == nil {
		return 0
	}
	return p.e.df
}

// Frequency returns the term frequency for docID, zero if absent.
func (p Postings) Frequency(docID string) int {
	if p.e == nil {
		return 0
	}
	return p.e.freqs[docID]
}

// Each calls fn for every document containing the token.
func (p Postings) Each(fn func(docID string, freq int)) {
	if p.e == nil {
		return
	}
	for docID, freq := range p.e.freqs {
		fn(docID, freq)
	}
}
