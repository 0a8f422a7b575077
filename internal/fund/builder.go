package fund

import (
	"fmt"
	"strings"

	"github.com/niveshhub/fundsearch/internal/tokenizer"
)

// Build derives a Document from a raw catalog record. It returns false when
// the record is missing its scheme code or scheme name; such records are
// dropped by the caller, not indexed.
func Build(raw RawRecord) (*Document, bool) {
	if raw.SchemeCode == 0 || strings.TrimSpace(raw.SchemeName) == "" {
		return nil, false
	}

	name := raw.SchemeName
	lower := strings.ToLower(name)
	category, subCategory := matchCategory(lower)

	doc := &Document{
		ID:          fmt.Sprintf("mf-%d", raw.SchemeCode),
		SchemeCode:  raw.SchemeCode,
		SchemeName:  name,
		FundHouse:   matchHouse(lower),
		Category:    category,
		SubCategory: subCategory,
		Plan:        matchPlan(lower),
		Option:      matchOption(lower),
		RiskLevel:   matchRiskLevel(lower, category),
	}

	doc.NAV = numericOr(raw.NAV, syntheticNAV(raw.SchemeCode))
	doc.AUM = numericOr(raw.AUM, syntheticAUM(raw.SchemeCode))
	doc.ExpenseRatio = numericOr(raw.ExpenseRatio, syntheticExpenseRatio(raw.SchemeCode))

	tokenize(doc)
	return doc, true
}

func matchPlan(lowerName string) Plan {
	if strings.Contains(lowerName, "direct") {
		return PlanDirect
	}
	return PlanRegular
}

func matchOption(lowerName string) Option {
	switch {
	case strings.Contains(lowerName, "reinvest"):
		return OptionIDCWReinvestment
	case strings.Contains(lowerName, "idcw"), strings.Contains(lowerName, "dividend"), strings.Contains(lowerName, "payout"):
		return OptionIDCWPayout
	default:
		return OptionGrowth
	}
}

// tokenize fills the document's token stream: scheme-name tokens, trigrams
// of each name token for substring matching, and the derived fund house and
// category strings. SearchTokens is the deduplicated set; TokenCounts keeps
// the raw occurrence counts for term-frequency scoring.
func tokenize(doc *Document) {
	nameTokens := tokenizer.Tokenize(doc.SchemeName)
	stream := make([]string, 0, len(nameTokens)*4)
	stream = append(stream, nameTokens...)
	for _, token := range nameTokens {
		stream = append(stream, tokenizer.Trigrams(token)...)
	}
	stream = append(stream, tokenizer.Tokenize(doc.FundHouse)...)
	stream = append(stream, tokenizer.Tokenize(doc.Category)...)
	stream = append(stream, tokenizer.Tokenize(doc.SubCategory)...)

	counts := make(map[string]int, len(stream))
	unique := make([]string, 0, len(stream))
	for _, token := range stream {
		if counts[token] == 0 {
			unique = append(unique, token)
		}
		counts[token]++
	}

	doc.SearchTokens = unique
	doc.TokenCounts = counts
	doc.TotalTokens = len(stream)
}

func numericOr(value *float64, fallback float64) float64 {
	if value != nil {
		return *value
	}
	return fallback
}

// The catalog feed carries only scheme code and name; AUM, expense ratio,
// and NAV are synthesised deterministically from the scheme code so that
// sorting and range filtering stay exercisable and stable across rebuilds.
func syntheticAUM(code int64) float64 {
	return float64(50 + (code*7919)%25000)
}

func syntheticExpenseRatio(code int64) float64 {
	return 0.20 + float64((code*31)%200)/100.0
}

func syntheticNAV(code int64) float64 {
	return 10.0 + float64((code*97)%49000)/100.0
}
